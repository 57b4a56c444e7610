package controllers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/imobipro/imobipro-api/app/repository"
	"github.com/imobipro/imobipro-api/internal/pkg/metrics/counter"
	"github.com/imobipro/imobipro-api/internal/pkg/statistics"
)

const defaultStuckThresholdMinutes = 30

// AdminController exposes the operational view of the ledger: approved
// payments that never finished provisioning. A retry of the gateway
// webhook (or a manual replay of the stored webhook event) resumes them.
type AdminController struct {
	payments repository.PaymentRepository
}

func NewAdminController(payments repository.PaymentRepository) *AdminController {
	return &AdminController{payments: payments}
}

// HandleListStuckPayments returns approved-but-unprovisioned ledger rows
// older than ?minutes (default 30).
func (ac *AdminController) HandleListStuckPayments(c *fiber.Ctx) error {
	minutes := defaultStuckThresholdMinutes
	if raw := c.Query("minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "minutes must be a non-negative integer"})
		}
		minutes = parsed
	}

	cutoff := time.Now().Add(-time.Duration(minutes) * time.Minute)
	payments, err := ac.payments.ListApprovedUnprovisioned(cutoff)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":       true,
		"count":    len(payments),
		"payments": payments,
	})
}

// HandleStats returns the cached provisioning aggregates plus the per-outcome
// webhook delivery counters.
func (ac *AdminController) HandleStats(c *fiber.Ctx) error {
	outcomes, err := counter.WebhookOutcomes()
	if err != nil {
		log.Printf("reading webhook outcome counters failed: %v", err)
		outcomes = map[string]int64{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":               true,
		"stats":            statistics.GetStatistics(),
		"webhook_outcomes": outcomes,
	})
}
