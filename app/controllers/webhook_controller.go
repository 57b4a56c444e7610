package controllers

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/imobipro/imobipro-api/app/models"
	"github.com/imobipro/imobipro-api/app/repository"
	"github.com/imobipro/imobipro-api/internal/pkg/cache"
	"github.com/imobipro/imobipro-api/internal/pkg/metrics/counter"
	"github.com/imobipro/imobipro-api/internal/pkg/provision"
)

// WebhookController handles Mercado Pago notifications. The endpoint
// acknowledges with HTTP 200 on every internal branch (success, no-op or
// processing failure) so the gateway's retry policy never storms a
// struggling backend. Failures are visible in the response body and in the
// webhook_events audit table, not in the status code.
type WebhookController struct {
	service       *provision.Service
	events        repository.WebhookEventRepository
	webhookSecret string
}

func NewWebhookController(service *provision.Service, events repository.WebhookEventRepository, webhookSecret string) *WebhookController {
	return &WebhookController{
		service:       service,
		events:        events,
		webhookSecret: webhookSecret,
	}
}

// HandleMercadoPagoWebhook reconciles one gateway notification.
func (wc *WebhookController) HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	// Typical envelope: { "type": "payment", "data": { "id": "123" } }
	paymentID, eventType := parseWebhookEnvelope(rawBody)
	if paymentID == "" {
		// Nothing to reconcile and nothing worth guessing about.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	requestID := strings.TrimSpace(c.Get("x-request-id"))
	signatureValid := provision.VerifyWebhookSignature(paymentID, requestID, c.Get("x-signature"), wc.webhookSecret)
	if !signatureValid {
		// Informational only: reconciliation re-fetches gateway truth, so
		// a forged delivery cannot provision anything. The counter feeds
		// abuse review.
		if n, err := cache.CountSuspiciousWebhook(c.IP()); err == nil {
			log.Printf("webhook signature invalid for payment %s (unverified deliveries from %s: %d)", paymentID, c.IP(), n)
		}
	}

	eventID := requestID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	_, stored, err := wc.events.CreateIfNotExists(&models.WebhookEvent{
		Provider:        models.WebhookProviderMercadoPago,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		// Audit persistence must not block reconciliation.
		log.Printf("failed to record webhook event for payment %s: %v", paymentID, err)
		stored = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, reconcileErr := wc.service.Reconcile(ctx, paymentID)
	if stored != nil {
		errMsg := ""
		if reconcileErr != nil {
			errMsg = reconcileErr.Error()
		}
		if err := wc.events.MarkProcessed(stored.ID, errMsg); err != nil {
			log.Printf("failed to mark webhook event %d processed: %v", stored.ID, err)
		}
	}

	if reconcileErr != nil {
		log.Printf("webhook reconciliation failed for payment %s: %v", paymentID, reconcileErr)
		_ = counter.AddWebhookOutcome("error")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":              false,
			"error":           reconcileErr.Error(),
			"signature_valid": signatureValid,
		})
	}

	_ = counter.AddWebhookOutcome(string(result.Outcome))

	switch result.Outcome {
	case provision.OutcomeIgnored:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	case provision.OutcomeNotFound:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "not_found": true})
	case provision.OutcomeNotApproved:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "status": result.Status})
	case provision.OutcomeAlreadyProvisioned:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":                 true,
			"alreadyProvisioned": true,
			"corretor_id":        result.CorretorID,
		})
	default:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":              true,
			"status":          result.Status,
			"corretor_id":     result.CorretorID,
			"site_url":        result.SiteURL,
			"signature_valid": signatureValid,
		})
	}
}

// parseWebhookEnvelope extracts the payment id and event type from the
// notification body. The id arrives either as a JSON string or a number
// depending on the notification variant.
func parseWebhookEnvelope(body []byte) (paymentID, eventType string) {
	var envelope struct {
		Type   string `json:"type"`
		Action string `json:"action"`
		Data   struct {
			ID interface{} `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", ""
	}

	eventType = envelope.Type
	if eventType == "" {
		eventType = envelope.Action
	}

	switch id := envelope.Data.ID.(type) {
	case string:
		paymentID = strings.TrimSpace(id)
	case float64:
		paymentID = strconv.FormatFloat(id, 'f', -1, 64)
	}
	return paymentID, eventType
}
