package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/imobipro/imobipro-api/internal/pkg/provision"
	"github.com/shopspring/decimal"
)

// PaymentController handles the client-facing payment intent endpoint. All
// collaborators are injected once at router install time.
type PaymentController struct {
	service  *provision.Service
	validate *validator.Validate
}

func NewPaymentController(service *provision.Service) *PaymentController {
	return &PaymentController{
		service:  service,
		validate: validator.New(),
	}
}

type createPaymentPayer struct {
	Email string `json:"email" validate:"required,email"`
	Nome  string `json:"nome"`
}

type createPaymentRequest struct {
	Token           string             `json:"token" validate:"required,min=10"`
	PaymentMethodID string             `json:"payment_method_id" validate:"required,min=2"`
	IssuerID        string             `json:"issuer_id"`
	Installments    int                `json:"installments" validate:"omitempty,min=1,max=12"`
	Plano           string             `json:"plano" validate:"required,min=1"`
	Amount          float64            `json:"amount" validate:"required,gt=0"`
	Payer           createPaymentPayer `json:"payer"`
	// Signup is the opaque registration payload saved with the ledger row
	// and consumed at provisioning time.
	Signup json.RawMessage `json:"signup"`
}

// HandleCreatePayment validates the submission, forwards the charge to the
// gateway and records the pending ledger row. Provisioning never happens
// here, even when the gateway approves synchronously; the webhook path is
// the only code path that creates tenants.
func (pc *PaymentController) HandleCreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}
	if req.Installments == 0 {
		req.Installments = 1
	}
	if err := pc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	signupRaw := ""
	if len(req.Signup) > 0 && string(req.Signup) != "null" {
		signupRaw = string(req.Signup)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 20*time.Second)
	defer cancel()

	result, err := pc.service.CreateIntent(ctx, provision.IntentInput{
		Token:           req.Token,
		PaymentMethodID: req.PaymentMethodID,
		IssuerID:        req.IssuerID,
		Installments:    req.Installments,
		Plano:           req.Plano,
		Amount:          decimal.NewFromFloat(req.Amount),
		PayerEmail:      req.Payer.Email,
		PayerNome:       req.Payer.Nome,
		SignupRaw:       signupRaw,
	})
	if err != nil {
		// Gateway diagnostics go back to the caller verbatim; the payer
		// is the one who can fix a declined card or bad token.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":            true,
		"mp_payment_id": result.MPPaymentID,
		"status":        result.Status,
		"status_detail": result.StatusDetail,
	})
}
