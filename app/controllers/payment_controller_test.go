package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentTestApp() *fiber.App {
	// Every case below fails validation before the service is touched, so
	// the controller can run without one.
	pc := NewPaymentController(nil)
	app := fiber.New()
	app.Post("/api/payments/create", pc.HandleCreatePayment)
	return app
}

func TestHandleCreatePayment_RejectsInvalidSubmissions(t *testing.T) {
	app := newPaymentTestApp()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{not-json`},
		{name: "missing token", body: `{"payment_method_id":"visa","plano":"basico","amount":97,"payer":{"email":"a@b.com"}}`},
		{name: "short token", body: `{"token":"abc","payment_method_id":"visa","plano":"basico","amount":97,"payer":{"email":"a@b.com"}}`},
		{name: "missing plano", body: `{"token":"tok_0123456789","payment_method_id":"visa","amount":97,"payer":{"email":"a@b.com"}}`},
		{name: "zero amount", body: `{"token":"tok_0123456789","payment_method_id":"visa","plano":"basico","amount":0,"payer":{"email":"a@b.com"}}`},
		{name: "negative amount", body: `{"token":"tok_0123456789","payment_method_id":"visa","plano":"basico","amount":-5,"payer":{"email":"a@b.com"}}`},
		{name: "bad payer email", body: `{"token":"tok_0123456789","payment_method_id":"visa","plano":"basico","amount":97,"payer":{"email":"not-an-email"}}`},
		{name: "too many installments", body: `{"token":"tok_0123456789","payment_method_id":"visa","installments":24,"plano":"basico","amount":97,"payer":{"email":"a@b.com"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/api/payments/create", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			payload, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var parsed map[string]interface{}
			require.NoError(t, json.Unmarshal(payload, &parsed))
			assert.Equal(t, false, parsed["ok"])
			assert.NotEmpty(t, parsed["error"])
		})
	}
}

func TestHandleCreatePayment_MethodNotAllowed(t *testing.T) {
	app := newPaymentTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/payments/create", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}
