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

func TestParseWebhookEnvelope(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantID    string
		wantEvent string
	}{
		{
			name:      "string id",
			body:      `{"type":"payment","data":{"id":"12345"}}`,
			wantID:    "12345",
			wantEvent: "payment",
		},
		{
			name:      "numeric id",
			body:      `{"type":"payment","data":{"id":12345}}`,
			wantID:    "12345",
			wantEvent: "payment",
		},
		{
			name:      "large numeric id keeps all digits",
			body:      `{"type":"payment","data":{"id":119371072968}}`,
			wantID:    "119371072968",
			wantEvent: "payment",
		},
		{
			name:      "action fallback for event type",
			body:      `{"action":"payment.updated","data":{"id":"9"}}`,
			wantID:    "9",
			wantEvent: "payment.updated",
		},
		{
			name:   "missing data block",
			body:   `{"type":"test"}`,
			wantID: "", wantEvent: "test",
		},
		{
			name:   "whitespace id",
			body:   `{"data":{"id":"  "}}`,
			wantID: "", wantEvent: "",
		},
		{
			name:   "malformed body",
			body:   `{not-json`,
			wantID: "", wantEvent: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, event := parseWebhookEnvelope([]byte(tt.body))
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantEvent, event)
		})
	}
}

func TestHandleMercadoPagoWebhook_MissingIDIsAcknowledged(t *testing.T) {
	// A body without a payment id short-circuits before any collaborator
	// is touched, so the controller can run with nil dependencies.
	wc := NewWebhookController(nil, nil, "secret")

	app := fiber.New()
	app.Post("/api/webhooks/mercadopago", wc.HandleMercadoPagoWebhook)

	for _, body := range []string{
		`{"type":"test"}`,
		`{"data":{}}`,
		`{not-json`,
		``,
	} {
		req := httptest.NewRequest(fiber.MethodPost, "/api/webhooks/mercadopago", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "body %q", body)

		payload, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &parsed))
		assert.Equal(t, true, parsed["ok"])
		assert.Equal(t, true, parsed["ignored"])
	}
}

func TestHandleMercadoPagoWebhook_MethodNotAllowed(t *testing.T) {
	wc := NewWebhookController(nil, nil, "secret")

	app := fiber.New()
	app.Post("/api/webhooks/mercadopago", wc.HandleMercadoPagoWebhook)

	req := httptest.NewRequest(fiber.MethodGet, "/api/webhooks/mercadopago", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}
