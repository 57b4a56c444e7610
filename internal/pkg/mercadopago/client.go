package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imobipro/imobipro-api/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.mercadopago.com"

// StatusApproved is the only terminal status that triggers provisioning.
// Every other status the gateway reports is stored verbatim.
const StatusApproved = "approved"

// ErrPaymentNotFound is returned when the gateway has no payment for the id.
var ErrPaymentNotFound = errors.New("mercadopago: payment not found")

// Client talks to the Mercado Pago payments API. The API is the single
// source of truth for payment status; webhook payloads are never trusted
// directly.
type Client struct {
	AccessToken string
	APIBaseURL  string

	HTTPClient *http.Client
}

// Payment is the authoritative payment object as returned by the gateway.
// RawJSON keeps the unparsed response body for the ledger audit column.
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	TransactionAmount float64 `json:"transaction_amount"`
	Description       string  `json:"description"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
	AdditionalInfo struct {
		Payer struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"payer"`
	} `json:"additional_info"`

	RawJSON string `json:"-"`
}

// PaymentID returns the gateway id as the string key used by the ledger.
func (p *Payment) PaymentID() string {
	if p.ID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", p.ID)
}

// CreatePaymentRequest is the normalized charge request built from a
// validated client intent.
type CreatePaymentRequest struct {
	Token             string  `json:"token"`
	TransactionAmount float64 `json:"transaction_amount"`
	Installments      int     `json:"installments"`
	PaymentMethodID   string  `json:"payment_method_id"`
	IssuerID          string  `json:"issuer_id,omitempty"`
	Description       string  `json:"description"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

func NewClientFromEnv() *Client {
	return &Client{
		AccessToken: strings.TrimSpace(env.MustGetEnv("MP_ACCESS_TOKEN")),
		APIBaseURL:  strings.TrimRight(env.GetEnv("MP_API_BASE_URL", defaultAPIBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreatePayment submits a charge and returns the gateway's payment object,
// which may already carry a terminal status.
func (c *Client) CreatePayment(ctx context.Context, in CreatePaymentRequest) (*Payment, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/v1/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Mercado Pago deduplicates retried create calls on this key.
	req.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago payment create failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return parsePayment(body)
}

// GetPayment fetches the authoritative payment object by id. The result is
// the payment object directly, never nested under a body field.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBaseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mercadopago payment lookup failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	return parsePayment(body)
}

func parsePayment(body []byte) (*Payment, error) {
	var p Payment
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, fmt.Errorf("mercadopago response missing payment id: body=%s", string(body))
	}
	p.RawJSON = string(body)
	return &p, nil
}
