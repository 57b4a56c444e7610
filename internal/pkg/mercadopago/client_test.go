package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		AccessToken: "TEST-TOKEN",
		APIBaseURL:  srv.URL,
		HTTPClient:  srv.Client(),
	}
}

func TestCreatePayment(t *testing.T) {
	var captured struct {
		method         string
		path           string
		authorization  string
		idempotencyKey string
		body           CreatePaymentRequest
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.authorization = r.Header.Get("Authorization")
		captured.idempotencyKey = r.Header.Get("X-Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123456,"status":"pending","status_detail":"pending_contingency","transaction_amount":97.0,"payer":{"email":"a@b.com"}}`))
	}))
	defer srv.Close()

	in := CreatePaymentRequest{
		Token:             "tok_0123456789",
		TransactionAmount: 97.0,
		Installments:      1,
		PaymentMethodID:   "visa",
		Description:       "ImobiPro • Plano basico",
	}
	in.Payer.Email = "a@b.com"

	p, err := newTestClient(srv).CreatePayment(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/v1/payments", captured.path)
	assert.Equal(t, "Bearer TEST-TOKEN", captured.authorization)
	assert.NotEmpty(t, captured.idempotencyKey)
	assert.Equal(t, "tok_0123456789", captured.body.Token)
	assert.Equal(t, "a@b.com", captured.body.Payer.Email)

	assert.Equal(t, "123456", p.PaymentID())
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "pending_contingency", p.StatusDetail)
	assert.Contains(t, p.RawJSON, `"id":123456`)
}

func TestCreatePayment_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreatePayment(context.Background(), CreatePaymentRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/777", r.URL.Path)
		assert.Equal(t, "Bearer TEST-TOKEN", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":777,"status":"approved","status_detail":"accredited","transaction_amount":49.9,"payer":{"email":"a@b.com"},"additional_info":{"payer":{"first_name":"Ana"}}}`))
	}))
	defer srv.Close()

	p, err := newTestClient(srv).GetPayment(context.Background(), "777")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
	assert.Equal(t, "a@b.com", p.Payer.Email)
	assert.Equal(t, "Ana", p.AdditionalInfo.Payer.FirstName)
	assert.Equal(t, 49.9, p.TransactionAmount)
}

func TestGetPayment_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Payment not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetPayment(context.Background(), "404404")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestGetPayment_EmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty id")
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetPayment(context.Background(), "   ")
	assert.Error(t, err)
}

func TestGetPayment_ResponseWithoutUsableID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"approved"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetPayment(context.Background(), "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing payment id")
}
