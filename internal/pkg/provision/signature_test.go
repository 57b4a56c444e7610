package provision

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
)

func signManifest(t *testing.T, secret, paymentID, requestID, ts string) string {
	t.Helper()
	manifest := fmt.Sprintf("data.id:%s;request-id:%s;ts:%s;", paymentID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "top-secret"
	v1 := signManifest(t, secret, "123", "abc", "999")
	header := fmt.Sprintf("ts=999,v1=%s", v1)

	if !VerifyWebhookSignature("123", "abc", header, secret) {
		t.Fatalf("expected signature to validate")
	}

	// Header order and spacing must not matter.
	spaced := fmt.Sprintf(" v1=%s , ts=999 ", v1)
	if !VerifyWebhookSignature("123", "abc", spaced, secret) {
		t.Fatalf("expected reordered header to validate")
	}
}

func TestVerifyWebhookSignature_Mutations(t *testing.T) {
	secret := "top-secret"
	v1 := signManifest(t, secret, "123", "abc", "999")

	tests := []struct {
		name      string
		paymentID string
		requestID string
		header    string
	}{
		{name: "mutated signature", paymentID: "123", requestID: "abc", header: "ts=999,v1=" + flipHexChar(v1)},
		{name: "mutated request id", paymentID: "123", requestID: "abd", header: "ts=999,v1=" + v1},
		{name: "mutated timestamp", paymentID: "123", requestID: "abc", header: "ts=998,v1=" + v1},
		{name: "mutated payment id", paymentID: "124", requestID: "abc", header: "ts=999,v1=" + v1},
		{name: "wrong secret", paymentID: "123", requestID: "abc", header: "ts=999,v1=" + signManifest(t, "other", "123", "abc", "999")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyWebhookSignature(tt.paymentID, tt.requestID, tt.header, secret) {
				t.Fatalf("expected verification to fail")
			}
		})
	}
}

func TestVerifyWebhookSignature_MissingPieces(t *testing.T) {
	secret := "top-secret"
	v1 := signManifest(t, secret, "123", "abc", "999")
	valid := "ts=999,v1=" + v1

	if VerifyWebhookSignature("123", "abc", valid, "") {
		t.Fatalf("expected missing secret to fail")
	}
	if VerifyWebhookSignature("123", "", valid, secret) {
		t.Fatalf("expected missing request id to fail")
	}
	if VerifyWebhookSignature("123", "abc", "", secret) {
		t.Fatalf("expected missing header to fail")
	}
	if VerifyWebhookSignature("123", "abc", "ts=999", secret) {
		t.Fatalf("expected header without v1 to fail")
	}
	if VerifyWebhookSignature("123", "abc", "ts=999,v1=not-hex", secret) {
		t.Fatalf("expected non-hex signature to fail")
	}
}

func flipHexChar(s string) string {
	b := []byte(s)
	if b[0] == '0' {
		b[0] = '1'
	} else {
		b[0] = '0'
	}
	return string(b)
}
