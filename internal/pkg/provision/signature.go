package provision

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyWebhookSignature checks the Mercado Pago x-signature header, which
// carries comma-separated ts/v1 pairs ("ts=1704908010,v1=abcdef..."). The
// signed manifest is rebuilt from the payment id, the x-request-id header
// and the timestamp, then compared constant-time against v1.
//
// A missing secret, header or field yields false, never an error. The
// result is informational only: provisioning is always driven by the
// payment object re-fetched from the gateway API, not by the webhook body,
// so an unverified delivery can at worst trigger a lookup.
func VerifyWebhookSignature(paymentID, requestID, signatureHeader, secret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if paymentID == "" || requestID == "" || sig == "" || strings.TrimSpace(secret) == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(sig, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "ts="):
			ts = strings.TrimPrefix(part, "ts=")
		case strings.HasPrefix(part, "v1="):
			v1 = strings.TrimPrefix(part, "v1=")
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	supplied, err := hex.DecodeString(strings.ToLower(v1))
	if err != nil {
		return false
	}

	manifest := fmt.Sprintf("data.id:%s;request-id:%s;ts:%s;", paymentID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hmac.Equal(mac.Sum(nil), supplied)
}
