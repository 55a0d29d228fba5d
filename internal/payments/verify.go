package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier decides whether a checkout response really came from the gateway.
type Verifier interface {
	Verify(ctx context.Context, resp Response) (bool, error)
}

// SignatureVerifier checks the widget's signature against the merchant key
// secret: HMAC-SHA256(secret, "order_id|payment_id"), hex encoded.
type SignatureVerifier struct {
	keySecret string
}

// NewSignatureVerifier creates a verifier for the given key secret.
func NewSignatureVerifier(keySecret string) *SignatureVerifier {
	return &SignatureVerifier{keySecret: keySecret}
}

// Verify implements Verifier.
func (v *SignatureVerifier) Verify(_ context.Context, resp Response) (bool, error) {
	if v.keySecret == "" {
		return false, ErrMissingSecret
	}
	if resp.OrderID == "" || resp.PaymentID == "" || resp.Signature == "" {
		return false, nil
	}
	expected := Sign(v.keySecret, resp.OrderID, resp.PaymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(resp.Signature)))), nil
}

// Sign computes the checkout signature the gateway attaches to a successful payment.
func Sign(keySecret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
