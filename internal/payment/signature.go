package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks the client-supplied checkout signature:
// hex(HMAC-SHA256("orderId|paymentId", keySecret)). The compare is
// constant-time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	return verify([]byte(orderID+"|"+paymentID), signature, secret)
}

// VerifyWebhookSignature checks the signature Razorpay sends in
// X-Razorpay-Signature, computed over the raw request body with the
// webhook secret. The body must not be parsed or re-encoded first.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	return verify(body, signature, secret)
}

func verify(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
