package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignatureAccepts(t *testing.T) {
	secret := "key_secret"
	sig := sign([]byte("order_abc|pay_xyz"), secret)

	if !VerifyPaymentSignature("order_abc", "pay_xyz", sig, secret) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyPaymentSignatureRejectsSingleByteMutations(t *testing.T) {
	secret := "key_secret"
	sig := sign([]byte("order_abc|pay_xyz"), secret)

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if VerifyPaymentSignature("order_abc", "pay_xyz", string(mutated), secret) {
			t.Fatalf("mutation at byte %d was accepted", i)
		}
	}
}

func TestVerifyPaymentSignatureRejectsWrongSecret(t *testing.T) {
	sig := sign([]byte("order_abc|pay_xyz"), "other_secret")

	if VerifyPaymentSignature("order_abc", "pay_xyz", sig, "key_secret") {
		t.Fatal("signature from wrong secret was accepted")
	}
}

func TestVerifyWebhookSignatureUsesRawBody(t *testing.T) {
	secret := "webhook_secret"
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := sign(body, secret)

	if !VerifyWebhookSignature(body, sig, secret) {
		t.Fatal("expected valid webhook signature to verify")
	}

	// Any re-encoding of the body invalidates the signature.
	reencoded := []byte(`{"event": "payment.captured", "payload": {}}`)
	if VerifyWebhookSignature(reencoded, sig, secret) {
		t.Fatal("re-encoded body was accepted")
	}
}

func TestVerifyRejectsEmptySignatureOrSecret(t *testing.T) {
	if VerifyWebhookSignature([]byte("body"), "", "secret") {
		t.Fatal("empty signature was accepted")
	}
	if VerifyWebhookSignature([]byte("body"), sign([]byte("body"), ""), "") {
		t.Fatal("empty secret was accepted")
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{1000, 100000},
		{500, 50000},
		{99.99, 9999},
		{0.1, 10},
		{0, 0},
	}
	for _, tc := range cases {
		if got := MinorUnits(tc.amount); got != tc.want {
			t.Fatalf("MinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
