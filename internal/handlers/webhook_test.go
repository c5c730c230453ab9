package handlers

import (
	"encoding/json"
	"testing"
)

func TestShouldReconcileEvent(t *testing.T) {
	cases := []struct {
		event  string
		status string
		want   bool
	}{
		{"payment.captured", "captured", true},
		{"payment.captured", "authorized", false},
		{"payment.captured", "", false},
		{"payment.authorized", "authorized", false},
		{"payment.failed", "failed", false},
		{"order.paid", "captured", false},
		{"", "", false},
	}

	for _, tc := range cases {
		if got := shouldReconcileEvent(tc.event, tc.status); got != tc.want {
			t.Errorf("shouldReconcileEvent(%q, %q) = %v, want %v", tc.event, tc.status, got, tc.want)
		}
	}
}

func TestWebhookEventParsesGatewayPayload(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_29QQoUBi66xm2f",
					"order_id": "order_9A33XWu170gUtm",
					"status": "captured",
					"amount": 49900
				}
			}
		}
	}`)

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if event.Event != "payment.captured" {
		t.Errorf("event = %q", event.Event)
	}
	entity := event.Payload.Payment.Entity
	if entity.ID != "pay_29QQoUBi66xm2f" {
		t.Errorf("payment id = %q", entity.ID)
	}
	if entity.OrderID != "order_9A33XWu170gUtm" {
		t.Errorf("order id = %q", entity.OrderID)
	}
	if entity.Status != "captured" {
		t.Errorf("status = %q", entity.Status)
	}
}
