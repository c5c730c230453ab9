package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cakeshop/internal/models"
)

func validCheckoutRequest() checkoutRequest {
	return checkoutRequest{
		Items: []checkoutItemRequest{
			{CakeID: primitive.NewObjectID().Hex(), Quantity: 2},
		},
		PaymentMethod: models.PaymentMethodCOD,
		ShippingAddress: checkoutAddressRequest{
			Title:  "Home",
			Detail: "12 Baker Street",
		},
	}
}

func TestParseCheckoutItemsAccepted(t *testing.T) {
	req := validCheckoutRequest()
	req.Items = append(req.Items, checkoutItemRequest{
		CakeID:   primitive.NewObjectID().Hex(),
		Quantity: 1,
	})

	items, err := parseCheckoutItems(req)
	if err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("quantity not carried over: got %d", items[0].Quantity)
	}
}

func TestParseCheckoutItemsRejectsEmptyCart(t *testing.T) {
	req := validCheckoutRequest()
	req.Items = nil

	if _, err := parseCheckoutItems(req); err == nil {
		t.Fatal("expected error for empty cart")
	}
}

func TestParseCheckoutItemsRejectsBadQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		req := validCheckoutRequest()
		req.Items[0].Quantity = qty

		if _, err := parseCheckoutItems(req); err == nil {
			t.Errorf("expected error for quantity %d", qty)
		}
	}
}

func TestParseCheckoutItemsRejectsBadCakeID(t *testing.T) {
	req := validCheckoutRequest()
	req.Items[0].CakeID = "not-an-object-id"

	if _, err := parseCheckoutItems(req); err == nil {
		t.Fatal("expected error for malformed cakeId")
	}
}

func TestParseCheckoutItemsRejectsUnknownPaymentMethod(t *testing.T) {
	req := validCheckoutRequest()
	req.PaymentMethod = "bank_transfer"

	if _, err := parseCheckoutItems(req); err == nil {
		t.Fatal("expected error for unknown payment method")
	}
}

func TestNeedsGatewayOrder(t *testing.T) {
	if needsGatewayOrder(models.PaymentMethodCOD, "") {
		t.Error("COD checkout must never create a gateway order")
	}
	if !needsGatewayOrder(models.PaymentMethodRazorpay, "") {
		t.Error("first attempt of a prepaid checkout must create a gateway order")
	}
	// A retried transaction callback reuses the id it already minted.
	if needsGatewayOrder(models.PaymentMethodRazorpay, "order_9A33XWu170gUtm") {
		t.Error("retry must not mint a second gateway order")
	}
}

func TestInitialPaymentStatus(t *testing.T) {
	if got := initialPaymentStatus(models.PaymentMethodCOD); got != models.PaymentCompleted {
		t.Errorf("COD order should be Completed at placement, got %q", got)
	}
	if got := initialPaymentStatus(models.PaymentMethodRazorpay); got != models.PaymentPending {
		t.Errorf("gateway order should start Pending, got %q", got)
	}
}
