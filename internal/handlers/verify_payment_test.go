package handlers

import (
	"errors"
	"testing"

	"cakeshop/internal/models"
)

func TestReconcileOutcomeDuplicateDeliveryIsNoOp(t *testing.T) {
	order := models.Order{
		PaymentStatus:     models.PaymentCompleted,
		RazorpayPaymentID: "pay_29QQoUBi66xm2f",
	}

	// Second delivery of the same payment: settled state, no error, and
	// since it never counts as a transition no second mail goes out.
	if err := reconcileOutcome(order, "pay_29QQoUBi66xm2f"); err != nil {
		t.Fatalf("duplicate delivery should succeed as a no-op, got %v", err)
	}
}

func TestReconcileOutcomeDifferentPaymentConflicts(t *testing.T) {
	order := models.Order{
		PaymentStatus:     models.PaymentCompleted,
		RazorpayPaymentID: "pay_29QQoUBi66xm2f",
	}

	err := reconcileOutcome(order, "pay_other")
	if !errors.Is(err, errPaymentConflict) {
		t.Fatalf("different payment id should conflict, got %v", err)
	}
}

func TestReconcileOutcomeNonCompletedStatesConflict(t *testing.T) {
	for _, status := range []string{models.PaymentPending, models.PaymentFailed} {
		order := models.Order{
			PaymentStatus:     status,
			RazorpayPaymentID: "pay_29QQoUBi66xm2f",
		}

		err := reconcileOutcome(order, "pay_29QQoUBi66xm2f")
		if !errors.Is(err, errPaymentConflict) {
			t.Errorf("status %s should conflict, got %v", status, err)
		}
	}
}

func TestReconcileOutcomeCompletedWithoutPaymentConflicts(t *testing.T) {
	// Completed but with no recorded payment id (admin-settled COD path)
	// must not be claimed by a gateway payment.
	order := models.Order{PaymentStatus: models.PaymentCompleted}

	err := reconcileOutcome(order, "pay_29QQoUBi66xm2f")
	if !errors.Is(err, errPaymentConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
