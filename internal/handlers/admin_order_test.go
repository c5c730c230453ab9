package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"cakeshop/internal/models"
)

func strPtr(s string) *string { return &s }

func TestBuildStatusUpdateRequiresAField(t *testing.T) {
	_, err := buildStatusUpdate(orderStatusUpdateRequest{}, primitive.NewObjectID(), time.Now())
	if err == nil {
		t.Fatal("expected error when neither status is given")
	}
}

func TestBuildStatusUpdateRejectsUnknownOrderStatus(t *testing.T) {
	req := orderStatusUpdateRequest{OrderStatus: strPtr("Misplaced")}
	if _, err := buildStatusUpdate(req, primitive.NewObjectID(), time.Now()); err == nil {
		t.Fatal("expected error for unknown orderStatus")
	}
}

func TestBuildStatusUpdateRejectsUnknownPaymentStatus(t *testing.T) {
	req := orderStatusUpdateRequest{PaymentStatus: strPtr("Paidish")}
	if _, err := buildStatusUpdate(req, primitive.NewObjectID(), time.Now()); err == nil {
		t.Fatal("expected error for unknown paymentStatus")
	}
}

func TestBuildStatusUpdateStampsAdminAndTime(t *testing.T) {
	adminID := primitive.NewObjectID()
	now := time.Now()

	set, err := buildStatusUpdate(orderStatusUpdateRequest{
		OrderStatus:   strPtr(models.OrderShipped),
		PaymentStatus: strPtr(models.PaymentCompleted),
	}, adminID, now)
	if err != nil {
		t.Fatalf("expected valid update, got %v", err)
	}

	if set["orderStatus"] != models.OrderShipped {
		t.Errorf("orderStatus = %v", set["orderStatus"])
	}
	if set["paymentStatus"] != models.PaymentCompleted {
		t.Errorf("paymentStatus = %v", set["paymentStatus"])
	}
	if set["updatedBy"] != adminID {
		t.Errorf("updatedBy = %v, want %v", set["updatedBy"], adminID)
	}
	if set["updatedAt"] != now {
		t.Errorf("updatedAt = %v, want %v", set["updatedAt"], now)
	}
}

func TestBuildStatusUpdatePartialRejectionLeavesNothing(t *testing.T) {
	// One bad field fails the whole request; nothing is silently kept.
	req := orderStatusUpdateRequest{
		OrderStatus:   strPtr(models.OrderDelivered),
		PaymentStatus: strPtr("Paidish"),
	}
	if _, err := buildStatusUpdate(req, primitive.NewObjectID(), time.Now()); err == nil {
		t.Fatal("expected error when any field is invalid")
	}
}
