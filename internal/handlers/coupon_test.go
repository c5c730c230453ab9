package handlers

import (
	"testing"
	"time"

	"cakeshop/internal/models"
)

func percentCoupon(value, minOrder float64) models.Coupon {
	return models.Coupon{
		Code:           "CAKE10",
		DiscountType:   models.DiscountPercentage,
		DiscountValue:  value,
		MinOrderAmount: minOrder,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
		IsActive:       true,
	}
}

func TestComputeDiscountPercentage(t *testing.T) {
	coupon := percentCoupon(10, 0)

	discount, err := computeDiscount(coupon, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 100 {
		t.Fatalf("expected discount 100, got %v", discount)
	}
}

func TestComputeDiscountFixedIgnoresTotal(t *testing.T) {
	coupon := models.Coupon{
		DiscountType:  models.DiscountFixed,
		DiscountValue: 75,
	}

	for _, total := range []float64{100, 1000, 50000} {
		discount, err := computeDiscount(coupon, total)
		if err != nil {
			t.Fatalf("unexpected error for total %v: %v", total, err)
		}
		if discount != 75 {
			t.Fatalf("expected fixed discount 75 for total %v, got %v", total, discount)
		}
	}
}

func TestComputeDiscountRejectsBelowMinimum(t *testing.T) {
	coupon := percentCoupon(10, 500)

	if _, err := computeDiscount(coupon, 499.99); err == nil {
		t.Fatal("expected rejection below minimum order amount")
	}

	if _, err := computeDiscount(coupon, 500); err != nil {
		t.Fatalf("total equal to minimum should pass, got %v", err)
	}
}

func TestComputeDiscountUnknownType(t *testing.T) {
	coupon := models.Coupon{DiscountType: "bogo", DiscountValue: 1}

	if _, err := computeDiscount(coupon, 1000); err == nil {
		t.Fatal("expected error for unknown discount type")
	}
}

func TestCouponUsableFilterEncodesConstraints(t *testing.T) {
	now := time.Now()
	filter := couponUsableFilter("CAKE10", 750, now)

	if filter["code"] != "CAKE10" {
		t.Fatalf("expected code filter, got %v", filter["code"])
	}
	if filter["isActive"] != true {
		t.Fatal("expected isActive constraint")
	}
	if _, ok := filter["expiresAt"]; !ok {
		t.Fatal("expected expiry constraint")
	}
	if _, ok := filter["minOrderAmount"]; !ok {
		t.Fatal("expected minimum order constraint")
	}
	if _, ok := filter["$or"]; !ok {
		t.Fatal("expected usage limit constraint")
	}
}
