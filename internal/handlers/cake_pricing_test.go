package handlers

import "testing"

func TestIsCakeOnSale(t *testing.T) {
	cases := []struct {
		name        string
		price       float64
		saleEnabled bool
		salePrice   float64
		want        bool
	}{
		{"enabled and cheaper", 500, true, 400, true},
		{"disabled", 500, false, 400, false},
		{"sale price zero", 500, true, 0, false},
		{"sale price equals price", 500, true, 500, false},
		{"sale price above price", 500, true, 600, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isCakeOnSale(tc.price, tc.saleEnabled, tc.salePrice); got != tc.want {
				t.Errorf("isCakeOnSale(%v, %v, %v) = %v, want %v",
					tc.price, tc.saleEnabled, tc.salePrice, got, tc.want)
			}
		})
	}
}

func TestEffectiveCakePrice(t *testing.T) {
	if got := effectiveCakePrice(500, true, 400); got != 400 {
		t.Errorf("on-sale price = %v, want 400", got)
	}
	if got := effectiveCakePrice(500, false, 400); got != 500 {
		t.Errorf("regular price = %v, want 500", got)
	}
	if got := effectiveCakePrice(500, true, 600); got != 500 {
		t.Errorf("invalid sale should fall back to price, got %v", got)
	}
}

func TestValidateSaleFields(t *testing.T) {
	if err := validateSaleFields(500, false, 0, false); err != nil {
		t.Errorf("sale disabled should always validate, got %v", err)
	}
	if err := validateSaleFields(500, true, 400, true); err != nil {
		t.Errorf("valid sale rejected: %v", err)
	}
	if err := validateSaleFields(500, true, 0, false); err == nil {
		t.Error("missing salePrice should be rejected")
	}
	if err := validateSaleFields(500, true, 0, true); err == nil {
		t.Error("zero salePrice should be rejected")
	}
	if err := validateSaleFields(500, true, 500, true); err == nil {
		t.Error("salePrice >= price should be rejected")
	}
}
