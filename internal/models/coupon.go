package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount types a coupon can carry.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount rule. UsageCount only ever grows and must not
// exceed UsageLimit when the limit is set; the checkout path enforces
// that with a conditional atomic increment rather than trusting an
// earlier validate call.
type Coupon struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code           string             `bson:"code" json:"code"`
	DiscountType   string             `bson:"discountType" json:"discountType"`
	DiscountValue  float64            `bson:"discountValue" json:"discountValue"`
	MinOrderAmount float64            `bson:"minOrderAmount" json:"minOrderAmount"`
	ExpiresAt      time.Time          `bson:"expiresAt" json:"expiresAt"`
	UsageLimit     *int               `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	UsageCount     int                `bson:"usageCount" json:"usageCount"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
