package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment status values. Pending may move to Completed or Failed;
// Completed is terminal.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
)

// Order status values, admin-controlled after placement.
const (
	OrderPlaced    = "Placed"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
	OrderCancelled = "Cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodRazorpay = "razorpay"
)

// ValidPaymentStatus reports whether s is a recognized payment status.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentCompleted || s == PaymentFailed
}

// ValidOrderStatus reports whether s is a recognized order status.
func ValidOrderStatus(s string) bool {
	return s == OrderPlaced || s == OrderShipped || s == OrderDelivered || s == OrderCancelled
}

// OrderItem is a snapshot of a cake at the time of order, not a live
// reference: name and price are captured so later catalog edits do not
// rewrite order history.
type OrderItem struct {
	CakeID   primitive.ObjectID `bson:"cakeId" json:"cakeId"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// ShippingAddress is denormalized onto the order.
type ShippingAddress struct {
	Title  string `bson:"title" json:"title"`
	Detail string `bson:"detail" json:"detail"`
	City   string `bson:"city,omitempty" json:"city,omitempty"`
	Pin    string `bson:"pin,omitempty" json:"pin,omitempty"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order is the persisted purchase transaction.
//
// OrderID is the internal UUID; OrderNumber is the sequential
// human-facing number minted from the counters collection.
// RazorpayOrderID is assigned exactly once at creation (gateway orders
// only); RazorpayPaymentID exactly once at successful verification.
type Order struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	OrderID           string              `bson:"orderId" json:"orderId"`
	OrderNumber       string              `bson:"orderNumber" json:"orderNumber"`
	UserID            primitive.ObjectID  `bson:"userId" json:"userId"`
	Items             []OrderItem         `bson:"items" json:"items"`
	TotalAmount       float64             `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod     string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus     string              `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus       string              `bson:"orderStatus" json:"orderStatus"`
	RazorpayOrderID   string              `bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID string              `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	CouponCode        string              `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	Discount          float64             `bson:"discount,omitempty" json:"discount,omitempty"`
	ShippingAddress   ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	UpdatedBy         *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}
