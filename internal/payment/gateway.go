package payment

import (
	"errors"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
)

// StatusCaptured is the only gateway payment status that completes an
// order; anything else is treated as not-yet-paid.
const StatusCaptured = "captured"

// GatewayOrder is the handle returned by the gateway at order creation.
// Amount is in minor currency units (major units x 100).
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// GatewayPayment is the authoritative payment record fetched back from
// the gateway during verification.
type GatewayPayment struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Gateway is the slice of the payment processor the order flow needs.
// Handlers depend on this interface so tests can substitute a fake.
type Gateway interface {
	CreateOrder(amountMinor int64, currency, receipt string) (GatewayOrder, error)
	FetchPayment(paymentID string) (GatewayPayment, error)
}

// MinorUnits converts a major-unit amount to the gateway's integer
// minor units. Rounding guards against float artifacts like 99.99*100
// landing at 9998.999....
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway wraps the Razorpay SDK client.
func NewRazorpayGateway(keyID, keySecret string) Gateway {
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *razorpayGateway) CreateOrder(amountMinor int64, currency, receipt string) (GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return GatewayOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return GatewayOrder{}, errors.New("razorpay create order: response missing id")
	}

	return GatewayOrder{
		ID:       id,
		Amount:   amountMinor,
		Currency: currency,
	}, nil
}

func (g *razorpayGateway) FetchPayment(paymentID string) (GatewayPayment, error) {
	body, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return GatewayPayment{}, fmt.Errorf("razorpay fetch payment: %w", err)
	}

	status, _ := body["status"].(string)
	orderID, _ := body["order_id"].(string)

	return GatewayPayment{
		ID:      paymentID,
		OrderID: orderID,
		Status:  status,
	}, nil
}
