package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/mailer"
	"cakeshop/internal/models"
	"cakeshop/internal/payment"
)

// errPaymentConflict: the order exists but is not Pending and its
// recorded payment does not match the one being reconciled.
var errPaymentConflict = errors.New("order not awaiting this payment")

// reconcileOutcome classifies an order the conditional update did not
// transition. A Completed order already carrying the same payment id is
// a settled duplicate and succeeds as a no-op; any other state means
// the order is not awaiting this payment.
func reconcileOutcome(order models.Order, paymentID string) error {
	if order.PaymentStatus == models.PaymentCompleted && order.RazorpayPaymentID == paymentID {
		return nil
	}
	return errPaymentConflict
}

// reconcilePayment transitions the order found by gateway order id from
// Pending to Completed, recording the payment id. The filter makes the
// transition conditional, so concurrent webhook and client-confirmation
// calls cannot double-apply: exactly one caller observes the
// transition (transitioned=true); later duplicates observe the already
// terminal state and no-op.
func reconcilePayment(ctx context.Context, db *mongo.Database, gatewayOrderID, paymentID string) (models.Order, bool, error) {
	var order models.Order
	err := db.Collection("orders").FindOneAndUpdate(
		ctx,
		bson.M{
			"razorpayOrderId": gatewayOrderID,
			"paymentStatus":   models.PaymentPending,
		},
		bson.M{"$set": bson.M{
			"razorpayPaymentId": paymentID,
			"paymentStatus":     models.PaymentCompleted,
			"updatedAt":         time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == nil {
		return order, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Order{}, false, err
	}

	// No Pending order matched: either unknown, or already reconciled.
	err = db.Collection("orders").FindOne(ctx, bson.M{"razorpayOrderId": gatewayOrderID}).Decode(&order)
	if err != nil {
		return models.Order{}, false, err
	}

	return order, false, reconcileOutcome(order, paymentID)
}

// sendOrderConfirmation is best-effort: a failed send is logged, never
// propagated, and never rolls back the payment status.
func sendOrderConfirmation(ctx context.Context, db *mongo.Database, m mailer.Mailer, order models.Order) {
	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserID}).Decode(&user); err != nil {
		log.Println("[PAYMENT] [ERROR] confirmation mail user lookup failed:", err)
		return
	}

	body := mailer.OrderConfirmationBody(order.OrderNumber, order.TotalAmount)
	if err := m.Send(user.Email, "Your cake order "+order.OrderNumber+" is confirmed", body); err != nil {
		log.Println("[PAYMENT] [ERROR] confirmation mail send failed:", err)
		return
	}
	log.Println("[PAYMENT] [INFO] confirmation mail sent for order:", order.OrderNumber)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

// VerifyPayment is the client-confirmed path: the shopper's browser
// reports the payment with a signature minted by the gateway checkout.
func VerifyPayment(db *mongo.Database, gateway payment.Gateway, m mailer.Mailer, keySecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/verify"
		defer handlePanic(c, route)

		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !payment.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.Signature, keySecret) {
			log.Printf("[PAYMENT] [ERROR] signature mismatch for gateway order %s (possible forgery)", req.RazorpayOrderID)
			respondWithError(c, http.StatusUnauthorized, route, "invalid signature")
			return
		}

		// A correctly signed but stale replay still has to match the
		// gateway's authoritative record.
		gwPayment, err := gateway.FetchPayment(req.RazorpayPaymentID)
		if err != nil {
			log.Println("[PAYMENT] [ERROR] gateway payment fetch failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "payment verification failed")
			return
		}
		if gwPayment.Status != payment.StatusCaptured {
			respondWithError(c, http.StatusBadRequest, route, "payment not captured")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, transitioned, err := reconcilePayment(ctx, db, req.RazorpayOrderID, req.RazorpayPaymentID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if errors.Is(err, errPaymentConflict) {
			respondWithError(c, http.StatusConflict, route, "payment verification failed")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if transitioned {
			sendOrderConfirmation(ctx, db, m, order)
		}

		c.JSON(http.StatusOK, gin.H{
			"orderId":       order.OrderID,
			"orderNumber":   order.OrderNumber,
			"paymentStatus": order.PaymentStatus,
		})
	}
}
