package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"cakeshop/internal/mailer"
	"cakeshop/internal/payment"
)

const (
	webhookSignatureHeader = "X-Razorpay-Signature"
	eventPaymentCaptured   = "payment.captured"
	maxWebhookBodyBytes    = int64(65536)
)

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// shouldReconcileEvent filters the at-least-once webhook stream: only a
// captured payment changes order state, everything else is acked and
// dropped. The entity status must agree with the event name; a
// payment.captured envelope around a non-captured entity is malformed
// and ignored.
func shouldReconcileEvent(event, entityStatus string) bool {
	return event == eventPaymentCaptured && entityStatus == payment.StatusCaptured
}

// PaymentWebhook is the gateway-driven path. It must reach the same end
// state as the client-confirmed path without trusting the client, and
// must tolerate duplicate deliveries without re-sending mail.
func PaymentWebhook(db *mongo.Database, m mailer.Mailer, webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/webhook"
		defer handlePanic(c, route)

		// The signature covers the raw body; it must be read before
		// any JSON parsing touches it.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		signature := c.GetHeader(webhookSignatureHeader)
		if !payment.VerifyWebhookSignature(body, signature, webhookSecret) {
			log.Println("[WEBHOOK] [ERROR] signature mismatch (possible forgery)")
			respondWithError(c, http.StatusUnauthorized, route, "invalid signature")
			return
		}

		var event webhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid payload")
			return
		}

		if !shouldReconcileEvent(event.Event, event.Payload.Payment.Entity.Status) {
			log.Println("[WEBHOOK] [INFO] ignoring event:", event.Event)
			c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
			return
		}

		entity := event.Payload.Payment.Entity
		if entity.OrderID == "" || entity.ID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid payload")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, transitioned, err := reconcilePayment(ctx, db, entity.OrderID, entity.ID)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if errors.Is(err, errPaymentConflict) {
			// Delivered out of order or for a payment we already
			// settled differently; ack so the gateway stops retrying.
			log.Printf("[WEBHOOK] [ERROR] payment %s conflicts with order %s", entity.ID, order.OrderNumber)
			c.JSON(http.StatusOK, gin.H{"message": "acknowledged"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if transitioned {
			log.Printf("[WEBHOOK] [INFO] order %s reconciled by webhook", order.OrderNumber)
			sendOrderConfirmation(ctx, db, m, order)
		} else {
			log.Printf("[WEBHOOK] [INFO] duplicate delivery for order %s ignored", order.OrderNumber)
		}

		c.JSON(http.StatusOK, gin.H{"message": "acknowledged"})
	}
}
