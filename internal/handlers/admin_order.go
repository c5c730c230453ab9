package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/middleware"
	"cakeshop/internal/models"
)

/* =========================
   LIST / FILTER
========================= */

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		filter := bson.M{}

		if v := strings.TrimSpace(c.Query("paymentStatus")); v != "" {
			if !models.ValidPaymentStatus(v) {
				respondWithError(c, http.StatusBadRequest, route, "invalid paymentStatus filter")
				return
			}
			filter["paymentStatus"] = v
		}
		if v := strings.TrimSpace(c.Query("orderStatus")); v != "" {
			if !models.ValidOrderStatus(v) {
				respondWithError(c, http.StatusBadRequest, route, "invalid orderStatus filter")
				return
			}
			filter["orderStatus"] = v
		}
		if v := strings.TrimSpace(c.Query("orderNumber")); v != "" {
			filter["orderNumber"] = v
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

/* =========================
   STATUS UPDATE
========================= */

type orderStatusUpdateRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

// buildStatusUpdate turns a status-update request into a $set document.
// Unrecognized enum values are rejected outright rather than silently
// dropped; every accepted update stamps the acting admin and time.
func buildStatusUpdate(req orderStatusUpdateRequest, adminID primitive.ObjectID, now time.Time) (bson.M, error) {
	if req.OrderStatus == nil && req.PaymentStatus == nil {
		return nil, errors.New("orderStatus or paymentStatus is required")
	}

	set := bson.M{}
	if req.OrderStatus != nil {
		if !models.ValidOrderStatus(*req.OrderStatus) {
			return nil, errors.New("invalid orderStatus")
		}
		set["orderStatus"] = *req.OrderStatus
	}
	if req.PaymentStatus != nil {
		if !models.ValidPaymentStatus(*req.PaymentStatus) {
			return nil, errors.New("invalid paymentStatus")
		}
		set["paymentStatus"] = *req.PaymentStatus
	}

	set["updatedBy"] = adminID
	set["updatedAt"] = now
	return set, nil
}

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID := strings.TrimSpace(c.Param("id"))
		if orderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		adminID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req orderStatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set, err := buildStatusUpdate(req, adminID, time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		// Payment status may only move off Pending; Completed and
		// Failed are terminal, even for admins.
		filter := bson.M{"orderId": orderID}
		if req.PaymentStatus != nil {
			filter["paymentStatus"] = models.PaymentPending
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Order
		err = db.Collection("orders").FindOneAndUpdate(
			ctx,
			filter,
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			if req.PaymentStatus != nil {
				count, countErr := db.Collection("orders").CountDocuments(ctx, bson.M{"orderId": orderID})
				if countErr == nil && count > 0 {
					respondWithError(c, http.StatusConflict, route, "payment status is no longer Pending")
					return
				}
			}
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}
