package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/models"
)

var (
	errCouponNotApplicable = errors.New("coupon not applicable")
	errBelowMinimumOrder   = errors.New("order total below coupon minimum")
)

// computeDiscount evaluates a coupon against an order total.
// Percentage coupons take total*value/100; fixed coupons take the value
// regardless of total. Totals below the coupon minimum are rejected.
func computeDiscount(coupon models.Coupon, orderTotal float64) (float64, error) {
	if orderTotal < coupon.MinOrderAmount {
		return 0, errBelowMinimumOrder
	}

	switch coupon.DiscountType {
	case models.DiscountPercentage:
		return orderTotal * coupon.DiscountValue / 100, nil
	case models.DiscountFixed:
		return coupon.DiscountValue, nil
	default:
		return 0, errCouponNotApplicable
	}
}

// couponUsableFilter matches a coupon only while it is still usable for
// the given total: active, unexpired, under its usage limit, and above
// its minimum order amount. Pairing this filter with a $inc makes the
// usage increment conditional and atomic, so the limit can never be
// overshot by concurrent checkouts.
func couponUsableFilter(code string, orderTotal float64, now time.Time) bson.M {
	return bson.M{
		"code":           code,
		"isActive":       true,
		"expiresAt":      bson.M{"$gt": now},
		"minOrderAmount": bson.M{"$lte": orderTotal},
		"$or": []bson.M{
			{"usageLimit": bson.M{"$exists": false}},
			{"usageLimit": nil},
			{"$expr": bson.M{"$lt": bson.A{"$usageCount", "$usageLimit"}}},
		},
	}
}

// applyCoupon increments the coupon's usage count and returns the
// computed discount. No match means the coupon is expired, exhausted,
// inactive, or the total is under the minimum.
func applyCoupon(ctx context.Context, db *mongo.Database, code string, orderTotal float64) (float64, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOneAndUpdate(
		ctx,
		couponUsableFilter(code, orderTotal, time.Now()),
		bson.M{
			"$inc": bson.M{"usageCount": 1},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return 0, errCouponNotApplicable
	}
	if err != nil {
		return 0, err
	}

	return computeDiscount(coupon, orderTotal)
}

/* =========================
   SHOPPER VALIDATION
========================= */

type validateCouponRequest struct {
	Code       string  `json:"code" binding:"required"`
	OrderTotal float64 `json:"orderTotal" binding:"required"`
}

// ValidateCoupon is advisory: it reports whether the coupon would apply
// right now and what the discount would be. Checkout re-evaluates the
// same constraints atomically, so a stale answer here cannot oversell
// the coupon.
func ValidateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /coupons/validate"
		defer handlePanic(c, route)

		var req validateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !coupon.IsActive || time.Now().After(coupon.ExpiresAt) {
			respondWithError(c, http.StatusBadRequest, route, "coupon expired")
			return
		}
		if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
			respondWithError(c, http.StatusBadRequest, route, "coupon usage limit reached")
			return
		}

		discount, err := computeDiscount(coupon, req.OrderTotal)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":     coupon.Code,
			"discount": discount,
			"valid":    true,
		})
	}
}

/* =========================
   ADMIN CRUD
========================= */

type couponCreateRequest struct {
	Code           string    `json:"code" binding:"required"`
	DiscountType   string    `json:"discountType" binding:"required"`
	DiscountValue  float64   `json:"discountValue" binding:"required"`
	MinOrderAmount float64   `json:"minOrderAmount"`
	ExpiresAt      time.Time `json:"expiresAt" binding:"required"`
	UsageLimit     *int      `json:"usageLimit"`
}

type couponUpdateRequest struct {
	DiscountValue  *float64   `json:"discountValue"`
	MinOrderAmount *float64   `json:"minOrderAmount"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	UsageLimit     *int       `json:"usageLimit"`
	IsActive       *bool      `json:"isActive"`
}

func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req couponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.DiscountType != models.DiscountPercentage && req.DiscountType != models.DiscountFixed {
			respondWithError(c, http.StatusBadRequest, route, "discountType must be percentage or fixed")
			return
		}
		if req.DiscountValue <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "discountValue must be greater than 0")
			return
		}
		if req.DiscountType == models.DiscountPercentage && req.DiscountValue > 100 {
			respondWithError(c, http.StatusBadRequest, route, "percentage discount cannot exceed 100")
			return
		}
		if req.UsageLimit != nil && *req.UsageLimit < 1 {
			respondWithError(c, http.StatusBadRequest, route, "usageLimit must be at least 1")
			return
		}

		now := time.Now()
		coupon := models.Coupon{
			Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
			DiscountType:   req.DiscountType,
			DiscountValue:  req.DiscountValue,
			MinOrderAmount: req.MinOrderAmount,
			ExpiresAt:      req.ExpiresAt,
			UsageLimit:     req.UsageLimit,
			UsageCount:     0,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "coupon code already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		coupon.ID = res.InsertedID.(primitive.ObjectID)
		log.Println("[COUPON] [INFO] coupon created:", coupon.Code)
		c.JSON(http.StatusCreated, coupon)
	}
}

func GetAllCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/coupons"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": coupons})
	}
}

func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req couponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{}
		if req.DiscountValue != nil {
			if *req.DiscountValue <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "discountValue must be greater than 0")
				return
			}
			update["discountValue"] = *req.DiscountValue
		}
		if req.MinOrderAmount != nil {
			update["minOrderAmount"] = *req.MinOrderAmount
		}
		if req.ExpiresAt != nil {
			update["expiresAt"] = *req.ExpiresAt
		}
		if req.UsageLimit != nil {
			if *req.UsageLimit < 1 {
				respondWithError(c, http.StatusBadRequest, route, "usageLimit must be at least 1")
				return
			}
			update["usageLimit"] = *req.UsageLimit
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		update["updatedAt"] = time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Coupon
		err = db.Collection("coupons").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DeleteCoupon deactivates rather than removes: orders reference codes
// by value and usage history stays auditable.
func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/coupons/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
