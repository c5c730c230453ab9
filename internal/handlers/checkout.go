package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cakeshop/internal/middleware"
	"cakeshop/internal/models"
	"cakeshop/internal/payment"
)

const orderCurrency = "INR"

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	CakeID   string `json:"cakeId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type checkoutAddressRequest struct {
	Title  string `json:"title" binding:"required"`
	Detail string `json:"detail" binding:"required"`
	City   string `json:"city"`
	Pin    string `json:"pin"`
	Note   string `json:"note"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest  `json:"items" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	ShippingAddress checkoutAddressRequest `json:"shippingAddress" binding:"required"`
	CouponCode      string                 `json:"couponCode"`
}

type draftItem struct {
	CakeID   primitive.ObjectID
	Quantity int
}

// parseCheckoutItems validates the raw cart lines. Prices are never
// taken from the request; they are captured from the catalog inside the
// checkout transaction.
func parseCheckoutItems(req checkoutRequest) ([]draftItem, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("at least one item is required")
	}

	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodRazorpay {
		return nil, errors.New("invalid payment method")
	}

	items := make([]draftItem, 0, len(req.Items))
	for _, item := range req.Items {
		cakeID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.CakeID))
		if err != nil {
			return nil, errors.New("invalid cakeId")
		}
		if item.Quantity <= 0 {
			return nil, errors.New("quantity must be greater than zero")
		}
		items = append(items, draftItem{CakeID: cakeID, Quantity: item.Quantity})
	}

	return items, nil
}

// initialPaymentStatus: COD orders are settled at the door and recorded
// Completed at placement; gateway orders start Pending and are
// reconciled by verification or the webhook.
func initialPaymentStatus(method string) string {
	if method == models.PaymentMethodCOD {
		return models.PaymentCompleted
	}
	return models.PaymentPending
}

// needsGatewayOrder reports whether checkout still has to create a
// gateway order. WithTransaction may re-run its callback on transient
// errors; an id minted by an earlier attempt is reused, not recreated.
// A gateway order from an attempt that ultimately aborts is abandoned
// unpaid at the gateway.
func needsGatewayOrder(method, gatewayOrderID string) bool {
	return method == models.PaymentMethodRazorpay && gatewayOrderID == ""
}

/* =========================
   CREATE ORDER (CHECKOUT)
========================= */

func CreateOrder(db *mongo.Database, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email, ok := middleware.CallerEmail(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		draft, err := parseCheckoutItems(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		// The session email is the join key; a session without a
		// backing user record is an error, not a guest checkout.
		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			log.Println("[ORDER] [ERROR] session user not found:", email)
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		couponCode := strings.ToUpper(strings.TrimSpace(req.CouponCode))
		now := time.Now()

		order := models.Order{
			OrderID:       uuid.NewString(),
			UserID:        user.ID,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: initialPaymentStatus(req.PaymentMethod),
			OrderStatus:   models.OrderPlaced,
			ShippingAddress: models.ShippingAddress{
				Title:  strings.TrimSpace(req.ShippingAddress.Title),
				Detail: strings.TrimSpace(req.ShippingAddress.Detail),
				City:   strings.TrimSpace(req.ShippingAddress.City),
				Pin:    strings.TrimSpace(req.ShippingAddress.Pin),
				Note:   strings.TrimSpace(req.ShippingAddress.Note),
			},
			CreatedAt: now,
			UpdatedAt: now,
		}

		var gatewayOrder payment.GatewayOrder

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			items := make([]models.OrderItem, 0, len(draft))
			total := 0.0

			for _, line := range draft {
				var cake models.Cake
				err := db.Collection("cakes").FindOne(
					sessCtx,
					bson.M{
						"_id":       line.CakeID,
						"isDeleted": bson.M{"$ne": true},
					},
				).Decode(&cake)
				if err == mongo.ErrNoDocuments {
					return nil, cakeNotFoundError{CakeID: line.CakeID}
				}
				if err != nil {
					return nil, err
				}

				if cake.Stock < line.Quantity {
					return nil, outOfStockError{
						CakeID:    line.CakeID,
						Available: cake.Stock,
						Requested: line.Quantity,
					}
				}

				unitPrice := effectiveCakePrice(cake.Price, cake.SaleEnabled, cake.SalePrice)
				items = append(items, models.OrderItem{
					CakeID:   line.CakeID,
					Name:     cake.Name,
					Price:    unitPrice,
					Quantity: line.Quantity,
				})
				total += unitPrice * float64(line.Quantity)

				res, err := db.Collection("cakes").UpdateOne(
					sessCtx,
					bson.M{
						"_id":       line.CakeID,
						"isDeleted": bson.M{"$ne": true},
						"stock":     bson.M{"$gte": line.Quantity},
					},
					bson.M{"$inc": bson.M{"stock": -line.Quantity}},
				)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						CakeID:    line.CakeID,
						Available: cake.Stock,
						Requested: line.Quantity,
					}
				}
			}

			if couponCode != "" {
				discount, err := applyCoupon(sessCtx, db, couponCode, total)
				if err != nil {
					return nil, err
				}
				if discount > total {
					discount = total
				}
				order.CouponCode = couponCode
				order.Discount = discount
				total -= discount
			}

			order.Items = items
			order.TotalAmount = total

			// Gap accepted: a failure past this point abandons the
			// minted number, it is never reused.
			orderNumber, err := nextOrderNumber(sessCtx, db)
			if err != nil {
				return nil, err
			}
			order.OrderNumber = orderNumber

			if needsGatewayOrder(req.PaymentMethod, gatewayOrder.ID) {
				gatewayOrder, err = gateway.CreateOrder(
					payment.MinorUnits(total),
					orderCurrency,
					order.OrderNumber,
				)
				if err != nil {
					return nil, gatewayError{cause: err}
				}
			}
			if req.PaymentMethod == models.PaymentMethodRazorpay {
				order.RazorpayOrderID = gatewayOrder.ID
			}

			if _, err := db.Collection("orders").InsertOne(sessCtx, order); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "out of stock",
					"cakeId":    stockErr.CakeID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr cakeNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "cake not found",
					"cakeId": notFoundErr.CakeID.Hex(),
				})
				return
			}
			if errors.Is(err, errCouponNotApplicable) || errors.Is(err, errBelowMinimumOrder) {
				respondWithError(c, http.StatusBadRequest, route, "coupon cannot be applied")
				return
			}
			var gwErr gatewayError
			if errors.As(err, &gwErr) {
				log.Println("[ORDER] [ERROR] gateway order creation failed:", gwErr.cause)
				respondWithError(c, http.StatusBadGateway, route, "payment gateway unavailable")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[ORDER] [INFO] order %s created for user %s method=%s", order.OrderNumber, user.ID.Hex(), order.PaymentMethod)

		resp := gin.H{
			"orderId":     order.OrderID,
			"orderNumber": order.OrderNumber,
			"totalAmount": order.TotalAmount,
			"message":     "order created",
		}
		if order.PaymentMethod == models.PaymentMethodRazorpay {
			resp["razorpayOrder"] = gatewayOrder
		}

		c.JSON(http.StatusCreated, resp)
	}
}

type outOfStockError struct {
	CakeID    primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "cake out of stock"
}

type cakeNotFoundError struct {
	CakeID primitive.ObjectID
}

func (e cakeNotFoundError) Error() string {
	return "cake not found"
}

type gatewayError struct {
	cause error
}

func (e gatewayError) Error() string {
	return "payment gateway error"
}

func (e gatewayError) Unwrap() error {
	return e.cause
}
