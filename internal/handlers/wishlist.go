package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/middleware"
	"cakeshop/internal/models"
)

// GET /user/wishlist returns the caller's wishlist, resolved to cakes.
func GetWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/wishlist"
		defer handlePanic(c, route)

		userID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var wishlist models.Wishlist
		err := db.Collection("wishlists").FindOne(ctx, bson.M{"userId": userID}).Decode(&wishlist)
		if err == mongo.ErrNoDocuments || len(wishlist.CakeIDs) == 0 {
			c.JSON(http.StatusOK, gin.H{"cakes": []models.Cake{}})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("cakes").Find(ctx, bson.M{
			"_id":       bson.M{"$in": wishlist.CakeIDs},
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		cakes, err := decodeCakes(ctx, cursor)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"cakes": cakes})
	}
}

// POST /user/wishlist/:cakeId. $addToSet with upsert keeps adds
// idempotent even under concurrent requests.
func AddToWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/wishlist/:cakeId"
		defer handlePanic(c, route)

		userID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		cakeID, err := primitive.ObjectIDFromHex(c.Param("cakeId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid cake id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("cakes").CountDocuments(ctx, bson.M{
			"_id":       cakeID,
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count == 0 {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}

		_, err = db.Collection("wishlists").UpdateOne(
			ctx,
			bson.M{"userId": userID},
			bson.M{
				"$addToSet": bson.M{"cakeIds": cakeID},
				"$set":      bson.M{"updatedAt": time.Now()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "added to wishlist"})
	}
}

// DELETE /user/wishlist/:cakeId
func RemoveFromWishlist(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/wishlist/:cakeId"
		defer handlePanic(c, route)

		userID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		cakeID, err := primitive.ObjectIDFromHex(c.Param("cakeId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid cake id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("wishlists").UpdateOne(
			ctx,
			bson.M{"userId": userID},
			bson.M{
				"$pull": bson.M{"cakeIds": cakeID},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.ModifiedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "cake not in wishlist")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
