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

type reviewCreateRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// GET /cakes/:slug/reviews is public, newest first.
func GetCakeReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cakes/:slug/reviews"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cake, err := findActiveCakeBySlug(ctx, db, c.Param("slug"))
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("reviews").Find(ctx, bson.M{"cakeId": cake.ID}, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		reviews := make([]models.Review, 0)
		if err := cursor.All(ctx, &reviews); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":          reviews,
			"averageRating": averageRating(reviews),
		})
	}
}

// POST /cakes/:slug/reviews allows one review per shopper per cake,
// enforced by the compound unique index.
func CreateCakeReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cakes/:slug/reviews"
		defer handlePanic(c, route)

		userID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req reviewCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Rating < 1 || req.Rating > 5 {
			respondWithError(c, http.StatusBadRequest, route, "rating must be between 1 and 5")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cake, err := findActiveCakeBySlug(ctx, db, c.Param("slug"))
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "user not found")
			return
		}

		review := models.Review{
			CakeID:    cake.ID,
			UserID:    userID,
			UserName:  user.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now(),
		}

		res, err := db.Collection("reviews").InsertOne(ctx, review)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "you have already reviewed this cake")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		review.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, review)
	}
}

// DELETE /cakes/:slug/reviews removes the caller's own review.
func DeleteCakeReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cakes/:slug/reviews"
		defer handlePanic(c, route)

		userID, ok := middleware.CallerID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cake, err := findActiveCakeBySlug(ctx, db, c.Param("slug"))
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		res, err := db.Collection("reviews").DeleteOne(ctx, bson.M{
			"cakeId": cake.ID,
			"userId": userID,
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "review not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func findActiveCakeBySlug(ctx context.Context, db *mongo.Database, slug string) (models.Cake, error) {
	var cake models.Cake
	err := db.Collection("cakes").FindOne(ctx, bson.M{
		"slug":      slug,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&cake)
	return cake, err
}

func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
