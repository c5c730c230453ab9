package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/models"
)

type cakeCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required"`
	SaleEnabled bool     `json:"saleEnabled"`
	SalePrice   float64  `json:"salePrice"`
	Category    []string `json:"category" binding:"required"`
	Description string   `json:"description"`
	Flavour     string   `json:"flavour"`
	WeightGrams int      `json:"weightGrams"`
	Eggless     bool     `json:"eggless"`
	ImagePath   string   `json:"imagePath"`
	Stock       int      `json:"stock"`
	IsActive    *bool    `json:"isActive"`
	IsFeatured  bool     `json:"isFeatured"`
}

type cakeUpdateRequest struct {
	Name        *string   `json:"name"`
	Price       *float64  `json:"price"`
	SaleEnabled *bool     `json:"saleEnabled"`
	SalePrice   *float64  `json:"salePrice"`
	Category    *[]string `json:"category"`
	Description *string   `json:"description"`
	Flavour     *string   `json:"flavour"`
	WeightGrams *int      `json:"weightGrams"`
	Eggless     *bool     `json:"eggless"`
	ImagePath   *string   `json:"imagePath"`
	Stock       *int      `json:"stock"`
	IsActive    *bool     `json:"isActive"`
	IsFeatured  *bool     `json:"isFeatured"`
}

var slugStripper = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripper.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func normalizeCategoryNames(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// GET /admin/api/cakes includes inactive and soft-deleted entries.
func GetAllCakes(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/cakes"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := bson.M{}
		if v := strings.TrimSpace(c.Query("isActive")); v != "" {
			filter["isActive"] = v == "true"
		}

		findOptions := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("cakes").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("cakes").Find(ctx, filter, findOptions)
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

		c.JSON(http.StatusOK, gin.H{
			"data": cakes,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// POST /admin/api/cakes
func CreateCake(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/cakes"
		defer handlePanic(c, route)

		var req cakeCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Price <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
			return
		}
		if err := validateSaleFields(req.Price, req.SaleEnabled, req.SalePrice, req.SalePrice > 0); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		categories := normalizeCategoryNames(req.Category)
		if len(categories) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "category required")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		cake := models.Cake{
			Name:        strings.TrimSpace(req.Name),
			Slug:        slugify(req.Name),
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
			Category:    models.StringList(categories),
			Description: strings.TrimSpace(req.Description),
			Flavour:     strings.TrimSpace(req.Flavour),
			WeightGrams: req.WeightGrams,
			Eggless:     req.Eggless,
			ImagePath:   strings.TrimSpace(req.ImagePath),
			Stock:       req.Stock,
			IsActive:    isActive,
			IsFeatured:  req.IsFeatured,
			CreatedAt:   time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("cakes").InsertOne(ctx, cake)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "cake with this name already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cake.ID = res.InsertedID.(primitive.ObjectID)
		cake.InStock = cake.Stock > 0
		cake.IsOnSale = isCakeOnSale(cake.Price, cake.SaleEnabled, cake.SalePrice)

		log.Println("[CAKE] [INFO] cake created:", cake.Slug)
		c.JSON(http.StatusCreated, cake)
	}
}

// PUT /admin/api/cakes/:id
func UpdateCake(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/cakes/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req cakeUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existingRaw bson.M
		err = db.Collection("cakes").FindOne(ctx, bson.M{"_id": id}).Decode(&existingRaw)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		existing, err := normalizeCakeDocument(existingRaw)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		update := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			update["name"] = name
			update["slug"] = slugify(name)
		}

		price := existing.Price
		if req.Price != nil {
			if *req.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
				return
			}
			price = *req.Price
			update["price"] = price
		}

		saleEnabled := existing.SaleEnabled
		salePrice := existing.SalePrice
		salePriceSet := existing.SalePrice > 0
		if req.SaleEnabled != nil {
			saleEnabled = *req.SaleEnabled
			update["saleEnabled"] = saleEnabled
			if !saleEnabled {
				salePrice = 0
				salePriceSet = false
				update["salePrice"] = 0.0
			}
		}
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
			salePriceSet = true
			update["salePrice"] = salePrice
		}
		if err := validateSaleFields(price, saleEnabled, salePrice, salePriceSet); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		if req.Category != nil {
			categories := normalizeCategoryNames(*req.Category)
			if len(categories) == 0 {
				respondWithError(c, http.StatusBadRequest, route, "category required")
				return
			}
			update["category"] = categories
		}
		if req.Description != nil {
			update["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Flavour != nil {
			update["flavour"] = strings.TrimSpace(*req.Flavour)
		}
		if req.WeightGrams != nil {
			update["weightGrams"] = *req.WeightGrams
		}
		if req.Eggless != nil {
			update["eggless"] = *req.Eggless
		}
		if req.ImagePath != nil {
			update["imagePath"] = strings.TrimSpace(*req.ImagePath)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stock cannot be negative")
				return
			}
			update["stock"] = *req.Stock
		}
		if req.IsActive != nil {
			update["isActive"] = *req.IsActive
		}
		if req.IsFeatured != nil {
			update["isFeatured"] = *req.IsFeatured
		}

		if len(update) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		var updatedRaw bson.M
		err = db.Collection("cakes").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updatedRaw)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		updated, err := normalizeCakeDocument(updatedRaw)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /admin/api/cakes/:id is a soft delete; order items keep their
// snapshots either way.
func DeleteCake(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/cakes/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("cakes").UpdateOne(
			ctx,
			bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"isActive":  false,
				"deletedAt": now,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "cake not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}
