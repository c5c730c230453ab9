package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/cache"
	"cakeshop/internal/models"
)

const (
	settingsName       = "storefront"
	homeContentKey     = "content:home"
	defaultContentTTL  = 3600
	cacheOpTimeout     = 2 * time.Second
	settingsCollection = "settings"
)

type homeContentUpdateRequest struct {
	Headline     *string   `json:"headline"`
	Tagline      *string   `json:"tagline"`
	BannerURLs   *[]string `json:"bannerUrls"`
	Announcement *string   `json:"announcement"`
}

type settingsUpdateRequest struct {
	CacheStrategy     *string `json:"cacheStrategy"`
	ContentTTLSeconds *int    `json:"contentTtlSeconds"`
}

func loadSettings(ctx context.Context, db *mongo.Database) (models.Settings, error) {
	var settings models.Settings
	err := db.Collection(settingsCollection).FindOne(ctx, bson.M{"name": settingsName}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return models.Settings{
			Name:              settingsName,
			CacheStrategy:     models.CacheStrategyISR,
			ContentTTLSeconds: defaultContentTTL,
			Home:              models.HomeContent{BannerURLs: []string{}},
		}, nil
	}
	return settings, err
}

func contentTTL(settings models.Settings) time.Duration {
	seconds := settings.ContentTTLSeconds
	if seconds <= 0 {
		seconds = defaultContentTTL
	}
	return time.Duration(seconds) * time.Second
}

/*
GET /content/home

With cacheStrategy "redis" this is a read-through: serve the cached JSON
blob when present, otherwise load from Mongo and populate the cache with
the admin-configured TTL. Cache failures degrade to a plain read.
*/
func GetHomeContent(db *mongo.Database, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /content/home"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		settings, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		useCache := settings.CacheStrategy == models.CacheStrategyRedis
		if useCache {
			cacheCtx, cacheCancel := context.WithTimeout(c.Request.Context(), cacheOpTimeout)
			blob, err := store.Get(cacheCtx, homeContentKey)
			cacheCancel()
			if err != nil {
				log.Printf("[%s] cache read failed, falling back to db: %v", route, err)
			} else if blob != nil {
				c.Data(http.StatusOK, "application/json", blob)
				return
			}
		}

		body, err := json.Marshal(settings.Home)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "encode error")
			return
		}

		if useCache {
			cacheCtx, cacheCancel := context.WithTimeout(c.Request.Context(), cacheOpTimeout)
			if err := store.Set(cacheCtx, homeContentKey, body, contentTTL(settings)); err != nil {
				log.Printf("[%s] cache write failed: %v", route, err)
			}
			cacheCancel()
		}

		c.Data(http.StatusOK, "application/json", body)
	}
}

// PUT /admin/api/content/home updates the blob and drops the cached
// copy so the next read serves fresh content.
func UpdateHomeContent(db *mongo.Database, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/content/home"
		defer handlePanic(c, route)

		var req homeContentUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Headline != nil {
			set["home.headline"] = *req.Headline
		}
		if req.Tagline != nil {
			set["home.tagline"] = *req.Tagline
		}
		if req.BannerURLs != nil {
			set["home.bannerUrls"] = *req.BannerURLs
		}
		if req.Announcement != nil {
			set["home.announcement"] = *req.Announcement
		}
		if len(set) == 1 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Settings
		err := db.Collection(settingsCollection).FindOneAndUpdate(
			ctx,
			bson.M{"name": settingsName},
			bson.M{
				"$set":         set,
				"$setOnInsert": bson.M{"cacheStrategy": models.CacheStrategyISR, "contentTtlSeconds": defaultContentTTL},
			},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cacheCtx, cacheCancel := context.WithTimeout(c.Request.Context(), cacheOpTimeout)
		if err := store.Delete(cacheCtx, homeContentKey); err != nil {
			log.Printf("[%s] cache invalidation failed: %v", route, err)
		}
		cacheCancel()

		c.JSON(http.StatusOK, updated.Home)
	}
}

// GET /admin/api/settings
func GetSettings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/settings"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		settings, err := loadSettings(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, settings)
	}
}

// PUT /admin/api/settings switches cache strategy or TTL. Switching
// away from redis drops the cached blob immediately.
func UpdateSettings(db *mongo.Database, store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/settings"
		defer handlePanic(c, route)

		var req settingsUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.CacheStrategy != nil {
			strategy := *req.CacheStrategy
			if strategy != models.CacheStrategyISR && strategy != models.CacheStrategyRedis {
				respondWithError(c, http.StatusBadRequest, route, "invalid cache strategy: "+strategy)
				return
			}
			set["cacheStrategy"] = strategy
		}
		if req.ContentTTLSeconds != nil {
			if *req.ContentTTLSeconds <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "contentTtlSeconds must be positive")
				return
			}
			set["contentTtlSeconds"] = *req.ContentTTLSeconds
		}
		if len(set) == 1 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Settings
		err := db.Collection(settingsCollection).FindOneAndUpdate(
			ctx,
			bson.M{"name": settingsName},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if req.CacheStrategy != nil && *req.CacheStrategy != models.CacheStrategyRedis {
			cacheCtx, cacheCancel := context.WithTimeout(c.Request.Context(), cacheOpTimeout)
			if err := store.Delete(cacheCtx, homeContentKey); err != nil {
				log.Printf("[%s] cache invalidation failed: %v", route, err)
			}
			cacheCancel()
		}

		c.JSON(http.StatusOK, updated)
	}
}
