package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	}

	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
	}
	return err
}

func EnsureCakeIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slugIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"slug": bson.M{"$exists": true},
			}),
	}

	_, err := db.Collection("cakes").Indexes().CreateOne(ctx, slugIndex)
	if err != nil {
		log.Println("EnsureCakeIndexes: slug index error:", err)
	}
	return err
}

// EnsureOrderIndexes enforces the order identity invariants: the
// internal orderId and the human-facing orderNumber are unique, and the
// gateway order id is unique among orders that have one.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetName("orderId_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("orderNumber_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "razorpayOrderId", Value: 1}},
			Options: options.Index().
				SetName("razorpayOrderId_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"razorpayOrderId": bson.M{"$exists": true},
				}),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
	}

	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
	}
	return err
}

func EnsureCouponIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	codeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("code_unique").SetUnique(true),
	}

	_, err := db.Collection("coupons").Indexes().CreateOne(ctx, codeIndex)
	if err != nil {
		log.Println("EnsureCouponIndexes: code index error:", err)
	}
	return err
}

func EnsureCounterIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("name_unique").SetUnique(true),
	}

	_, err := db.Collection("counters").Indexes().CreateOne(ctx, nameIndex)
	if err != nil {
		log.Println("EnsureCounterIndexes: name index error:", err)
	}
	return err
}

func EnsureReviewIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	perUserIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "cakeId", Value: 1},
			{Key: "userId", Value: 1},
		},
		Options: options.Index().SetName("cake_user_unique").SetUnique(true),
	}

	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, perUserIndex)
	if err != nil {
		log.Println("EnsureReviewIndexes: cake_user index error:", err)
	}
	return err
}

func EnsureWishlistIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_unique").SetUnique(true),
	}

	_, err := db.Collection("wishlists").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureWishlistIndexes: userId index error:", err)
	}
	return err
}
