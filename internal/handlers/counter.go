package handlers

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cakeshop/internal/models"
)

const orderCounterName = "orderNumber"

// nextSequence atomically increments the named counter and returns the
// new value. The upsert seeds the counter on first use.
func nextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var counter models.Counter
	err := db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// formatOrderNumber renders the human-facing order number. Sequences
// past five digits simply widen.
func formatOrderNumber(seq int64) string {
	return fmt.Sprintf("CK%05d", seq)
}

// nextOrderNumber mints the next order number. Values are strictly
// increasing across concurrent checkouts; a checkout that fails after
// this call leaves a gap, never a duplicate.
func nextOrderNumber(ctx context.Context, db *mongo.Database) (string, error) {
	seq, err := nextSequence(ctx, db, orderCounterName)
	if err != nil {
		return "", err
	}
	return formatOrderNumber(seq), nil
}
