package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist holds one document per user, maintained with $addToSet/$pull.
type Wishlist struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"userId" json:"userId"`
	CakeIDs   []primitive.ObjectID `bson:"cakeIds" json:"cakeIds"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
