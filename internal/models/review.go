package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one shopper's rating of one cake. A compound unique index
// on (cakeId, userId) keeps it to one review per shopper per cake.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CakeID    primitive.ObjectID `bson:"cakeId" json:"cakeId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
