package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a single address entry for a user. At most one address per user
// carries IsDefault=true; the designation package owns that invariant. A user
// with at least one address always has exactly one default.
type Address struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Detail    string             `bson:"detail" json:"detail"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
