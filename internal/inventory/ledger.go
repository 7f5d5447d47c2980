// Package inventory is the stock ledger. Reserve and Restore run inside the
// caller's mongo session so a later failure in the same unit of work rolls
// the stock change back with everything else; neither does any recovery of
// its own.
package inventory

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type NotFoundError struct {
	ProductID primitive.ObjectID
}

func (e NotFoundError) Error() string {
	return "product not found: " + e.ProductID.Hex()
}

type InsufficientStockError struct {
	ProductID primitive.ObjectID
	Name      string
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID.Hex(), e.Available, e.Requested)
}

// Reserve decrements a product's stock by quantity. The decrement is a
// conditional update filtered on stock >= quantity, so two concurrent
// reservations can never drive the counter negative: the loser of the race
// matches nothing and the whole transaction aborts.
func Reserve(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be greater than zero")
	}

	var product models.Product
	err := db.Collection("products").FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return NotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}

	if product.Stock < quantity {
		return InsufficientStockError{
			ProductID: productID,
			Name:      product.Name,
			Available: product.Stock,
			Requested: quantity,
		}
	}

	res, err := db.Collection("products").UpdateOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
		"stock":     bson.M{"$gte": quantity},
	}, bson.M{
		"$inc": bson.M{"stock": -quantity},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Lost the race between the read above and the update. Re-read so the
		// error reports the stock that actually blocked us, not the stale value.
		available := product.Stock
		var fresh models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&fresh); err == nil {
			available = fresh.Stock
		}
		return InsufficientStockError{
			ProductID: productID,
			Name:      product.Name,
			Available: available,
			Requested: quantity,
		}
	}

	return nil
}

// Restore increments a product's stock by quantity. Used only by order
// cancellation, inside the same transaction that flips the order status.
func Restore(ctx context.Context, db *mongo.Database, productID primitive.ObjectID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be greater than zero")
	}

	res, err := db.Collection("products").UpdateOne(ctx, bson.M{
		"_id": productID,
	}, bson.M{
		"$inc": bson.M{"stock": quantity},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return NotFoundError{ProductID: productID}
	}

	return nil
}
