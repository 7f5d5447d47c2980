package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	barcodeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "barcode", Value: 1}},
		Options: options.Index().
			SetName("barcode_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"barcode": bson.M{
					"$exists": true,
				},
			}),
	}

	log.Println("EnsureProductIndexes: creating barcode_unique index")
	_, err := indexes.CreateOne(ctx, barcodeIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: barcode index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: barcode_unique index created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys: bson.D{{Key: "number", Value: 1}},
			Options: options.Index().
				SetName("number_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := indexes.CreateMany(ctx, orderIndexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: order indexes created")
	return nil
}

// EnsureAddressIndexes backs the one-default-per-user rule with a partial
// unique index: two committed defaults for the same user are rejected by the
// database even if application code regresses.
func EnsureAddressIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("addresses").Indexes()

	addressIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetName("userId_default_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"isDefault": true,
				}),
		},
	}

	log.Println("EnsureAddressIndexes: creating address indexes")
	_, err := indexes.CreateMany(ctx, addressIndexes)
	if err != nil {
		log.Println("EnsureAddressIndexes: address index error:", err)
		return err
	}
	log.Println("EnsureAddressIndexes: address indexes created")
	return nil
}

// EnsureProductImageIndexes mirrors EnsureAddressIndexes for the one-primary-
// per-product rule.
func EnsureProductImageIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("product_images").Indexes()

	imageIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "productId", Value: 1}},
			Options: options.Index().SetName("productId_index"),
		},
		{
			Keys: bson.D{{Key: "productId", Value: 1}},
			Options: options.Index().
				SetName("productId_primary_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"isPrimary": true,
				}),
		},
	}

	log.Println("EnsureProductImageIndexes: creating product image indexes")
	_, err := indexes.CreateMany(ctx, imageIndexes)
	if err != nil {
		log.Println("EnsureProductImageIndexes: product image index error:", err)
		return err
	}
	log.Println("EnsureProductImageIndexes: product image indexes created")
	return nil
}
