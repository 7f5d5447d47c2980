package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/designation"
	"storefront/internal/models"
)

func respondImageError(c *gin.Context, route string, err error) {
	var notFound designation.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate entry"})
		return
	}

	log.Printf("[IMAGE] [ERROR] %s failed: %v", route, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

func findProductOr404(ctx context.Context, c *gin.Context, db *mongo.Database) (primitive.ObjectID, bool) {
	productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}

	err = db.Collection("products").FindOne(ctx, bson.M{
		"_id":       productID,
		"isDeleted": bson.M{"$ne": true},
	}).Err()
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ürün bulunamadı"})
		return primitive.NilObjectID, false
	}
	if err != nil {
		log.Println("[IMAGE] [ERROR] product lookup failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return primitive.NilObjectID, false
	}

	return productID, true
}

func GetProductImages(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products/:id/images"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		productID, ok := findProductOr404(ctx, c, db)
		if !ok {
			return
		}

		findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := db.Collection("product_images").Find(ctx, bson.M{"productId": productID}, findOptions)
		if err != nil {
			respondImageError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		images := make([]models.ProductImage, 0)
		if err := cursor.All(ctx, &images); err != nil {
			respondImageError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": images})
	}
}

// UploadProductImage stores the file first and only then writes the document;
// a failed insert leaves an orphan file on disk, which is preferable to a
// document pointing at nothing.
func UploadProductImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products/:id/images"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		productID, ok := findProductOr404(ctx, c, db)
		if !ok {
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}

		imagePath, err := saveImage(file)
		if err != nil {
			respondMultipartError(c, err)
			return
		}

		isPrimary, err := parseOptionalBool(c.PostForm("isPrimary"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isPrimary value"})
			return
		}

		now := time.Now()
		imageID := primitive.NewObjectID()
		var designated bool

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			var txErr error
			designated, txErr = designation.ProductImages.InsertChild(sessCtx, db, productID, bson.M{
				"_id":       imageID,
				"path":      imagePath,
				"alt":       strings.TrimSpace(c.PostForm("alt")),
				"createdAt": now,
			}, isPrimary)
			return txErr
		})
		if err != nil {
			if cleanupErr := safeDeleteUpload(imagePath); cleanupErr != nil {
				log.Println("[IMAGE] [WARN] orphan upload cleanup failed:", cleanupErr)
			}
			respondImageError(c, route, err)
			return
		}

		image := models.ProductImage{
			ID:        imageID,
			ProductID: productID,
			Path:      imagePath,
			Alt:       strings.TrimSpace(c.PostForm("alt")),
			IsPrimary: designated,
			CreatedAt: now,
		}

		log.Println("[IMAGE] [INFO] product image uploaded:", imageID.Hex())
		c.JSON(http.StatusCreated, gin.H{"image": image})
	}
}

func DeleteProductImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id/images/:imageId"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		productID, ok := findProductOr404(ctx, c, db)
		if !ok {
			return
		}

		imageID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("imageId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}

		var image models.ProductImage
		err = db.Collection("product_images").FindOne(ctx, bson.M{
			"_id":       imageID,
			"productId": productID,
		}).Decode(&image)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		if err != nil {
			respondImageError(c, route, err)
			return
		}

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			return designation.ProductImages.RemoveChild(sessCtx, db, productID, imageID)
		})
		if err != nil {
			respondImageError(c, route, err)
			return
		}

		if err := safeDeleteUpload(image.Path); err != nil {
			log.Println("[IMAGE] [WARN] image file delete failed:", err)
		}

		log.Println("[IMAGE] [INFO] product image deleted:", imageID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
	}
}

func SetPrimaryProductImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id/images/:imageId/primary"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		productID, ok := findProductOr404(ctx, c, db)
		if !ok {
			return
		}

		imageID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("imageId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			return designation.ProductImages.SetDesignated(sessCtx, db, productID, imageID)
		})
		if err != nil {
			respondImageError(c, route, err)
			return
		}

		log.Println("[IMAGE] [INFO] primary image set:", imageID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "primary image updated"})
	}
}

func parseOptionalBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	return parseBoolValue(value)
}
