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

type addressRequest struct {
	Title     string `json:"title" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
	Note      string `json:"note"`
	IsDefault bool   `json:"isDefault"`
}

type favoriteRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// runInTransaction wraps fn in a mongo session so the multi-document flag
// updates stay atomic.
func runInTransaction(ctx context.Context, db *mongo.Database, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func respondAddressError(c *gin.Context, route string, err error) {
	var notFound designation.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
		return
	}

	var lastItem designation.LastItemError
	if errors.As(err, &lastItem) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete the last address"})
		return
	}

	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate entry"})
		return
	}

	log.Printf("[ADDRESS] [ERROR] %s failed: %v", route, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

func loadUserAddresses(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]models.Address, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := db.Collection("addresses").Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	addresses := make([]models.Address, 0)
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("userId")
		if !ok {
			log.Println("[AUTH] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] get me failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		addresses, err := loadUserAddresses(ctx, db, user.ID)
		if err != nil {
			log.Println("[AUTH] [ERROR] get me addresses failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        user.ID.Hex(),
			"email":     user.Email,
			"name":      user.Name,
			"phone":     user.Phone,
			"addresses": addresses,
			"createdAt": user.CreatedAt,
			"updatedAt": user.UpdatedAt,
		})
	}
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		addresses, err := loadUserAddresses(ctx, db, userID)
		if err != nil {
			log.Println("[ADDRESS] [ERROR] list addresses failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": addresses})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[ADDRESS] [ERROR] invalid address body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		now := time.Now()
		addressID := primitive.NewObjectID()
		var isDefault bool

		err := runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			var txErr error
			isDefault, txErr = designation.Addresses.InsertChild(sessCtx, db, userID, bson.M{
				"_id":       addressID,
				"title":     strings.TrimSpace(req.Title),
				"detail":    strings.TrimSpace(req.Detail),
				"note":      strings.TrimSpace(req.Note),
				"createdAt": now,
				"updatedAt": now,
			}, req.IsDefault)
			return txErr
		})
		if err != nil {
			respondAddressError(c, route, err)
			return
		}

		address := models.Address{
			ID:        addressID,
			UserID:    userID,
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			Note:      strings.TrimSpace(req.Note),
			IsDefault: isDefault,
			CreatedAt: now,
			UpdatedAt: now,
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:id"

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[ADDRESS] [ERROR] invalid address body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			res, err := db.Collection("addresses").UpdateOne(sessCtx, bson.M{
				"_id":    addressID,
				"userId": userID,
			}, bson.M{
				"$set": bson.M{
					"title":     strings.TrimSpace(req.Title),
					"detail":    strings.TrimSpace(req.Detail),
					"note":      strings.TrimSpace(req.Note),
					"updatedAt": time.Now(),
				},
			})
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				return designation.NotFoundError{Collection: "addresses", ChildID: addressID}
			}

			if req.IsDefault {
				return designation.Addresses.SetDesignated(sessCtx, db, userID, addressID)
			}
			return nil
		})
		if err != nil {
			respondAddressError(c, route, err)
			return
		}

		var address models.Address
		if err := db.Collection("addresses").FindOne(ctx, bson.M{"_id": addressID}).Decode(&address); err != nil {
			log.Println("[ADDRESS] [ERROR] reload address failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"address": address})
	}
}

func SetDefaultAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:id/default"

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			return designation.Addresses.SetDesignated(sessCtx, db, userID, addressID)
		})
		if err != nil {
			respondAddressError(c, route, err)
			return
		}

		log.Println("[ADDRESS] [INFO] default address set:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "default address updated"})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:id"

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		addressID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		err = runInTransaction(ctx, db, func(sessCtx mongo.SessionContext) error {
			return designation.Addresses.RemoveChild(sessCtx, db, userID, addressID)
		})
		if err != nil {
			respondAddressError(c, route, err)
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

func GetUserFavorites(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[FAVORITE] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[FAVORITE] [ERROR] get favorites failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		if len(user.Favorites) == 0 {
			c.JSON(http.StatusOK, gin.H{"data": []models.Product{}})
			return
		}

		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"_id":       bson.M{"$in": user.Favorites},
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			log.Println("[FAVORITE] [ERROR] list favorites products failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0, len(user.Favorites))
		if err := cursor.All(ctx, &products); err != nil {
			log.Println("[FAVORITE] [ERROR] decode favorites products failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		productByID := make(map[primitive.ObjectID]models.Product, len(products))
		for _, product := range products {
			productByID[product.ID] = product
		}

		ordered := make([]models.Product, 0, len(products))
		for _, favoriteID := range user.Favorites {
			if product, exists := productByID[favoriteID]; exists {
				ordered = append(ordered, product)
			}
		}

		c.JSON(http.StatusOK, gin.H{"data": ordered})
	}
}

func AddUserFavorite(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[FAVORITE] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		var req favoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[FAVORITE] [ERROR] invalid favorite body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
				return
			}
			log.Println("[FAVORITE] [ERROR] product lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$addToSet": bson.M{"favorites": productID},
			"$set":      bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[FAVORITE] [ERROR] add favorite failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "favorite updated"})
	}
}

func DeleteUserFavorite(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[FAVORITE] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
				return
			}
			log.Println("[FAVORITE] [ERROR] product lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"favorites": productID},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[FAVORITE] [ERROR] remove favorite failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "favorite updated"})
	}
}
