package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/inventory"
	"storefront/internal/models"
	"storefront/internal/orders"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderAddressRequest struct {
	Title  string `json:"title" binding:"required"`
	Detail string `json:"detail" binding:"required"`
	Note   string `json:"note"`
}

type createOrderPaymentMethodRequest struct {
	ID    string `json:"id" binding:"required"`
	Label string `json:"label"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest        `json:"items" binding:"required"`
	ShippingAddress createOrderAddressRequest       `json:"shippingAddress" binding:"required"`
	PaymentMethod   createOrderPaymentMethodRequest `json:"paymentMethod" binding:"required"`
	PaymentID       string                          `json:"paymentId"`
	HasInsurance    bool                            `json:"hasInsurance"`
}

func buildCreateInput(req createOrderRequest, userID *primitive.ObjectID) (orders.CreateInput, error) {
	items := make([]orders.CreateItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return orders.CreateInput{}, errors.New("invalid productId")
		}
		items = append(items, orders.CreateItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	return orders.CreateInput{
		UserID: userID,
		Items:  items,
		ShippingAddress: models.OrderAddress{
			Title:  strings.TrimSpace(req.ShippingAddress.Title),
			Detail: strings.TrimSpace(req.ShippingAddress.Detail),
			Note:   strings.TrimSpace(req.ShippingAddress.Note),
		},
		PaymentMethod: req.PaymentMethod.ID, // 🔥 sadece "card" / "cash" kaydedilir
		PaymentID:     req.PaymentID,
		HasInsurance:  req.HasInsurance,
	}, nil
}

/* =========================
   ERROR MAPPING
========================= */

// respondOrderError translates the typed engine/ledger errors into precise
// responses; anything unrecognized is a persistence failure and stays
// generic.
func respondOrderError(c *gin.Context, route string, err error) {
	var stockErr inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Stok yetersiz",
			"productId": stockErr.ProductID.Hex(),
			"product":   stockErr.Name,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var productErr inventory.NotFoundError
	if errors.As(err, &productErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Ürün bulunamadı",
			"productId": productErr.ProductID.Hex(),
		})
		return
	}

	var notFoundErr orders.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	var transitionErr orders.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "invalid status transition",
			"from":  string(transitionErr.From),
			"to":    string(transitionErr.To),
		})
		return
	}

	var forbiddenErr orders.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Reason})
		return
	}

	var conflictErr orders.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Detail})
		return
	}

	var validationErr orders.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
		return
	}

	if mongo.IsDuplicateKeyError(err) {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate entry"})
		return
	}

	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	engine := orders.NewEngine(db)

	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		input, err := buildCreateInput(req, userID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := engine.Create(ctx, input)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		if userID != nil {
			log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.ID.Hex(),
			"number":  order.Number,
			"total":   order.Total,
			"status":  order.Status,
			"message": "order created",
		})
	}
}

/* =========================
   USER ORDERS
========================= */

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/orders"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ORDER] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orderList := make([]models.Order, 0)
		if err := cursor.All(ctx, &orderList); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orderList})
	}
}

func CancelUserOrder(db *mongo.Database) gin.HandlerFunc {
	engine := orders.NewEngine(db)

	return func(c *gin.Context) {
		const route = "POST /user/orders/:id/cancel"
		defer handlePanic(c, route)

		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ORDER] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		role := c.GetString("role")
		if role == "" {
			role = "user"
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := engine.Cancel(ctx, orderID, orders.Actor{UserID: &userID, Role: role})
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order cancelled:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

/* =========================
   TOKEN HELPER
========================= */

func userIDFromHeader(header, secret string) (*primitive.ObjectID, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return nil, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return nil, errors.New("invalid userId")
	}

	return &userID, nil
}
