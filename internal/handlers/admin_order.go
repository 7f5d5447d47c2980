package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
	"storefront/internal/orders"
)

/* =======================
   REQUEST MODELLERİ
======================= */

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type orderAddressUpdateRequest struct {
	Title  string `json:"title" binding:"required"`
	Detail string `json:"detail" binding:"required"`
	Note   string `json:"note"`
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
			return
		}

		filter := bson.M{}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			parsed, ok := models.ParseOrderStatus(status)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
				return
			}
			filter["status"] = parsed
		}

		if userIDStr := strings.TrimSpace(c.Query("userId")); userIDStr != "" {
			userID, err := primitive.ObjectIDFromHex(userIDStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId filter"})
				return
			}
			filter["userId"] = userID
		}

		findOptions := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
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

		c.JSON(http.StatusOK, gin.H{
			"data": orderList,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

/* =======================
   STATUS TRANSITION
======================= */

// UpdateOrderStatus moves an order along the status table. A "cancelled"
// target is routed through the cancel path so the reserved stock comes back.
// No other order field is editable here: items and totals are frozen at
// checkout.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	engine := orders.NewEngine(db)

	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		target, ok := models.ParseOrderStatus(strings.TrimSpace(req.Status))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order *models.Order
		if target == models.OrderStatusCancelled {
			order, err = engine.Cancel(ctx, orderID, orders.Actor{Role: "admin"})
		} else {
			order, err = engine.Transition(ctx, orderID, target)
		}
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order status updated:", order.ID.Hex(), "->", order.Status)
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	engine := orders.NewEngine(db)

	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/cancel"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := engine.Cancel(ctx, orderID, orders.Actor{Role: "admin"})
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order cancelled by admin:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

/* =======================
   SHIPPING ADDRESS (PENDING ONLY)
======================= */

func UpdateOrderShippingAddress(db *mongo.Database) gin.HandlerFunc {
	engine := orders.NewEngine(db)

	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/shipping-address"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req orderAddressUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := engine.UpdateShippingAddress(ctx, orderID, models.OrderAddress{
			Title:  strings.TrimSpace(req.Title),
			Detail: strings.TrimSpace(req.Detail),
			Note:   strings.TrimSpace(req.Note),
		})
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order shipping address updated:", order.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
