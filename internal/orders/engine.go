// Package orders is the order lifecycle engine: checkout, the status state
// machine and cancellation with stock restoration. Every mutation runs as one
// mongo transaction so partial orders or partial stock changes are never
// committed.
package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/inventory"
	"storefront/internal/models"
)

type Engine struct {
	db *mongo.Database
}

func NewEngine(db *mongo.Database) *Engine {
	return &Engine{db: db}
}

// CreateItem is one requested order line.
type CreateItem struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// CreateInput carries everything checkout needs. UserID is nil for guest
// orders.
type CreateInput struct {
	UserID          *primitive.ObjectID
	Items           []CreateItem
	ShippingAddress models.OrderAddress
	PaymentMethod   string
	PaymentID       string
	HasInsurance    bool
}

// Actor identifies who is asking for a mutation.
type Actor struct {
	UserID *primitive.ObjectID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

func (a Actor) owns(order *models.Order) bool {
	return a.UserID != nil && order.UserID != nil && *a.UserID == *order.UserID
}

func validateCreateInput(input CreateInput) error {
	if len(input.Items) == 0 {
		return ValidationError{Message: "at least one item is required"}
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return ValidationError{Message: "quantity must be greater than zero"}
		}
	}
	if input.PaymentMethod != "cash" && input.PaymentMethod != "card" {
		return ValidationError{Message: "invalid payment method"}
	}
	if strings.TrimSpace(input.ShippingAddress.Title) == "" || strings.TrimSpace(input.ShippingAddress.Detail) == "" {
		return ValidationError{Message: "shipping address title and detail are required"}
	}
	return nil
}

// priceItems builds the frozen order lines and the total from the product
// state read inside the transaction. Unit prices are copies of the effective
// (sale-aware) price at this moment; the stored order never follows later
// catalog edits.
func priceItems(requested []CreateItem, productByID map[primitive.ObjectID]models.Product) ([]models.OrderItem, models.Money, error) {
	items := make([]models.OrderItem, 0, len(requested))
	var total models.Money

	for _, line := range requested {
		product, ok := productByID[line.ProductID]
		if !ok {
			return nil, models.Money{}, inventory.NotFoundError{ProductID: line.ProductID}
		}
		if product.Stock < line.Quantity {
			return nil, models.Money{}, inventory.InsufficientStockError{
				ProductID: line.ProductID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: line.Quantity,
			}
		}

		unitPrice := product.EffectivePrice()
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      product.Name,
			UnitPrice: unitPrice,
			Quantity:  line.Quantity,
		})
		total = total.Add(unitPrice.MulInt(line.Quantity))
	}

	return items, total, nil
}

// Create runs checkout: look up every product, snapshot names and prices,
// then insert the order and reserve stock for each line in one transaction.
// Any failure aborts the whole order.
func (e *Engine) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	session, err := e.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	var created *models.Order
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		productByID := make(map[primitive.ObjectID]models.Product, len(input.Items))
		for _, line := range input.Items {
			if _, ok := productByID[line.ProductID]; ok {
				continue
			}
			var product models.Product
			err := e.db.Collection("products").FindOne(sessCtx, bson.M{
				"_id":       line.ProductID,
				"isDeleted": bson.M{"$ne": true},
			}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				return nil, inventory.NotFoundError{ProductID: line.ProductID}
			}
			if err != nil {
				return nil, err
			}
			productByID[line.ProductID] = product
		}

		items, total, err := priceItems(input.Items, productByID)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			if err := inventory.Reserve(sessCtx, e.db, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
		}

		now := time.Now()
		order := &models.Order{
			Number:          uuid.NewString(),
			UserID:          input.UserID,
			Items:           items,
			Total:           total,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			PaymentID:       strings.TrimSpace(input.PaymentID),
			HasInsurance:    input.HasInsurance,
			Status:          models.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		res, err := e.db.Collection("orders").InsertOne(sessCtx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		created = order
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID loads one order.
func (e *Engine) GetByID(ctx context.Context, orderID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := e.db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, NotFoundError{OrderID: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Transition moves an order to target along the transition table.
// Cancellation is not reachable here: it restores stock, so it has its own
// path (Cancel).
func (e *Engine) Transition(ctx context.Context, orderID primitive.ObjectID, target models.OrderStatus) (*models.Order, error) {
	if target == models.OrderStatusCancelled {
		return nil, ValidationError{Message: "use the cancel operation to cancel an order"}
	}

	order, err := e.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, InvalidTransitionError{From: order.Status, To: target}
	}

	now := time.Now()
	res, err := e.db.Collection("orders").UpdateOne(ctx, bson.M{
		"_id":    orderID,
		"status": order.Status,
	}, bson.M{
		"$set": bson.M{"status": target, "updatedAt": now},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		// Someone moved the order between our read and write.
		return nil, ConflictError{Detail: "order status changed concurrently"}
	}

	order.Status = target
	order.UpdatedAt = now
	return order, nil
}

// Cancel flips an order to cancelled and gives every reserved unit back to
// stock, all in one transaction: a failed restore aborts the cancellation.
// Owners may cancel their own orders, admins any order; guest orders have no
// owner and are admin-only.
func (e *Engine) Cancel(ctx context.Context, orderID primitive.ObjectID, actor Actor) (*models.Order, error) {
	session, err := e.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	var cancelled *models.Order
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var order models.Order
		err := e.db.Collection("orders").FindOne(sessCtx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			return nil, NotFoundError{OrderID: orderID}
		}
		if err != nil {
			return nil, err
		}

		if !actor.IsAdmin() && !actor.owns(&order) {
			return nil, ForbiddenError{Reason: "not allowed to cancel this order"}
		}
		if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
			return nil, InvalidTransitionError{From: order.Status, To: models.OrderStatusCancelled}
		}

		for _, item := range order.Items {
			if err := inventory.Restore(sessCtx, e.db, item.ProductID, item.Quantity); err != nil {
				return nil, err
			}
		}

		now := time.Now()
		res, err := e.db.Collection("orders").UpdateOne(sessCtx, bson.M{
			"_id":    orderID,
			"status": order.Status,
		}, bson.M{
			"$set": bson.M{"status": models.OrderStatusCancelled, "updatedAt": now},
		})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ConflictError{Detail: "order status changed concurrently"}
		}

		order.Status = models.OrderStatusCancelled
		order.UpdatedAt = now
		cancelled = &order
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// UpdateShippingAddress replaces the shipping snapshot of an order that has
// not started processing yet. Everything else about a created order stays
// immutable.
func (e *Engine) UpdateShippingAddress(ctx context.Context, orderID primitive.ObjectID, address models.OrderAddress) (*models.Order, error) {
	if strings.TrimSpace(address.Title) == "" || strings.TrimSpace(address.Detail) == "" {
		return nil, ValidationError{Message: "shipping address title and detail are required"}
	}

	order, err := e.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, ForbiddenError{Reason: "shipping address can only change while the order is pending"}
	}

	now := time.Now()
	res, err := e.db.Collection("orders").UpdateOne(ctx, bson.M{
		"_id":    orderID,
		"status": models.OrderStatusPending,
	}, bson.M{
		"$set": bson.M{"shippingAddress": address, "updatedAt": now},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ConflictError{Detail: "order status changed concurrently"}
	}

	order.ShippingAddress = address
	order.UpdatedAt = now
	return order, nil
}
