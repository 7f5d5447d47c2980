package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the full transition table. Delivered and cancelled are
// terminal: they have no entry.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// ParseOrderStatus maps a request value onto a known status.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	switch OrderStatus(value) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(value), true
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// OrderItem is a single product entry within an order. Name and UnitPrice are
// snapshots taken at checkout; later catalog edits never touch them.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice Money              `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// OrderAddress is the shipping destination captured at checkout as free text,
// not a live reference, so later address edits don't rewrite order history.
type OrderAddress struct {
	Title  string `bson:"title" json:"title"`
	Detail string `bson:"detail" json:"detail"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order defines the persisted order document. Items and Total are frozen at
// creation; only Status (via the transition table) and, while still pending,
// the shipping address may change afterwards. Orders are never deleted.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number          string              `bson:"number" json:"number"`
	UserID          *primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem         `bson:"items" json:"items"`
	Total           Money               `bson:"total" json:"total"`
	ShippingAddress OrderAddress        `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID       string              `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	HasInsurance    bool                `bson:"hasInsurance" json:"hasInsurance"`
	Status          OrderStatus         `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}
