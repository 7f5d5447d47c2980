package orders

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// NotFoundError reports a missing order.
type NotFoundError struct {
	OrderID primitive.ObjectID
}

func (e NotFoundError) Error() string {
	return "order not found: " + e.OrderID.Hex()
}

// InvalidTransitionError reports a status change outside the transition
// table.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e InvalidTransitionError) Error() string {
	return "cannot transition order from " + string(e.From) + " to " + string(e.To)
}

// ForbiddenError reports an actor without the rights for the operation.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	return e.Reason
}

// ConflictError reports a concurrent modification detected by a conditional
// update matching nothing.
type ConflictError struct {
	Detail string
}

func (e ConflictError) Error() string {
	return e.Detail
}

// ValidationError reports bad input rejected before any write.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}
