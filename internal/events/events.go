package events

import (
	"context"
	"time"

	"flora-kart/internal/model"

	"github.com/google/uuid"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderCreated        Type = "order.created"
	OrderStatusChanged  Type = "order.status_changed"
	OrderPaymentUpdated Type = "order.payment_updated"
	OrderDeleted        Type = "order.deleted"
)

// Version is the envelope schema version sent in the x-event-version header.
const Version = "1"

// Event is the envelope written to the order topic.
type Event struct {
	ID         uuid.UUID           `json:"id"`
	Type       Type                `json:"type"`
	OccurredAt time.Time           `json:"occurredAt"`
	OrderID    uuid.UUID           `json:"orderId"`
	OrderCode  string              `json:"orderCode"`
	Status     model.OrderStatus   `json:"status"`
	Payment    model.PaymentStatus `json:"paymentStatus"`
	Total      string              `json:"total"`
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(t Type, order *model.Order) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		OrderID:    order.ID,
		OrderCode:  order.OrderCode,
		Status:     order.Status,
		Payment:    order.PaymentStatus,
		Total:      order.Total.StringFixed(2),
	}
}

// Publisher emits order events after the owning transaction has committed.
// Implementations log delivery failures instead of returning them.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) {}
func (noopPublisher) Close() error                   { return nil }
