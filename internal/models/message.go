package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType identifies what happened to an order
type OrderEventType string

const (
	EventOrderCreated   OrderEventType = "order.created"
	EventPaymentUpdated OrderEventType = "order.payment_updated"
	EventStatusChanged  OrderEventType = "order.status_changed"
)

// OrderEvent is published to the order events exchange after every
// committed order mutation
type OrderEvent struct {
	Type         OrderEventType  `json:"type"`
	OrderID      string          `json:"order_id"`
	RestaurantID string          `json:"restaurant_id"`
	Region       Region          `json:"region,omitempty"`
	OldStatus    OrderStatus     `json:"old_status,omitempty"`
	NewStatus    OrderStatus     `json:"new_status"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ChangedBy    string          `json:"changed_by"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewOrderEvent creates an OrderEvent for the given order and actor
func NewOrderEvent(eventType OrderEventType, order *Order, oldStatus OrderStatus, changedBy string) *OrderEvent {
	evt := &OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		OldStatus:    oldStatus,
		NewStatus:    order.Status,
		TotalAmount:  order.TotalAmount,
		ChangedBy:    changedBy,
		Timestamp:    time.Now().UTC(),
	}
	if order.Restaurant != nil {
		evt.Region = order.Restaurant.Region
	}
	return evt
}

// RoutingKey returns the topic routing key for the event
func (e *OrderEvent) RoutingKey() string {
	return string(e.Type)
}
