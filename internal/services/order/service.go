// Package order implements order creation, listing and the payment and
// status lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/metrics"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/validation"
)

const reasonRestaurantMissing = "restaurant does not exist"

// Store is the record store surface the order service needs
type Store interface {
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	MenuItemsForRestaurant(ctx context.Context, restaurantID string, ids []string) ([]models.MenuItem, error)
	CreateOrder(ctx context.Context, order *models.NewOrder, notes string) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByRegion(ctx context.Context, region models.Region) ([]models.Order, error)
	ApplyStatusChange(ctx context.Context, change models.StatusChange) (*models.Order, error)
	OrderHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

// EventPublisher delivers order events to subscribers
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, evt *models.OrderEvent) error
}

// Service applies order rules on top of the store
type Service struct {
	store  Store
	events EventPublisher
	authz  *policy.Authorizer
	logger *logger.Logger
}

// NewService creates a new order service
func NewService(store Store, events EventPublisher, authz *policy.Authorizer, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		authz:  authz,
		logger: log,
	}
}

// Create places an order at a restaurant. Item ids that are unknown or
// belong to another restaurant are dropped; each remaining occurrence
// becomes one line at quantity 1. The order is PAID when a payment type is
// supplied and PENDING otherwise.
func (s *Service) Create(ctx context.Context, caller *models.User, req *models.CreateOrderRequest) (*models.Order, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	restaurant, err := s.store.GetRestaurant(ctx, req.RestaurantID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, policy.Forbidden(policy.ActionOrderCreate, reasonRestaurantMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if err := s.authz.Authorize(policy.ActionOrderCreate, caller, restaurant.Region); err != nil {
		return nil, err
	}

	found, err := s.store.MenuItemsForRestaurant(ctx, restaurant.ID, req.ItemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	lines := orderLines(req.ItemIDs, found)

	status := models.StatusPending
	if req.PaymentType != nil && *req.PaymentType != "" {
		status = models.StatusPaid
	}

	order, err := s.store.CreateOrder(ctx, &models.NewOrder{
		UserID:         caller.ID,
		RestaurantID:   restaurant.ID,
		Items:          lines,
		TotalAmount:    models.CalculateTotalAmount(lines),
		Status:         status,
		PaymentType:    req.PaymentType,
		PaymentDetails: req.PaymentDetails,
	}, "order placed")
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order_created", "Order created", logger.RequestID(ctx), map[string]interface{}{
		"order_id":      order.ID,
		"restaurant_id": order.RestaurantID,
		"user_id":       caller.ID,
		"status":        order.Status,
		"total_amount":  order.TotalAmount.String(),
		"lines":         len(lines),
		"dropped_ids":   len(req.ItemIDs) - len(lines),
	})

	s.publish(ctx, models.NewOrderEvent(models.EventOrderCreated, order, "", caller.ID))
	return order, nil
}

// orderLines keeps the requested order of ids, repeats included, and drops
// ids that did not resolve to a menu item of the restaurant
func orderLines(ids []string, found []models.MenuItem) []models.MenuItem {
	byID := make(map[string]models.MenuItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	lines := make([]models.MenuItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			lines = append(lines, item)
		}
	}
	return lines
}

// List returns the orders placed at restaurants in the caller's region.
// Admins get no cross-region view here.
func (s *Service) List(ctx context.Context, caller *models.User) ([]models.Order, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	orders, err := s.store.ListOrdersByRegion(ctx, caller.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdatePayment records payment details and marks the order PAID. Only
// admins may do this; a CANCELLED order becomes PAID as well.
func (s *Service) UpdatePayment(ctx context.Context, caller *models.User, orderID string, req *models.UpdatePaymentRequest) (*models.Order, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	current, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(policy.ActionOrderUpdatePayment, caller, regionOf(current)); err != nil {
		return nil, err
	}

	paymentType := req.PaymentType
	updated, err := s.store.ApplyStatusChange(ctx, models.StatusChange{
		OrderID:        orderID,
		Status:         models.StatusPaid,
		ChangedBy:      caller.ID,
		Notes:          "payment updated: " + paymentType,
		SetPayment:     true,
		PaymentType:    &paymentType,
		PaymentDetails: req.PaymentDetails,
	})
	if err != nil {
		return nil, s.mutationError(err, orderID, "update payment")
	}

	s.checkTransition(ctx, current, updated, caller)
	s.publish(ctx, models.NewOrderEvent(models.EventPaymentUpdated, updated, current.Status, caller.ID))
	return updated, nil
}

// UpdateStatus sets the order status. Non-admins need the order to be in
// their region; moves to PAID or CANCELLED are settlements which members
// may not perform on top of that. Transitions are not
// restricted to the lifecycle, but irregular ones are logged and counted.
func (s *Service) UpdateStatus(ctx context.Context, caller *models.User, orderID string, next models.OrderStatus) (*models.Order, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}
	if !next.Valid() {
		return nil, validation.ValidationError{Field: "status", Message: "status must be one of PENDING, PAID, CANCELLED"}
	}

	current, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	region := regionOf(current)
	if err := s.authz.Authorize(policy.ActionOrderSetStatus, caller, region); err != nil {
		return nil, err
	}
	if action := policy.StatusAction(next); action != policy.ActionOrderSetStatus {
		if err := s.authz.Authorize(action, caller, region); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.ApplyStatusChange(ctx, models.StatusChange{
		OrderID:   orderID,
		Status:    next,
		ChangedBy: caller.ID,
		Notes:     fmt.Sprintf("status set to %s by %s", next, caller.Role),
	})
	if err != nil {
		return nil, s.mutationError(err, orderID, "update status")
	}

	s.checkTransition(ctx, current, updated, caller)
	s.publish(ctx, models.NewOrderEvent(models.EventStatusChanged, updated, current.Status, caller.ID))
	return updated, nil
}

// History returns the status log of an order in the caller's region
func (s *Service) History(ctx context.Context, caller *models.User, orderID string) ([]models.OrderStatusHistory, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	current, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(policy.ActionOrderView, caller, regionOf(current)); err != nil {
		return nil, err
	}

	history, err := s.store.OrderHistory(ctx, orderID)
	if err != nil {
		return nil, s.mutationError(err, orderID, "get order history")
	}
	return history, nil
}

func (s *Service) getOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, policy.NotFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *Service) mutationError(err error, orderID, op string) error {
	if errors.Is(err, models.ErrNotFound) {
		return policy.NotFound("order", orderID)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func regionOf(order *models.Order) models.Region {
	if order.Restaurant == nil {
		return ""
	}
	return order.Restaurant.Region
}

func (s *Service) checkTransition(ctx context.Context, before, after *models.Order, caller *models.User) {
	if before.Status.CanTransitionTo(after.Status) {
		return
	}

	metrics.RecordIrregularTransition(before.Status, after.Status)
	s.logger.Warn("order_status_irregular_transition", "Order moved outside the documented lifecycle", logger.RequestID(ctx), map[string]interface{}{
		"order_id":   after.ID,
		"old_status": before.Status,
		"new_status": after.Status,
		"user_id":    caller.ID,
		"role":       caller.Role,
	})
}

// publish hands the event to the bus; a failure never fails the mutation
// that already committed
func (s *Service) publish(ctx context.Context, evt *models.OrderEvent) {
	if s.events == nil {
		return
	}

	err := s.events.PublishOrderEvent(ctx, evt)
	metrics.RecordOrderEvent(evt.Type, err == nil)
	if err != nil {
		s.logger.Error("order_event_publish_failed", "Failed to publish order event", logger.RequestID(ctx), err, map[string]interface{}{
			"order_id":    evt.OrderID,
			"routing_key": evt.RoutingKey(),
		})
	}
}
