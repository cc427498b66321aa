package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CreateOrder stores the order, its lines and the initial status log entry
func (s *Store) CreateOrder(_ context.Context, order *models.NewOrder, notes string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[order.UserID]; !ok {
		return nil, fmt.Errorf("insert order: user %s does not exist", order.UserID)
	}
	if _, ok := s.restaurants[order.RestaurantID]; !ok {
		return nil, fmt.Errorf("insert order: restaurant %s does not exist", order.RestaurantID)
	}

	now := s.now()
	orderID := uuid.NewString()
	items := make([]models.OrderItem, 0, len(order.Items))
	for _, m := range order.Items {
		if _, ok := s.menuItems[m.ID]; !ok {
			return nil, fmt.Errorf("insert order items: menu item %s does not exist", m.ID)
		}
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: m.ID,
			Quantity:   1,
		})
	}

	s.orders[orderID] = &orderRecord{
		order: models.Order{
			ID:             orderID,
			UserID:         order.UserID,
			RestaurantID:   order.RestaurantID,
			TotalAmount:    order.TotalAmount,
			Status:         order.Status,
			PaymentType:    copyString(order.PaymentType),
			PaymentDetails: copyString(order.PaymentDetails),
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		items: items,
		seq:   s.next(),
	}
	s.statusLog[orderID] = append(s.statusLog[orderID], models.OrderStatusHistory{
		Status:    order.Status,
		ChangedBy: order.UserID,
		ChangedAt: now,
		Notes:     nullable(notes),
	})

	return s.hydrate(s.orders[orderID]), nil
}

func (s *Store) hydrate(rec *orderRecord) *models.Order {
	o := rec.order
	o.PaymentType = copyString(rec.order.PaymentType)
	o.PaymentDetails = copyString(rec.order.PaymentDetails)
	o.Items = make([]models.OrderItem, 0, len(rec.items))
	for _, item := range rec.items {
		if m, ok := s.menuItems[item.MenuItemID]; ok {
			cp := *m
			item.MenuItem = &cp
		}
		o.Items = append(o.Items, item)
	}
	if r, ok := s.restaurants[o.RestaurantID]; ok {
		cp := *r
		o.Restaurant = &cp
	}
	if u, ok := s.users[o.UserID]; ok {
		cp := *u
		o.User = &cp
	}
	return &o
}

// GetOrder returns the order with items, restaurant and user, or
// models.ErrNotFound
func (s *Store) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order %s: %w", id, models.ErrNotFound)
	}
	return s.hydrate(rec), nil
}

// ListOrdersByRegion returns orders placed at restaurants in region,
// newest first
func (s *Store) ListOrdersByRegion(_ context.Context, region models.Region) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []*orderRecord{}
	for _, rec := range s.orders {
		r, ok := s.restaurants[rec.order.RestaurantID]
		if !ok || r.Region != region {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].seq > records[j].seq
	})

	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, *s.hydrate(rec))
	}
	return orders, nil
}

// ApplyStatusChange updates status (and payment fields when requested)
// and appends a status log entry
func (s *Store) ApplyStatusChange(_ context.Context, change models.StatusChange) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[change.OrderID]
	if !ok {
		return nil, fmt.Errorf("update order %s: %w", change.OrderID, models.ErrNotFound)
	}

	now := s.now()
	rec.order.Status = change.Status
	if change.SetPayment {
		rec.order.PaymentType = copyString(change.PaymentType)
		rec.order.PaymentDetails = copyString(change.PaymentDetails)
	}
	rec.order.UpdatedAt = now

	s.statusLog[change.OrderID] = append(s.statusLog[change.OrderID], models.OrderStatusHistory{
		Status:    change.Status,
		ChangedBy: change.ChangedBy,
		ChangedAt: now,
		Notes:     nullable(change.Notes),
	})

	return s.hydrate(rec), nil
}

// OrderHistory returns the status log of an order, oldest first, or
// models.ErrNotFound when the order does not exist
func (s *Store) OrderHistory(_ context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}
	log := s.statusLog[orderID]
	history := make([]models.OrderStatusHistory, len(log))
	for i, entry := range log {
		entry.Notes = copyString(entry.Notes)
		history[i] = entry
	}
	return history, nil
}
