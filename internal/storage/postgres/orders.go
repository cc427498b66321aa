package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// CreateOrder persists the order, its lines and the initial status log
// entry in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.NewOrder, notes string) (*models.Order, error) {
	orderID := uuid.NewString()

	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, database.InsertOrderSQL,
			orderID, order.UserID, order.RestaurantID, order.TotalAmount,
			order.Status, order.PaymentType, order.PaymentDetails)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		batch := &pgx.Batch{}
		for i, item := range order.Items {
			batch.Queue(database.InsertOrderItemSQL, uuid.NewString(), orderID, item.ID, 1, i)
		}
		batch.Queue(database.InsertOrderStatusLogSQL, orderID, order.Status, order.UserID, nullable(notes))
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, orderID)
}

// GetOrder returns the order with items, restaurant and user, or
// models.ErrNotFound
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	rows, err := s.db.Query(ctx, database.GetOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	orders, err := s.collectOrders(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("get order %s: %w", id, models.ErrNotFound)
	}
	return &orders[0], nil
}

// ListOrdersByRegion returns orders placed at restaurants in region,
// newest first
func (s *Store) ListOrdersByRegion(ctx context.Context, region models.Region) ([]models.Order, error) {
	rows, err := s.db.Query(ctx, database.ListOrdersByRegionSQL, string(region))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := s.collectOrders(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Store) collectOrders(ctx context.Context, rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var (
			o models.Order
			r models.Restaurant
			u models.User
		)
		err := rows.Scan(
			&o.ID, &o.UserID, &o.RestaurantID, &o.TotalAmount, &o.Status, &o.PaymentType, &o.PaymentDetails,
			&o.CreatedAt, &o.UpdatedAt,
			&r.ID, &r.Name, &r.Region,
			&u.ID, &u.Name, &u.Email, &u.Role, &u.Region, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Restaurant, o.User = &r, &u
		o.Items = []models.OrderItem{}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}
	return orders, s.attachOrderItems(ctx, orders)
}

func (s *Store) attachOrderItems(ctx context.Context, orders []models.Order) error {
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := s.db.Query(ctx, database.ListOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item models.OrderItem
			m    models.MenuItem
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity,
			&m.ID, &m.RestaurantID, &m.Name, &m.Price)
		if err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.MenuItem = &m
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

// ApplyStatusChange updates status (and payment fields when requested)
// and appends a status log entry in one transaction
func (s *Store) ApplyStatusChange(ctx context.Context, change models.StatusChange) (*models.Order, error) {
	err := s.db.InTx(ctx, func(tx pgx.Tx) error {
		var (
			sql  = database.UpdateOrderStatusSQL
			args = []interface{}{change.OrderID, change.Status}
		)
		if change.SetPayment {
			sql = database.UpdateOrderPaymentSQL
			args = append(args, change.PaymentType, change.PaymentDetails)
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update order %s: %w", change.OrderID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("update order %s: %w", change.OrderID, models.ErrNotFound)
		}

		if _, err := tx.Exec(ctx, database.InsertOrderStatusLogSQL,
			change.OrderID, change.Status, change.ChangedBy, nullable(change.Notes)); err != nil {
			return fmt.Errorf("insert status log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, change.OrderID)
}

// OrderHistory returns the status log of an order, oldest first, or
// models.ErrNotFound when the order does not exist
func (s *Store) OrderHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, database.OrderExistsSQL, orderID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check order %s: %w", orderID, err)
	}
	if !exists {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrNotFound)
	}

	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order history: %w", err)
	}
	defer rows.Close()

	history := []models.OrderStatusHistory{}
	for rows.Next() {
		var entry models.OrderStatusHistory
		if err := rows.Scan(&entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("scan order history: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}
