package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// ListCartItems returns cart rows whose owning user is in ownerRegion,
// newest first. An empty region returns the whole cart.
func (s *Store) ListCartItems(ctx context.Context, ownerRegion models.Region) ([]models.CartItem, error) {
	rows, err := s.db.Query(ctx, database.ListCartItemsSQL, string(ownerRegion))
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var (
			c models.CartItem
			u models.User
			m models.MenuItem
			r models.Restaurant
		)
		err := rows.Scan(
			&c.ID, &c.UserID, &c.MenuItemID, &c.RestaurantID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt,
			&u.ID, &u.Name, &u.Email, &u.Role, &u.Region, &u.CreatedAt,
			&m.ID, &m.RestaurantID, &m.Name, &m.Price,
			&r.ID, &r.Name, &r.Region,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.User, c.MenuItem, c.Restaurant = &u, &m, &r
		items = append(items, c)
	}
	return items, rows.Err()
}

// AddCartItem atomically inserts the (menu item, restaurant) row or adds
// quantity to the existing one and reassigns it to userID
func (s *Store) AddCartItem(ctx context.Context, userID, menuItemID, restaurantID string, quantity int) (*models.CartItem, error) {
	var c models.CartItem
	err := s.db.QueryRow(ctx, database.UpsertCartItemSQL,
		uuid.NewString(), userID, menuItemID, restaurantID, quantity,
	).Scan(&c.ID, &c.UserID, &c.MenuItemID, &c.RestaurantID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert cart item: %w", err)
	}
	return &c, nil
}

// GetCartItem returns a cart row with its restaurant or models.ErrNotFound
func (s *Store) GetCartItem(ctx context.Context, id string) (*models.CartItem, error) {
	var (
		c models.CartItem
		r models.Restaurant
	)
	err := s.db.QueryRow(ctx, database.GetCartItemSQL, id).Scan(
		&c.ID, &c.UserID, &c.MenuItemID, &c.RestaurantID, &c.Quantity, &c.CreatedAt, &c.UpdatedAt,
		&r.ID, &r.Name, &r.Region,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart item %s: %w", id, notFound(err))
	}
	c.Restaurant = &r
	return &c, nil
}

// DeleteCartItem removes one cart row or returns models.ErrNotFound
func (s *Store) DeleteCartItem(ctx context.Context, id string) error {
	tag, err := s.db.Pool.Exec(ctx, database.DeleteCartItemSQL, id)
	if err != nil {
		return fmt.Errorf("delete cart item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete cart item %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ClearCart deletes cart rows whose restaurant is in region, optionally
// only for one restaurant, and returns how many were removed
func (s *Store) ClearCart(ctx context.Context, region models.Region, restaurantID string) (int64, error) {
	tag, err := s.db.Pool.Exec(ctx, database.ClearCartSQL, string(region), restaurantID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}
	return tag.RowsAffected(), nil
}
