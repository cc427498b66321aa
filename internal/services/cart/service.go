// Package cart implements the shared cart. There is one cart for the
// whole system, keyed by (menu item, restaurant); its rows are filtered
// by the region of the user who last touched them.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
)

// Store is the record store surface the cart needs
type Store interface {
	ListCartItems(ctx context.Context, ownerRegion models.Region) ([]models.CartItem, error)
	AddCartItem(ctx context.Context, userID, menuItemID, restaurantID string, quantity int) (*models.CartItem, error)
	GetCartItem(ctx context.Context, id string) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context, region models.Region, restaurantID string) (int64, error)
}

// Service applies cart rules on top of the store
type Service struct {
	store  Store
	authz  *policy.Authorizer
	logger *logger.Logger
}

// NewService creates a new cart service
func NewService(store Store, authz *policy.Authorizer, log *logger.Logger) *Service {
	return &Service{store: store, authz: authz, logger: log}
}

// List returns the rows owned by users of the caller's region, or the
// whole cart for an anonymous caller
func (s *Service) List(ctx context.Context, caller *models.User) ([]models.CartItem, error) {
	var region models.Region
	if caller != nil {
		region = caller.Region
	}

	items, err := s.store.ListCartItems(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return items, nil
}

// Add puts quantity of a menu item into the shared cart. A row that
// already exists for the (menu item, restaurant) pair is incremented and
// handed to the caller. Any region may be added to.
func (s *Service) Add(ctx context.Context, caller *models.User, req *models.AddCartItemRequest) (*models.CartItem, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := s.store.AddCartItem(ctx, caller.ID, req.MenuItemID, req.RestaurantID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Debug("cart_item_added", "Added item to shared cart", logger.RequestID(ctx), map[string]interface{}{
		"cart_item_id":  item.ID,
		"menu_item_id":  item.MenuItemID,
		"restaurant_id": item.RestaurantID,
		"quantity":      item.Quantity,
		"user_id":       caller.ID,
	})
	return item, nil
}

// Remove deletes one row. Members may only remove rows of restaurants in
// their own region.
func (s *Service) Remove(ctx context.Context, caller *models.User, id string) error {
	if caller == nil {
		return policy.ErrAuthenticationRequired
	}

	item, err := s.store.GetCartItem(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return policy.NotFound("cart item", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get cart item: %w", err)
	}

	var region models.Region
	if item.Restaurant != nil {
		region = item.Restaurant.Region
	}
	if err := s.authz.Authorize(policy.ActionCartRemove, caller, region); err != nil {
		return err
	}

	if err := s.store.DeleteCartItem(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return policy.NotFound("cart item", id)
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear deletes every row of restaurants in the caller's region,
// optionally only for one restaurant. Matching nothing is not an error.
func (s *Service) Clear(ctx context.Context, caller *models.User, restaurantID string) (int64, error) {
	if caller == nil {
		return 0, policy.ErrAuthenticationRequired
	}

	deleted, err := s.store.ClearCart(ctx, caller.Region, restaurantID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug("cart_cleared", "Cleared shared cart", logger.RequestID(ctx), map[string]interface{}{
		"region":        caller.Region,
		"restaurant_id": restaurantID,
		"deleted":       deleted,
	})
	return deleted, nil
}
