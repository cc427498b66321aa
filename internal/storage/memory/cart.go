package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// ListCartItems returns cart rows whose owning user is in ownerRegion,
// newest first. An empty region returns the whole cart.
func (s *Store) ListCartItems(_ context.Context, ownerRegion models.Region) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*cartRecord, 0, len(s.cart))
	for _, rec := range s.cart {
		owner := s.users[rec.item.UserID]
		if ownerRegion != "" && (owner == nil || owner.Region != ownerRegion) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].seq > records[j].seq
	})

	items := make([]models.CartItem, 0, len(records))
	for _, rec := range records {
		item := rec.item
		if u, ok := s.users[item.UserID]; ok {
			cp := *u
			item.User = &cp
		}
		if m, ok := s.menuItems[item.MenuItemID]; ok {
			cp := *m
			item.MenuItem = &cp
		}
		if r, ok := s.restaurants[item.RestaurantID]; ok {
			cp := *r
			item.Restaurant = &cp
		}
		items = append(items, item)
	}
	return items, nil
}

// AddCartItem atomically inserts the (menu item, restaurant) row or adds
// quantity to the existing one and reassigns it to userID
func (s *Store) AddCartItem(_ context.Context, userID, menuItemID, restaurantID string, quantity int) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("upsert cart item: user %s does not exist", userID)
	}
	if _, ok := s.menuItems[menuItemID]; !ok {
		return nil, fmt.Errorf("upsert cart item: menu item %s does not exist", menuItemID)
	}
	if _, ok := s.restaurants[restaurantID]; !ok {
		return nil, fmt.Errorf("upsert cart item: restaurant %s does not exist", restaurantID)
	}

	now := s.now()
	key := cartKey{menuItemID: menuItemID, restaurantID: restaurantID}
	if id, ok := s.cartByKey[key]; ok {
		rec := s.cart[id]
		rec.item.Quantity += quantity
		rec.item.UserID = userID
		rec.item.UpdatedAt = now
		cp := rec.item
		return &cp, nil
	}

	rec := &cartRecord{
		item: models.CartItem{
			ID:           uuid.NewString(),
			UserID:       userID,
			MenuItemID:   menuItemID,
			RestaurantID: restaurantID,
			Quantity:     quantity,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		seq: s.next(),
	}
	s.cart[rec.item.ID] = rec
	s.cartByKey[key] = rec.item.ID

	cp := rec.item
	return &cp, nil
}

// GetCartItem returns a cart row with its restaurant or models.ErrNotFound
func (s *Store) GetCartItem(_ context.Context, id string) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cart[id]
	if !ok {
		return nil, fmt.Errorf("get cart item %s: %w", id, models.ErrNotFound)
	}
	item := rec.item
	if r, ok := s.restaurants[item.RestaurantID]; ok {
		cp := *r
		item.Restaurant = &cp
	}
	return &item, nil
}

// DeleteCartItem removes one cart row or returns models.ErrNotFound
func (s *Store) DeleteCartItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cart[id]
	if !ok {
		return fmt.Errorf("delete cart item %s: %w", id, models.ErrNotFound)
	}
	s.removeCartRecord(rec)
	return nil
}

func (s *Store) removeCartRecord(rec *cartRecord) {
	delete(s.cart, rec.item.ID)
	delete(s.cartByKey, cartKey{menuItemID: rec.item.MenuItemID, restaurantID: rec.item.RestaurantID})
}

// ClearCart deletes cart rows whose restaurant is in region, optionally
// only for one restaurant, and returns how many were removed
func (s *Store) ClearCart(_ context.Context, region models.Region, restaurantID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for _, rec := range s.cart {
		r, ok := s.restaurants[rec.item.RestaurantID]
		if !ok || r.Region != region {
			continue
		}
		if restaurantID != "" && rec.item.RestaurantID != restaurantID {
			continue
		}
		s.removeCartRecord(rec)
		removed++
	}
	return removed, nil
}
