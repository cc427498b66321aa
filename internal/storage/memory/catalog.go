package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

func (s *Store) menuFor(restaurantID string) []models.MenuItem {
	menu := []models.MenuItem{}
	for _, m := range s.menuItems {
		if m.RestaurantID == restaurantID {
			menu = append(menu, *m)
		}
	}
	sort.Slice(menu, func(i, j int) bool {
		if c := menu[i].Price.Cmp(menu[j].Price); c != 0 {
			return c < 0
		}
		return menu[i].Name < menu[j].Name
	})
	return menu
}

// ListRestaurants returns restaurants with their menus. An empty region
// returns every restaurant.
func (s *Store) ListRestaurants(_ context.Context, region models.Region) ([]models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restaurants := []models.Restaurant{}
	for _, r := range s.restaurants {
		if region != "" && r.Region != region {
			continue
		}
		cp := *r
		cp.MenuItems = s.menuFor(r.ID)
		restaurants = append(restaurants, cp)
	}
	sort.Slice(restaurants, func(i, j int) bool {
		return restaurants[i].Name < restaurants[j].Name
	})
	return restaurants, nil
}

// GetRestaurant returns one restaurant with its menu or models.ErrNotFound
func (s *Store) GetRestaurant(_ context.Context, id string) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("get restaurant %s: %w", id, models.ErrNotFound)
	}
	cp := *r
	cp.MenuItems = s.menuFor(id)
	return &cp, nil
}

// MenuItemsForRestaurant returns the distinct menu items among ids that
// belong to the restaurant; unknown ids are dropped
func (s *Store) MenuItemsForRestaurant(_ context.Context, restaurantID string, ids []string) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	items := []models.MenuItem{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if m, ok := s.menuItems[id]; ok && m.RestaurantID == restaurantID {
			items = append(items, *m)
		}
	}
	return items, nil
}

// SeedRestaurant inserts a restaurant and its menu, skipping rows that exist
func (s *Store) SeedRestaurant(_ context.Context, restaurant *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.restaurants[restaurant.ID]; !ok {
		s.restaurants[restaurant.ID] = &models.Restaurant{
			ID:     restaurant.ID,
			Name:   restaurant.Name,
			Region: restaurant.Region,
		}
	}
	for _, item := range restaurant.MenuItems {
		if _, ok := s.menuItems[item.ID]; ok {
			continue
		}
		m := item
		m.RestaurantID = restaurant.ID
		s.menuItems[m.ID] = &m
	}
	return nil
}
