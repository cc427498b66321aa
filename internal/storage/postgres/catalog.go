package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// ListRestaurants returns restaurants with their menus. An empty region
// returns every restaurant.
func (s *Store) ListRestaurants(ctx context.Context, region models.Region) ([]models.Restaurant, error) {
	rows, err := s.db.Query(ctx, database.ListRestaurantsSQL, string(region))
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		var r models.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Region); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachMenus(ctx, restaurants); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant with its menu or models.ErrNotFound
func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRow(ctx, database.GetRestaurantSQL, id).Scan(&r.ID, &r.Name, &r.Region)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", id, notFound(err))
	}

	list := []models.Restaurant{r}
	if err := s.attachMenus(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Store) attachMenus(ctx context.Context, restaurants []models.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	ids := make([]string, len(restaurants))
	index := make(map[string]int, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
		index[r.ID] = i
		restaurants[i].MenuItems = []models.MenuItem{}
	}

	rows, err := s.db.Query(ctx, database.ListMenuItemsByRestaurantsSQL, ids)
	if err != nil {
		return fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return fmt.Errorf("scan menu item: %w", err)
		}
		i := index[m.RestaurantID]
		restaurants[i].MenuItems = append(restaurants[i].MenuItems, *m)
	}
	return rows.Err()
}

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Price); err != nil {
		return nil, err
	}
	return &m, nil
}

// MenuItemsForRestaurant returns the distinct menu items among ids that
// belong to the restaurant; unknown ids are dropped
func (s *Store) MenuItemsForRestaurant(ctx context.Context, restaurantID string, ids []string) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, database.MenuItemsForRestaurantSQL, restaurantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// SeedRestaurant inserts a restaurant and its menu, skipping rows that exist
func (s *Store) SeedRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	return s.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, database.InsertRestaurantSQL, restaurant.ID, restaurant.Name, restaurant.Region); err != nil {
			return fmt.Errorf("insert restaurant %s: %w", restaurant.ID, err)
		}

		batch := &pgx.Batch{}
		for _, item := range restaurant.MenuItems {
			batch.Queue(database.InsertMenuItemSQL, item.ID, restaurant.ID, item.Name, item.Price)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert menu items for %s: %w", restaurant.ID, err)
		}
		return nil
	})
}
