// Package catalog serves restaurants and menus filtered by the caller's
// region.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/metrics"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
)

// Store is the record store surface the catalog needs
type Store interface {
	ListRestaurants(ctx context.Context, region models.Region) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
}

// Cache holds restaurant lists keyed by region filter
type Cache interface {
	Get(ctx context.Context, region models.Region) ([]models.Restaurant, bool, error)
	Set(ctx context.Context, region models.Region, restaurants []models.Restaurant) error
}

// Service lists restaurants
type Service struct {
	store  Store
	cache  Cache
	logger *logger.Logger
}

// NewService creates a catalog service; cache may be nil
func NewService(store Store, cache Cache, log *logger.Logger) *Service {
	return &Service{store: store, cache: cache, logger: log}
}

// RegionFilter returns the region a caller's restaurant list is limited
// to. Admins and anonymous callers see every region.
func RegionFilter(caller *models.User) models.Region {
	if caller == nil || caller.Role == models.RoleAdmin {
		return ""
	}
	return caller.Region
}

// ListRestaurants returns the restaurants visible to caller, with menus
func (s *Service) ListRestaurants(ctx context.Context, caller *models.User) ([]models.Restaurant, error) {
	region := RegionFilter(caller)
	requestID := logger.RequestID(ctx)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, region)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			s.logger.Warn("cache_read_failed", "Restaurant cache unavailable, reading store", requestID, map[string]interface{}{
				"region": region,
				"error":  err.Error(),
			})
		case ok:
			metrics.RecordCacheLookup("hit")
			return cached, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	restaurants, err := s.store.ListRestaurants(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, region, restaurants); err != nil {
			s.logger.Warn("cache_write_failed", "Failed to cache restaurants", requestID, map[string]interface{}{
				"region": region,
				"error":  err.Error(),
			})
		}
	}
	return restaurants, nil
}

// GetRestaurant returns any restaurant by id regardless of region
func (s *Service) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := s.store.GetRestaurant(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, policy.NotFound("restaurant", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	return restaurant, nil
}
