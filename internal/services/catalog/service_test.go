package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/seed"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/storage/memory"
)

type fakeCache struct {
	entries map[models.Region][]models.Restaurant
	getErr  error
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[models.Region][]models.Restaurant)}
}

func (c *fakeCache) Get(_ context.Context, region models.Region) ([]models.Restaurant, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.entries[region]
	return r, ok, nil
}

func (c *fakeCache) Set(_ context.Context, region models.Region, restaurants []models.Restaurant) error {
	c.sets++
	c.entries[region] = restaurants
	return nil
}

type countingStore struct {
	Store
	lists int
}

func (s *countingStore) ListRestaurants(ctx context.Context, region models.Region) ([]models.Restaurant, error) {
	s.lists++
	return s.Store.ListRestaurants(ctx, region)
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	require.NoError(t, seed.Run(context.Background(), store, logger.Discard()))
	return store
}

func TestListRestaurants_RegionMatrix(t *testing.T) {
	svc := NewService(seededStore(t), nil, logger.Discard())

	for _, role := range models.Roles() {
		for _, region := range models.Regions() {
			caller := &models.User{ID: "c", Role: role, Region: region}
			t.Run(string(role)+"/"+string(region), func(t *testing.T) {
				restaurants, err := svc.ListRestaurants(context.Background(), caller)
				require.NoError(t, err)

				if role == models.RoleAdmin {
					assert.Len(t, restaurants, 30)
					return
				}
				assert.Len(t, restaurants, 15)
				for _, r := range restaurants {
					assert.Equal(t, region, r.Region)
					assert.Len(t, r.MenuItems, 16)
				}
			})
		}
	}

	t.Run("anonymous", func(t *testing.T) {
		restaurants, err := svc.ListRestaurants(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, restaurants, 30)
	})
}

func TestListRestaurants_UsesCache(t *testing.T) {
	store := &countingStore{Store: seededStore(t)}
	cache := newFakeCache()
	svc := NewService(store, cache, logger.Discard())
	caller := &models.User{ID: "thor", Role: models.RoleMember, Region: models.RegionIndia}

	first, err := svc.ListRestaurants(context.Background(), caller)
	require.NoError(t, err)
	second, err := svc.ListRestaurants(context.Background(), caller)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.lists)
	assert.Equal(t, 1, cache.sets)
	assert.Contains(t, cache.entries, models.RegionIndia)
}

func TestListRestaurants_CacheFailureFallsThrough(t *testing.T) {
	store := &countingStore{Store: seededStore(t)}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := NewService(store, cache, logger.Discard())

	restaurants, err := svc.ListRestaurants(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, restaurants, 30)
	assert.Equal(t, 1, store.lists)
}

func TestGetRestaurant_Unfiltered(t *testing.T) {
	svc := NewService(seededStore(t), nil, logger.Discard())

	r, err := svc.GetRestaurant(context.Background(), seed.RestaurantID(models.RegionAmerica, 2))
	require.NoError(t, err)
	assert.Equal(t, models.RegionAmerica, r.Region)
	assert.Len(t, r.MenuItems, 16)

	_, err = svc.GetRestaurant(context.Background(), "nowhere")
	assert.True(t, errors.Is(err, policy.ErrNotFound))
}
