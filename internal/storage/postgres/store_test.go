package postgres

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/config"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/seed"
)

// Runs against a real database only when SAVOR_TEST_POSTGRES=1; connection
// settings come from the usual SAVOR_DATABASE_* variables.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("SAVOR_TEST_POSTGRES") != "1" {
		t.Skip("SAVOR_TEST_POSTGRES not set")
	}

	cfg, err := config.Load("does-not-exist.yaml")
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.RunMigrations(ctx, "../../../migrations")
	require.NoError(t, err)

	store := New(db)
	require.NoError(t, seed.Run(ctx, store, logger.Discard()))
	return store
}

func TestAddCartItemConcurrentIncrements(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	restaurant := seed.RestaurantID(models.RegionAmerica, 15)
	menuItem := seed.MenuItemID(restaurant, 16)
	_, err := store.ClearCart(ctx, models.RegionAmerica, restaurant)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddCartItem(ctx, "travis", menuItem, restaurant, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := store.ListCartItems(ctx, models.RegionAmerica)
	require.NoError(t, err)
	var found *models.CartItem
	for i := range items {
		if items[i].MenuItemID == menuItem {
			found = &items[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 20, found.Quantity)
}

func TestOrderLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	restaurant := seed.RestaurantID(models.RegionIndia, 2)
	items, err := store.MenuItemsForRestaurant(ctx, restaurant, []string{
		seed.MenuItemID(restaurant, 1),
		seed.MenuItemID(seed.RestaurantID(models.RegionIndia, 3), 1),
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	order, err := store.CreateOrder(ctx, &models.NewOrder{
		UserID:       "captain-marvel",
		RestaurantID: restaurant,
		Items:        []models.MenuItem{items[0], items[0]},
		TotalAmount:  models.CalculateTotalAmount([]models.MenuItem{items[0], items[0]}),
		Status:       models.StatusPending,
	}, "order placed")
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(seed.Price(models.RegionIndia, 1).Mul(decimal.NewFromInt(2))))

	cash := "cash"
	updated, err := store.ApplyStatusChange(ctx, models.StatusChange{
		OrderID:     order.ID,
		Status:      models.StatusPaid,
		ChangedBy:   "nick-fury",
		SetPayment:  true,
		PaymentType: &cash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)

	history, err := store.OrderHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[1].Notes)

	_, err = store.GetOrder(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
