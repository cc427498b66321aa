package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := New()

	users := []models.User{
		{ID: "u-india", Name: "Thor", Email: "thor.member@savor.local", Role: models.RoleMember, Region: models.RegionIndia},
		{ID: "u-america", Name: "Travis", Email: "travis.member@savor.local", Role: models.RoleMember, Region: models.RegionAmerica},
	}
	for i := range users {
		require.NoError(t, s.SeedUser(ctx, &users[i]))
	}

	restaurants := []models.Restaurant{
		{ID: "r-india", Name: "Spice Route", Region: models.RegionIndia, MenuItems: []models.MenuItem{
			{ID: "m-dosa", Name: "Dosa", Price: decimal.NewFromInt(170)},
			{ID: "m-idli", Name: "Idli", Price: decimal.NewFromInt(150)},
		}},
		{ID: "r-america", Name: "Burger Barn", Region: models.RegionAmerica, MenuItems: []models.MenuItem{
			{ID: "m-burger", Name: "Burger", Price: decimal.NewFromInt(10)},
		}},
	}
	for i := range restaurants {
		require.NoError(t, s.SeedRestaurant(ctx, &restaurants[i]))
	}
	return s
}

func TestUpsertUserByEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.UpsertUserByEmail(ctx, &models.User{Name: "Ada", Email: "ada.manager@savor.local", Role: models.RoleManager, Region: models.RegionIndia})
	require.NoError(t, err)

	second, err := s.UpsertUserByEmail(ctx, &models.User{Name: "Ada", Email: "ada.manager@savor.local", Role: models.RoleManager, Region: models.RegionAmerica})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RegionAmerica, second.Region)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGetUserNotFound(t *testing.T) {
	_, err := New().GetUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestListRestaurantsByRegion(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	all, err := s.ListRestaurants(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	india, err := s.ListRestaurants(ctx, models.RegionIndia)
	require.NoError(t, err)
	require.Len(t, india, 1)
	assert.Equal(t, "r-india", india[0].ID)
	require.Len(t, india[0].MenuItems, 2)
	assert.Equal(t, "Idli", india[0].MenuItems[0].Name, "menu is ordered by price")
}

func TestMenuItemsForRestaurantDropsForeignIDs(t *testing.T) {
	items, err := seeded(t).MenuItemsForRestaurant(context.Background(), "r-india",
		[]string{"m-dosa", "m-burger", "missing", "m-dosa"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "m-dosa", items[0].ID)
}

func TestAddCartItemMergesSharedRow(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	first, err := s.AddCartItem(ctx, "u-india", "m-dosa", "r-india", 2)
	require.NoError(t, err)
	second, err := s.AddCartItem(ctx, "u-america", "m-dosa", "r-india", 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "u-america", second.UserID)

	all, err := s.ListCartItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	india, err := s.ListCartItems(ctx, models.RegionIndia)
	require.NoError(t, err)
	assert.Empty(t, india, "row now belongs to an AMERICA user")
}

func TestAddCartItemConcurrent(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddCartItem(ctx, "u-india", "m-idli", "r-india", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.ListCartItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 50, items[0].Quantity)
}

func TestAddCartItemUnknownMenuItem(t *testing.T) {
	_, err := seeded(t).AddCartItem(context.Background(), "u-india", "nope", "r-india", 1)
	assert.Error(t, err)
}

func TestDeleteAndClearCart(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	dosa, err := s.AddCartItem(ctx, "u-india", "m-dosa", "r-india", 1)
	require.NoError(t, err)
	_, err = s.AddCartItem(ctx, "u-india", "m-idli", "r-india", 1)
	require.NoError(t, err)
	_, err = s.AddCartItem(ctx, "u-america", "m-burger", "r-america", 1)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCartItem(ctx, dosa.ID))
	assert.True(t, errors.Is(s.DeleteCartItem(ctx, dosa.ID), models.ErrNotFound))

	removed, err := s.ClearCart(ctx, models.RegionIndia, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = s.ClearCart(ctx, models.RegionIndia, "")
	require.NoError(t, err)
	assert.Zero(t, removed)

	left, err := s.ListCartItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "m-burger", left[0].MenuItemID)
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	dosa := models.MenuItem{ID: "m-dosa", Price: decimal.NewFromInt(170)}
	order, err := s.CreateOrder(ctx, &models.NewOrder{
		UserID:       "u-india",
		RestaurantID: "r-india",
		Items:        []models.MenuItem{dosa, dosa},
		TotalAmount:  decimal.NewFromInt(340),
		Status:       models.StatusPending,
	}, "order created")
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Dosa", order.Items[0].MenuItem.Name)
	assert.Equal(t, models.RegionIndia, order.Restaurant.Region)

	cardType := "card"
	updated, err := s.ApplyStatusChange(ctx, models.StatusChange{
		OrderID:     order.ID,
		Status:      models.StatusPaid,
		ChangedBy:   "u-india",
		SetPayment:  true,
		PaymentType: &cardType,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)
	require.NotNil(t, updated.PaymentType)
	assert.Equal(t, "card", *updated.PaymentType)
	assert.Nil(t, updated.PaymentDetails)

	history, err := s.OrderHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusPending, history[0].Status)
	require.NotNil(t, history[0].Notes)
	assert.Nil(t, history[1].Notes)

	india, err := s.ListOrdersByRegion(ctx, models.RegionIndia)
	require.NoError(t, err)
	assert.Len(t, india, 1)

	america, err := s.ListOrdersByRegion(ctx, models.RegionAmerica)
	require.NoError(t, err)
	assert.Empty(t, america)

	_, err = s.OrderHistory(ctx, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
	_, err = s.ApplyStatusChange(ctx, models.StatusChange{OrderID: "missing", Status: models.StatusPaid})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestPaymentMethods(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	created, err := s.CreatePaymentMethod(ctx, "u-india", "card", "**** 4242")
	require.NoError(t, err)

	updated, err := s.UpdatePaymentMethod(ctx, created.ID, "upi", "thor@bank")
	require.NoError(t, err)
	assert.Equal(t, "upi", updated.Type)

	mine, err := s.ListPaymentMethods(ctx, "u-india")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "thor@bank", mine[0].Details)

	theirs, err := s.ListPaymentMethods(ctx, "u-america")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = s.UpdatePaymentMethod(ctx, "missing", "card", "x")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
