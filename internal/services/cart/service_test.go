package cart

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

var (
	indiaRestaurant   = seed.RestaurantID(models.RegionIndia, 1)
	americaRestaurant = seed.RestaurantID(models.RegionAmerica, 1)
)

func newService(t *testing.T) (*Service, map[string]*models.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, seed.Run(ctx, store, logger.Discard()))

	users := make(map[string]*models.User)
	for _, u := range seed.Users() {
		user, err := store.GetUser(ctx, u.ID)
		require.NoError(t, err)
		users[u.ID] = user
	}
	return NewService(store, policy.NewAuthorizer(nil), logger.Discard()), users
}

func add(t *testing.T, svc *Service, caller *models.User, restaurantID string, item, quantity int) *models.CartItem {
	t.Helper()
	q := quantity
	got, err := svc.Add(context.Background(), caller, &models.AddCartItemRequest{
		MenuItemID:   seed.MenuItemID(restaurantID, item),
		RestaurantID: restaurantID,
		Quantity:     &q,
	})
	require.NoError(t, err)
	return got
}

func TestAdd_SharedRowAccumulates(t *testing.T) {
	svc, users := newService(t)

	first := add(t, svc, users["thor"], indiaRestaurant, 1, 2)
	second := add(t, svc, users["thanos"], indiaRestaurant, 1, 3)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "thanos", second.UserID, "row is handed to the latest actor")

	items, err := svc.List(context.Background(), users["thor"])
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAdd_DefaultQuantity(t *testing.T) {
	svc, users := newService(t)

	item, err := svc.Add(context.Background(), users["thor"], &models.AddCartItemRequest{
		MenuItemID:   seed.MenuItemID(indiaRestaurant, 2),
		RestaurantID: indiaRestaurant,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestAdd_NoRegionCheck(t *testing.T) {
	svc, users := newService(t)
	item := add(t, svc, users["thor"], americaRestaurant, 1, 1)
	assert.Equal(t, americaRestaurant, item.RestaurantID)
}

func TestAdd_RequiresCaller(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(context.Background(), nil, &models.AddCartItemRequest{
		MenuItemID:   seed.MenuItemID(indiaRestaurant, 1),
		RestaurantID: indiaRestaurant,
	})
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)
}

func TestList_FiltersByOwnerRegion(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	add(t, svc, users["thor"], indiaRestaurant, 1, 1)
	add(t, svc, users["travis"], indiaRestaurant, 2, 1)
	add(t, svc, users["travis"], americaRestaurant, 1, 1)

	india, err := svc.List(ctx, users["captain-marvel"])
	require.NoError(t, err)
	require.Len(t, india, 1)
	assert.Equal(t, "thor", india[0].UserID)

	america, err := svc.List(ctx, users["captain-america"])
	require.NoError(t, err)
	assert.Len(t, america, 2, "travis owns an INDIA restaurant row too")

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRemove_RegionRules(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		wantErr error
	}{
		{name: "member same region", caller: "thor"},
		{name: "member other region", caller: "travis", wantErr: policy.ErrForbidden},
		{name: "manager other region", caller: "captain-america"},
		{name: "admin", caller: "nick-fury"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newService(t)
			item := add(t, svc, users["thor"], indiaRestaurant, 1, 1)

			err := svc.Remove(context.Background(), users[tt.caller], item.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var forbidden *policy.ForbiddenError
				require.ErrorAs(t, err, &forbidden)
				assert.Equal(t, policy.ActionCartRemove, forbidden.Action)
				return
			}
			require.NoError(t, err)

			left, err := svc.List(context.Background(), nil)
			require.NoError(t, err)
			assert.Empty(t, left)
		})
	}
}

func TestRemove_Errors(t *testing.T) {
	svc, users := newService(t)

	err := svc.Remove(context.Background(), nil, "anything")
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)

	err = svc.Remove(context.Background(), users["thor"], "missing")
	assert.True(t, errors.Is(err, policy.ErrNotFound))
}

func TestClear_OnlyCallerRegion(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	otherIndia := seed.RestaurantID(models.RegionIndia, 2)
	add(t, svc, users["thor"], indiaRestaurant, 1, 1)
	add(t, svc, users["thor"], otherIndia, 1, 1)
	add(t, svc, users["travis"], americaRestaurant, 1, 1)

	deleted, err := svc.Clear(ctx, users["thanos"], otherIndia)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = svc.Clear(ctx, users["thanos"], "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = svc.Clear(ctx, users["thanos"], "")
	require.NoError(t, err)
	assert.Zero(t, deleted, "clearing an empty region still succeeds")

	left, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, americaRestaurant, left[0].RestaurantID)

	_, err = svc.Clear(ctx, nil, "")
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)
}
