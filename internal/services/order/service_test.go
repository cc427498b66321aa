package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/seed"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/storage/memory"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/validation"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, evt *models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

type fixture struct {
	svc    *Service
	store  *memory.Store
	events *recordingPublisher
	users  map[string]*models.User
}

var (
	indiaRestaurant   = seed.RestaurantID(models.RegionIndia, 1)
	americaRestaurant = seed.RestaurantID(models.RegionAmerica, 1)
)

func newFixture(t *testing.T) *fixture {
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

	events := &recordingPublisher{}
	return &fixture{
		svc:    NewService(store, events, policy.NewAuthorizer(nil), logger.Discard()),
		store:  store,
		events: events,
		users:  users,
	}
}

func (f *fixture) place(t *testing.T, caller, restaurantID string, items ...int) *models.Order {
	t.Helper()
	ids := make([]string, len(items))
	for i, j := range items {
		ids[i] = seed.MenuItemID(restaurantID, j)
	}
	order, err := f.svc.Create(context.Background(), f.users[caller], &models.CreateOrderRequest{
		RestaurantID: restaurantID,
		ItemIDs:      ids,
	})
	require.NoError(t, err)
	return order
}

func strPtr(s string) *string { return &s }

func TestCreate_EligibilityMatrix(t *testing.T) {
	tests := []struct {
		caller     string
		restaurant string
		allowed    bool
	}{
		{"nick-fury", indiaRestaurant, true},
		{"nick-fury", americaRestaurant, true},
		{"captain-marvel", indiaRestaurant, true},
		{"captain-marvel", americaRestaurant, false},
		{"captain-america", americaRestaurant, true},
		{"captain-america", indiaRestaurant, false},
		{"thor", indiaRestaurant, false},
		{"thor", americaRestaurant, false},
		{"thanos", indiaRestaurant, false},
		{"travis", americaRestaurant, true},
		{"travis", indiaRestaurant, false},
	}

	for _, tt := range tests {
		t.Run(tt.caller+"->"+tt.restaurant, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), f.users[tt.caller], &models.CreateOrderRequest{
				RestaurantID: tt.restaurant,
				ItemIDs:      []string{seed.MenuItemID(tt.restaurant, 1)},
			})
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, policy.ErrForbidden)
		})
	}
}

func TestCreate_IndiaMemberNeverOrders(t *testing.T) {
	f := newFixture(t)
	for _, restaurant := range seed.Restaurants() {
		for _, caller := range []string{"thor", "thanos"} {
			_, err := f.svc.Create(context.Background(), f.users[caller], &models.CreateOrderRequest{
				RestaurantID: restaurant.ID,
				ItemIDs:      []string{restaurant.MenuItems[0].ID},
				PaymentType:  strPtr("card"),
			})
			var forbidden *policy.ForbiddenError
			require.ErrorAs(t, err, &forbidden)
			assert.Equal(t, "checkout is disabled for members in the INDIA region", forbidden.Reason)
		}
	}
}

func TestCreate_MissingRestaurantIsForbidden(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.users["nick-fury"], &models.CreateOrderRequest{RestaurantID: "nowhere"})
	assert.ErrorIs(t, err, policy.ErrForbidden)
}

func TestCreate_RequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), nil, &models.CreateOrderRequest{RestaurantID: indiaRestaurant})
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)
}

func TestCreate_FiltersItemsAndTotals(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.users["captain-marvel"], &models.CreateOrderRequest{
		RestaurantID: indiaRestaurant,
		ItemIDs: []string{
			seed.MenuItemID(indiaRestaurant, 1),
			seed.MenuItemID(americaRestaurant, 1),
			"does-not-exist",
			seed.MenuItemID(indiaRestaurant, 2),
			seed.MenuItemID(indiaRestaurant, 1),
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 3)
	for _, line := range order.Items {
		assert.Equal(t, 1, line.Quantity)
	}
	// 170 + 190 + 170
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(530)), order.TotalAmount.String())
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Nil(t, order.PaymentType)
}

func TestCreate_EmptyItemSet(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), f.users["nick-fury"], &models.CreateOrderRequest{
		RestaurantID: americaRestaurant,
		ItemIDs:      []string{"unknown"},
	})
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.True(t, order.TotalAmount.IsZero())
}

func TestCreate_PaymentTypeMarksPaid(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), f.users["captain-america"], &models.CreateOrderRequest{
		RestaurantID:   americaRestaurant,
		ItemIDs:        []string{seed.MenuItemID(americaRestaurant, 3)},
		PaymentType:    strPtr("card"),
		PaymentDetails: strPtr("**** 4242"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
	require.NotNil(t, order.PaymentDetails)
	assert.Equal(t, "**** 4242", *order.PaymentDetails)

	require.Len(t, f.events.events, 1)
	evt := f.events.events[0]
	assert.Equal(t, models.EventOrderCreated, evt.Type)
	assert.Equal(t, models.RegionAmerica, evt.Region)
	assert.Equal(t, "order.created", evt.RoutingKey())
}

func TestCreate_AnyNonEmptyPaymentTypeMarksPaid(t *testing.T) {
	tests := []struct {
		name        string
		paymentType *string
		want        models.OrderStatus
	}{
		{"absent", nil, models.StatusPending},
		{"empty", strPtr(""), models.StatusPending},
		{"whitespace", strPtr(" "), models.StatusPaid},
		{"card", strPtr("card"), models.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			order, err := f.svc.Create(context.Background(), f.users["travis"], &models.CreateOrderRequest{
				RestaurantID: americaRestaurant,
				ItemIDs:      []string{seed.MenuItemID(americaRestaurant, 1)},
				PaymentType:  tt.paymentType,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, order.Status)
			if tt.want == models.StatusPaid {
				require.NotNil(t, order.PaymentType)
				assert.Equal(t, *tt.paymentType, *order.PaymentType)
			}
		})
	}
}

func TestCreate_BlankItemIDsAreDropped(t *testing.T) {
	f := newFixture(t)
	order, err := f.svc.Create(context.Background(), f.users["travis"], &models.CreateOrderRequest{
		RestaurantID: americaRestaurant,
		ItemIDs:      []string{seed.MenuItemID(americaRestaurant, 1), "", "  "},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, seed.MenuItemID(americaRestaurant, 1), order.Items[0].MenuItemID)
}

func TestCreate_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	order := f.place(t, "travis", americaRestaurant, 1)
	assert.NotEmpty(t, order.ID)
}

func TestList_CallerRegionOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.place(t, "captain-marvel", indiaRestaurant, 1)
	f.place(t, "nick-fury", americaRestaurant, 1)
	f.place(t, "travis", americaRestaurant, 2)

	admin, err := f.svc.List(ctx, f.users["nick-fury"])
	require.NoError(t, err)
	require.Len(t, admin, 1, "admins only see their assigned region")
	assert.Equal(t, indiaRestaurant, admin[0].RestaurantID)

	america, err := f.svc.List(ctx, f.users["travis"])
	require.NoError(t, err)
	assert.Len(t, america, 2)

	_, err = f.svc.List(ctx, nil)
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)
}

func TestUpdatePayment_AdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "captain-marvel", indiaRestaurant, 1)
	req := &models.UpdatePaymentRequest{PaymentType: "upi"}

	for _, caller := range []string{"thor", "captain-marvel", "captain-america", "travis"} {
		_, err := f.svc.UpdatePayment(ctx, f.users[caller], order.ID, req)
		assert.ErrorIs(t, err, policy.ErrForbidden, caller)
	}

	_, err := f.svc.UpdatePayment(ctx, f.users["thor"], order.ID, req)
	var forbidden *policy.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "members cannot modify payments", forbidden.Reason)

	_, err = f.svc.UpdatePayment(ctx, f.users["captain-marvel"], order.ID, req)
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, "managers cannot modify payment methods", forbidden.Reason)

	updated, err := f.svc.UpdatePayment(ctx, f.users["nick-fury"], order.ID, &models.UpdatePaymentRequest{
		PaymentType:    "upi",
		PaymentDetails: strPtr("fury@bank"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)
	assert.Equal(t, "upi", *updated.PaymentType)
	assert.Equal(t, "fury@bank", *updated.PaymentDetails)
}

func TestUpdatePayment_ResurrectsCancelledOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "travis", americaRestaurant, 1)

	cancelled, err := f.svc.UpdateStatus(ctx, f.users["captain-america"], order.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, cancelled.Status)

	paid, err := f.svc.UpdatePayment(ctx, f.users["nick-fury"], order.ID, &models.UpdatePaymentRequest{PaymentType: "card"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, models.EventPaymentUpdated, last.Type)
	assert.Equal(t, models.StatusCancelled, last.OldStatus)
	assert.Equal(t, models.StatusPaid, last.NewStatus)
}

func TestUpdatePayment_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdatePayment(context.Background(), f.users["nick-fury"], "missing", &models.UpdatePaymentRequest{PaymentType: "card"})
	assert.ErrorIs(t, err, policy.ErrNotFound)
}

func TestUpdateStatus_Rules(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		status  models.OrderStatus
		allowed bool
	}{
		{"member cannot pay", "travis", models.StatusPaid, false},
		{"member cannot cancel", "travis", models.StatusCancelled, false},
		{"member may reset to pending in region", "travis", models.StatusPending, true},
		{"member cannot touch other region", "thor", models.StatusPending, false},
		{"manager settles in region", "captain-america", models.StatusPaid, true},
		{"manager cannot cross region", "captain-marvel", models.StatusCancelled, false},
		{"admin crosses region", "nick-fury", models.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			order := f.place(t, "travis", americaRestaurant, 1)

			updated, err := f.svc.UpdateStatus(context.Background(), f.users[tt.caller], order.ID, tt.status)
			if !tt.allowed {
				assert.ErrorIs(t, err, policy.ErrForbidden)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, updated.Status)
		})
	}
}

func TestUpdateStatus_PermissiveButRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "travis", americaRestaurant, 1)

	_, err := f.svc.UpdateStatus(ctx, f.users["nick-fury"], order.ID, models.StatusCancelled)
	require.NoError(t, err)

	reopened, err := f.svc.UpdateStatus(ctx, f.users["nick-fury"], order.ID, models.StatusPending)
	require.NoError(t, err, "transitions out of CANCELLED are not rejected")
	assert.Equal(t, models.StatusPending, reopened.Status)

	history, err := f.svc.History(ctx, f.users["travis"], order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []models.OrderStatus{models.StatusPending, models.StatusCancelled, models.StatusPending},
		[]models.OrderStatus{history[0].Status, history[1].Status, history[2].Status})
	assert.Equal(t, "nick-fury", history[2].ChangedBy)
}

func TestUpdateStatus_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "travis", americaRestaurant, 1)

	_, err := f.svc.UpdateStatus(ctx, nil, order.ID, models.StatusPaid)
	assert.ErrorIs(t, err, policy.ErrAuthenticationRequired)

	_, err = f.svc.UpdateStatus(ctx, f.users["nick-fury"], "missing", models.StatusPaid)
	assert.ErrorIs(t, err, policy.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, f.users["nick-fury"], order.ID, models.OrderStatus("SHIPPED"))
	var verr validation.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHistory_RegionScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "travis", americaRestaurant, 1)

	_, err := f.svc.History(ctx, f.users["nick-fury"], order.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden, "history follows the list visibility")

	history, err := f.svc.History(ctx, f.users["captain-america"], order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].Status)

	_, err = f.svc.History(ctx, f.users["captain-america"], "missing")
	assert.ErrorIs(t, err, policy.ErrNotFound)
}

// Member in AMERICA orders a 10-priced item, admin then marks it paid.
func TestScenario_AmericaMemberOrderSettledByAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SeedUser(ctx, &models.User{ID: "m", Name: "M", Email: "m@x", Role: models.RoleMember, Region: models.RegionAmerica}))
	require.NoError(t, store.SeedUser(ctx, &models.User{ID: "a", Name: "A", Email: "a@x", Role: models.RoleAdmin, Region: models.RegionIndia}))
	require.NoError(t, store.SeedRestaurant(ctx, &models.Restaurant{
		ID: "R", Name: "R", Region: models.RegionAmerica,
		MenuItems: []models.MenuItem{{ID: "item", Name: "Item", Price: decimal.NewFromInt(10)}},
	}))

	svc := NewService(store, nil, policy.NewAuthorizer(nil), logger.Discard())
	member, _ := store.GetUser(ctx, "m")
	admin, _ := store.GetUser(ctx, "a")

	order, err := svc.Create(ctx, member, &models.CreateOrderRequest{RestaurantID: "R", ItemIDs: []string{"item"}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(10)))

	paid, err := svc.UpdateStatus(ctx, admin, order.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
}

func TestOrderLines(t *testing.T) {
	found := []models.MenuItem{{ID: "a"}, {ID: "b"}}
	lines := orderLines([]string{"b", "x", "a", "b"}, found)
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"b", "a", "b"}, []string{lines[0].ID, lines[1].ID, lines[2].ID})
}

func TestUpdateStatus_RegionCheckedBeforeSettlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, "travis", americaRestaurant, 1)

	var forbidden *policy.ForbiddenError
	_, err := f.svc.UpdateStatus(ctx, f.users["thor"], order.ID, models.StatusCancelled)
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, policy.ActionOrderSetStatus, forbidden.Action)

	_, err = f.svc.UpdateStatus(ctx, f.users["travis"], order.ID, models.StatusCancelled)
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, policy.ActionOrderSettle, forbidden.Action)
	assert.Equal(t, "members cannot pay or cancel orders", forbidden.Reason)
}
