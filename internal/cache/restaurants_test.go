package cache

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

func TestRestaurantKey(t *testing.T) {
	assert.Equal(t, "savor:restaurants:all", RestaurantKey(""))
	assert.Equal(t, "savor:restaurants:INDIA", RestaurantKey(models.RegionIndia))
	assert.NotEqual(t, RestaurantKey(models.RegionIndia), RestaurantKey(models.RegionAmerica))
}

func TestDecodeKeepsExactPrices(t *testing.T) {
	in := []models.Restaurant{{
		ID:     "r1",
		Name:   "Spice Route",
		Region: models.RegionIndia,
		MenuItems: []models.MenuItem{
			{ID: "m1", RestaurantID: "r1", Name: "Dosa", Price: decimal.RequireFromString("170.10")},
		},
	}}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].MenuItems, 1)
	assert.True(t, out[0].MenuItems[0].Price.Equal(decimal.RequireFromString("170.1")))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
