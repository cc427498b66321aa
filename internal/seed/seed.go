// Package seed loads the demo users, restaurants and menus.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

const (
	restaurantsPerRegion = 15
	itemsPerRestaurant   = 16
)

// Store is the record store surface the seeder writes through
type Store interface {
	SeedUser(ctx context.Context, user *models.User) error
	SeedRestaurant(ctx context.Context, restaurant *models.Restaurant) error
}

var cuisines = map[models.Region][]string{
	models.RegionIndia: {
		"North Indian", "South Indian", "Punjabi", "Bengali", "Mughlai", "Street Food", "Gujarati", "Rajasthani",
		"Hyderabadi", "Goan", "Maharashtrian", "Assamese", "Kerala", "Chettinad", "Indo-Chinese",
	},
	models.RegionAmerica: {
		"Burger Joint", "Steakhouse", "Pizza Parlor", "Tex-Mex", "BBQ Pit", "Diner", "Seafood Shack", "New York Deli",
		"Cajun Kitchen", "California Grill", "Hot Dog Stand", "Bagel Shop", "Donut Shop", "Southern Fried", "Hawaiian Poke",
	},
}

var dishes = map[models.Region][]string{
	models.RegionIndia: {
		"Paneer Butter Masala", "Butter Chicken", "Dal Makhani", "Masala Dosa", "Hyderabadi Biryani", "Chole Bhature",
		"Pav Bhaji", "Dhokla", "Vada Pav", "Rogan Josh", "Malai Kofta", "Pani Puri", "Gulab Jamun", "Rasgulla", "Lassi",
		"Tandoori Chicken",
	},
	models.RegionAmerica: {
		"Cheeseburger", "BBQ Ribs", "Pepperoni Pizza", "Buffalo Wings", "Hot Dog", "Apple Pie", "Clam Chowder",
		"Philly Cheesesteak", "Mac and Cheese", "Fried Chicken", "Tacos", "Pancakes", "Cornbread", "Lobster Roll",
		"Chocolate Chip Cookie", "New York Cheesecake",
	},
}

// Users returns the demo users
func Users() []models.User {
	return []models.User{
		{ID: "nick-fury", Name: "Nick Fury", Email: "nick.fury@shield.com", Role: models.RoleAdmin, Region: models.RegionIndia},
		{ID: "captain-marvel", Name: "Captain Marvel", Email: "carol@shield.com", Role: models.RoleManager, Region: models.RegionIndia},
		{ID: "captain-america", Name: "Captain America", Email: "steve@shield.com", Role: models.RoleManager, Region: models.RegionAmerica},
		{ID: "thanos", Name: "Thanos", Email: "thanos@titan.com", Role: models.RoleMember, Region: models.RegionIndia},
		{ID: "thor", Name: "Thor", Email: "thor@asgard.com", Role: models.RoleMember, Region: models.RegionIndia},
		{ID: "travis", Name: "Travis", Email: "travis@example.com", Role: models.RoleMember, Region: models.RegionAmerica},
	}
}

// RestaurantID is the stable id of the i-th (1-based) demo restaurant of a
// region, e.g. india-3
func RestaurantID(region models.Region, i int) string {
	return fmt.Sprintf("%s-%d", strings.ToLower(string(region)), i)
}

// MenuItemID is the stable id of the j-th (1-based) item of a restaurant
func MenuItemID(restaurantID string, j int) string {
	return fmt.Sprintf("%s-item-%d", restaurantID, j)
}

// Price returns the demo price of the j-th menu item in a region
func Price(region models.Region, j int) decimal.Decimal {
	if region == models.RegionIndia {
		return decimal.NewFromInt(int64(150 + j*20))
	}
	return decimal.NewFromInt(int64(10 + j))
}

// Restaurants returns the demo restaurants with their menus
func Restaurants() []models.Restaurant {
	restaurants := make([]models.Restaurant, 0, len(models.Regions())*restaurantsPerRegion)
	for _, region := range models.Regions() {
		suffix := "Express"
		if region == models.RegionIndia {
			suffix = "Darbar"
		}

		for i := 1; i <= restaurantsPerRegion; i++ {
			r := models.Restaurant{
				ID:     RestaurantID(region, i),
				Name:   fmt.Sprintf("%s %s #%d", cuisines[region][i-1], suffix, i),
				Region: region,
			}
			for j := 1; j <= itemsPerRestaurant; j++ {
				r.MenuItems = append(r.MenuItems, models.MenuItem{
					ID:           MenuItemID(r.ID, j),
					RestaurantID: r.ID,
					Name:         fmt.Sprintf("%s Special %d", dishes[region][(j-1)%len(dishes[region])], j),
					Price:        Price(region, j),
				})
			}
			restaurants = append(restaurants, r)
		}
	}
	return restaurants
}

// Run writes the demo data. It is idempotent.
func Run(ctx context.Context, store Store, log *logger.Logger) error {
	requestID := logger.RequestID(ctx)

	users := Users()
	for i := range users {
		if err := store.SeedUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", users[i].ID, err)
		}
	}
	log.Info("seed_users", fmt.Sprintf("Seeded %d users", len(users)), requestID, nil)

	restaurants := Restaurants()
	for i := range restaurants {
		if err := store.SeedRestaurant(ctx, &restaurants[i]); err != nil {
			return fmt.Errorf("failed to seed restaurant %s: %w", restaurants[i].ID, err)
		}
	}
	log.Info("seed_restaurants", fmt.Sprintf("Seeded %d restaurants", len(restaurants)), requestID, map[string]interface{}{
		"items_per_restaurant": itemsPerRestaurant,
	})
	return nil
}
