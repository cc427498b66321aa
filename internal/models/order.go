package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by record stores when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// User represents a demo identity
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	Region    Region    `json:"region" db:"region"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Restaurant represents a restaurant and its menu
type Restaurant struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Region    Region     `json:"region" db:"region"`
	MenuItems []MenuItem `json:"menu_items,omitempty"`
}

// MenuItem represents a priced dish belonging to one restaurant
type MenuItem struct {
	ID           string          `json:"id" db:"id"`
	RestaurantID string          `json:"restaurant_id" db:"restaurant_id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
}

// CartItem is a row of the shared cart, unique per (menu item, restaurant)
type CartItem struct {
	ID           string      `json:"id" db:"id"`
	UserID       string      `json:"user_id" db:"user_id"`
	MenuItemID   string      `json:"menu_item_id" db:"menu_item_id"`
	RestaurantID string      `json:"restaurant_id" db:"restaurant_id"`
	Quantity     int         `json:"quantity" db:"quantity"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
	User         *User       `json:"user,omitempty"`
	MenuItem     *MenuItem   `json:"menu_item,omitempty"`
	Restaurant   *Restaurant `json:"restaurant,omitempty"`
}

// OrderItem represents a line of an order
type OrderItem struct {
	ID         string    `json:"id" db:"id"`
	OrderID    string    `json:"order_id" db:"order_id"`
	MenuItemID string    `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	MenuItem   *MenuItem `json:"menu_item,omitempty"`
}

// Order represents a placed order
type Order struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"user_id" db:"user_id"`
	RestaurantID   string          `json:"restaurant_id" db:"restaurant_id"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         OrderStatus     `json:"status" db:"status"`
	PaymentType    *string         `json:"payment_type,omitempty" db:"payment_type"`
	PaymentDetails *string         `json:"payment_details,omitempty" db:"payment_details"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	Restaurant     *Restaurant     `json:"restaurant,omitempty"`
	User           *User           `json:"user,omitempty"`
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy string      `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time   `json:"timestamp" db:"changed_at"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
}

// PaymentMethod is a stored payment instrument; it is not linked to orders
type PaymentMethod struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Details   string    `json:"details" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewOrder is what the order service hands to the store for atomic creation
type NewOrder struct {
	UserID         string
	RestaurantID   string
	Items          []MenuItem
	TotalAmount    decimal.Decimal
	Status         OrderStatus
	PaymentType    *string
	PaymentDetails *string
}

// StatusChange describes a status/payment mutation plus its log entry
type StatusChange struct {
	OrderID        string
	Status         OrderStatus
	ChangedBy      string
	Notes          string
	SetPayment     bool
	PaymentType    *string
	PaymentDetails *string
}

// CalculateTotalAmount sums the prices of the given lines at quantity 1
func CalculateTotalAmount(items []MenuItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
