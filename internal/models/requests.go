package models

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Region Region `json:"region"`
}

// AddCartItemRequest is the body of POST /cart/items. Quantity defaults to 1.
type AddCartItemRequest struct {
	MenuItemID   string `json:"menu_item_id"`
	RestaurantID string `json:"restaurant_id"`
	Quantity     *int   `json:"quantity,omitempty"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	RestaurantID   string   `json:"restaurant_id"`
	ItemIDs        []string `json:"item_ids"`
	PaymentType    *string  `json:"payment_type,omitempty"`
	PaymentDetails *string  `json:"payment_details,omitempty"`
}

// UpdatePaymentRequest is the body of PATCH /orders/{id}/payment
type UpdatePaymentRequest struct {
	PaymentType    string  `json:"payment_type"`
	PaymentDetails *string `json:"payment_details,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /orders/{id}/status
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// PaymentMethodRequest is the body of POST /payment-methods and
// PUT /payment-methods/{id}
type PaymentMethodRequest struct {
	Type    string `json:"type"`
	Details string `json:"details"`
}

// ClearCartResult reports how many cart rows a clear removed
type ClearCartResult struct {
	Deleted int64 `json:"deleted"`
}
