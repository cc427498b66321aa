package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/validation"
)

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidateLoginRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	user, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "login_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

// Me handles GET /me; anonymous callers get null
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, CallerFrom(r.Context()))
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, "list_users_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "get_user_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

// ListRestaurants handles GET /restaurants
func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.catalog.ListRestaurants(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, "list_restaurants_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, restaurants)
}

// GetRestaurant handles GET /restaurants/{id}
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.catalog.GetRestaurant(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "get_restaurant_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, restaurant)
}

// ListCart handles GET /cart
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.List(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, "list_cart_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, items)
}

// AddCartItem handles POST /cart/items
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidateAddCartItemRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	item, err := h.cart.Add(r.Context(), CallerFrom(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "add_cart_item_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, item)
}

// RemoveCartItem handles DELETE /cart/items/{id}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, "remove_cart_item_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart handles DELETE /cart?restaurant_id=
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.cart.Clear(r.Context(), CallerFrom(r.Context()), r.URL.Query().Get("restaurant_id"))
	if err != nil {
		h.writeError(w, r, "clear_cart_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.ClearCartResult{Deleted: deleted})
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, "list_orders_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, orders)
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidateCreateOrderRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	order, err := h.orders.Create(r.Context(), CallerFrom(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "order_creation_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, order)
}

// UpdateOrderPayment handles PATCH /orders/{id}/payment
func (h *Handler) UpdateOrderPayment(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidateUpdatePaymentRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	order, err := h.orders.UpdatePayment(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["id"], &req)
	if err != nil {
		h.writeError(w, r, "order_payment_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /orders/{id}/status
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidateUpdateStatusRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["id"], req.Status)
	if err != nil {
		h.writeError(w, r, "order_status_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, order)
}

// GetOrderHistory handles GET /orders/{id}/history
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orders.History(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "order_history_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, history)
}

// ListPaymentMethods handles GET /payment-methods
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.paymentMethods.List(r.Context(), CallerFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, "list_payment_methods_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, methods)
}

// CreatePaymentMethod handles POST /payment-methods
func (h *Handler) CreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidatePaymentMethodRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	method, err := h.paymentMethods.Create(r.Context(), CallerFrom(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, "payment_method_create_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, method)
}

// UpdatePaymentMethod handles PUT /payment-methods/{id}
func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}
	if err := validation.ValidatePaymentMethodRequest(&req); err != nil {
		h.writeError(w, r, "validation_failed", err)
		return
	}

	method, err := h.paymentMethods.Update(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["id"], &req)
	if err != nil {
		h.writeError(w, r, "payment_method_update_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, method)
}
