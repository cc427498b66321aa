// Package api exposes the ordering platform over HTTP/JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/metrics"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/account"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/cart"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/catalog"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/identity"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/order"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/paymentmethod"
)

// Pinger reports whether the record store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the domain services served by the API
type Services struct {
	Identity       *identity.Resolver
	Accounts       *account.Service
	Catalog        *catalog.Service
	Cart           *cart.Service
	Orders         *order.Service
	PaymentMethods *paymentmethod.Service
}

// Options tunes the HTTP layer
type Options struct {
	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int
}

// Handler handles HTTP requests for the ordering platform
type Handler struct {
	identity       *identity.Resolver
	accounts       *account.Service
	catalog        *catalog.Service
	cart           *cart.Service
	orders         *order.Service
	paymentMethods *paymentmethod.Service

	store          Pinger
	limiter        *RateLimiter
	requestTimeout time.Duration
	logger         *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(services Services, store Pinger, opts Options, log *logger.Logger) *Handler {
	return &Handler{
		identity:       services.Identity,
		accounts:       services.Accounts,
		catalog:        services.Catalog,
		cart:           services.Cart,
		orders:         services.Orders,
		paymentMethods: services.PaymentMethods,
		store:          store,
		limiter:        NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log),
		requestTimeout: opts.RequestTimeout,
		logger:         log,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	r.Handle("/login", h.endpoint(h.Login)).Methods(http.MethodPost)
	r.Handle("/me", h.endpoint(h.Me)).Methods(http.MethodGet)
	r.Handle("/users", h.endpoint(h.ListUsers)).Methods(http.MethodGet)
	r.Handle("/users/{id}", h.endpoint(h.GetUser)).Methods(http.MethodGet)

	r.Handle("/restaurants", h.endpoint(h.ListRestaurants)).Methods(http.MethodGet)
	r.Handle("/restaurants/{id}", h.endpoint(h.GetRestaurant)).Methods(http.MethodGet)

	r.Handle("/cart", h.endpoint(h.ListCart)).Methods(http.MethodGet)
	r.Handle("/cart", h.endpoint(h.ClearCart)).Methods(http.MethodDelete)
	r.Handle("/cart/items", h.endpoint(h.AddCartItem)).Methods(http.MethodPost)
	r.Handle("/cart/items/{id}", h.endpoint(h.RemoveCartItem)).Methods(http.MethodDelete)

	r.Handle("/orders", h.endpoint(h.ListOrders)).Methods(http.MethodGet)
	r.Handle("/orders", h.endpoint(h.CreateOrder)).Methods(http.MethodPost)
	r.Handle("/orders/{id}/payment", h.endpoint(h.UpdateOrderPayment)).Methods(http.MethodPatch)
	r.Handle("/orders/{id}/status", h.endpoint(h.UpdateOrderStatus)).Methods(http.MethodPatch)
	r.Handle("/orders/{id}/history", h.endpoint(h.GetOrderHistory)).Methods(http.MethodGet)

	r.Handle("/payment-methods", h.endpoint(h.ListPaymentMethods)).Methods(http.MethodGet)
	r.Handle("/payment-methods", h.endpoint(h.CreatePaymentMethod)).Methods(http.MethodPost)
	r.Handle("/payment-methods/{id}", h.endpoint(h.UpdatePaymentMethod)).Methods(http.MethodPut)

	return withRequestID(h.withLogging(metrics.InstrumentHandler(r)))
}

// endpoint wraps a domain handler with caller resolution, rate limiting
// and the request timeout
func (h *Handler) endpoint(next http.HandlerFunc) http.Handler {
	return h.withIdentity(h.limiter.Handler(h.withTimeout(next)))
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := true
	if err := h.store.Ping(ctx); err != nil {
		healthy = false
		h.logger.Error("health_check_failed", "Record store unreachable", logger.RequestID(r.Context()), err, nil)
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "savor-api",
		"healthy":   healthy,
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, r, statusCode, response)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeErrorResponse(w, http.StatusNotFound, "Endpoint not found", logger.RequestID(r.Context()))
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", logger.RequestID(r.Context()))
}
