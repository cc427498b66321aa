// Package paymentmethod implements the stored payment instrument registry.
// Payment methods are not linked to orders.
package paymentmethod

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
)

// Store is the record store surface the registry needs
type Store interface {
	ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, userID, methodType, details string) (*models.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id, methodType, details string) (*models.PaymentMethod, error)
}

// Service keeps the payment methods a caller has on file. Writes are
// reserved for admins.
type Service struct {
	store  Store
	authz  *policy.Authorizer
	logger *logger.Logger
}

// NewService creates a new payment method service
func NewService(store Store, authz *policy.Authorizer, log *logger.Logger) *Service {
	return &Service{store: store, authz: authz, logger: log}
}

// List returns the caller's own payment methods
func (s *Service) List(ctx context.Context, caller *models.User) ([]models.PaymentMethod, error) {
	if caller == nil {
		return nil, policy.ErrAuthenticationRequired
	}

	methods, err := s.store.ListPaymentMethods(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

// Create registers a payment method owned by the caller
func (s *Service) Create(ctx context.Context, caller *models.User, req *models.PaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}

	method, err := s.store.CreatePaymentMethod(ctx, caller.ID, req.Type, req.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	s.logger.Info("payment_method_created", "Payment method created", logger.RequestID(ctx), map[string]interface{}{
		"payment_method_id": method.ID,
		"type":              method.Type,
		"user_id":           caller.ID,
	})
	return method, nil
}

// Update overwrites type and details of any payment method, whoever owns it
func (s *Service) Update(ctx context.Context, caller *models.User, id string, req *models.PaymentMethodRequest) (*models.PaymentMethod, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}

	method, err := s.store.UpdatePaymentMethod(ctx, id, req.Type, req.Details)
	if errors.Is(err, models.ErrNotFound) {
		return nil, policy.NotFound("payment method", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update payment method: %w", err)
	}

	s.logger.Info("payment_method_updated", "Payment method updated", logger.RequestID(ctx), map[string]interface{}{
		"payment_method_id": method.ID,
		"owner_id":          method.UserID,
		"user_id":           caller.ID,
	})
	return method, nil
}

func (s *Service) authorize(caller *models.User) error {
	if caller == nil {
		return policy.ErrAuthenticationRequired
	}
	return s.authz.Authorize(policy.ActionPaymentMethodWrite, caller, caller.Region)
}
