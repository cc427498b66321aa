package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// ListPaymentMethods returns the payment methods owned by userID, newest
// first
func (s *Store) ListPaymentMethods(_ context.Context, userID string) ([]models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	methods := []models.PaymentMethod{}
	for _, p := range s.paymentMethods {
		if p.UserID == userID {
			methods = append(methods, *p)
		}
	}
	sort.Slice(methods, func(i, j int) bool {
		return s.paymentSeq[methods[i].ID] > s.paymentSeq[methods[j].ID]
	})
	return methods, nil
}

// CreatePaymentMethod stores a new payment method for userID
func (s *Store) CreatePaymentMethod(_ context.Context, userID, methodType, details string) (*models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, fmt.Errorf("insert payment method: user %s does not exist", userID)
	}

	p := &models.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      methodType,
		Details:   details,
		CreatedAt: s.now(),
	}
	s.paymentMethods[p.ID] = p
	s.paymentSeq[p.ID] = s.next()

	cp := *p
	return &cp, nil
}

// UpdatePaymentMethod overwrites type and details or returns
// models.ErrNotFound
func (s *Store) UpdatePaymentMethod(_ context.Context, id, methodType, details string) (*models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.paymentMethods[id]
	if !ok {
		return nil, fmt.Errorf("update payment method %s: %w", id, models.ErrNotFound)
	}
	p.Type = methodType
	p.Details = details

	cp := *p
	return &cp, nil
}
