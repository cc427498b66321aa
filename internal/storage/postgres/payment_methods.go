package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

func scanPaymentMethod(row pgx.Row) (*models.PaymentMethod, error) {
	var p models.PaymentMethod
	if err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.Details, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListPaymentMethods returns the payment methods owned by userID
func (s *Store) ListPaymentMethods(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	rows, err := s.db.Query(ctx, database.ListPaymentMethodsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []models.PaymentMethod{}
	for rows.Next() {
		p, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, *p)
	}
	return methods, rows.Err()
}

// CreatePaymentMethod stores a new payment method for userID
func (s *Store) CreatePaymentMethod(ctx context.Context, userID, methodType, details string) (*models.PaymentMethod, error) {
	p, err := scanPaymentMethod(s.db.QueryRow(ctx, database.InsertPaymentMethodSQL,
		uuid.NewString(), userID, methodType, details))
	if err != nil {
		return nil, fmt.Errorf("insert payment method: %w", err)
	}
	return p, nil
}

// UpdatePaymentMethod overwrites type and details or returns
// models.ErrNotFound
func (s *Store) UpdatePaymentMethod(ctx context.Context, id, methodType, details string) (*models.PaymentMethod, error) {
	p, err := scanPaymentMethod(s.db.QueryRow(ctx, database.UpdatePaymentMethodSQL, id, methodType, details))
	if err != nil {
		return nil, fmt.Errorf("update payment method %s: %w", id, err)
	}
	return p, nil
}
