// Package postgres implements the record store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// Store is the PostgreSQL record store
type Store struct {
	db *database.DB
}

// New creates a Store on top of an open pool
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Region, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUser returns the user with the given id or models.ErrNotFound
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, database.GetUserByIDSQL, id))
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user, oldest first
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, database.ListUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpsertUserByEmail creates the user or overwrites role and region of the
// user that already owns the email
func (s *Store) UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	u, err := scanUser(s.db.QueryRow(ctx, database.UpsertUserByEmailSQL,
		id, user.Name, user.Email, user.Role, user.Region))
	if err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", user.Email, err)
	}
	return u, nil
}

// SeedUser inserts or refreshes a user with a fixed id
func (s *Store) SeedUser(ctx context.Context, user *models.User) error {
	if err := s.db.Exec(ctx, database.SeedUserSQL, user.ID, user.Name, user.Email, user.Role, user.Region); err != nil {
		return fmt.Errorf("seed user %s: %w", user.ID, err)
	}
	return nil
}
