// Package identity turns the opaque caller token carried by every request
// into a user record.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// UserFinder looks a user up by id
type UserFinder interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Resolver maps caller tokens to users
type Resolver struct {
	users  UserFinder
	logger *logger.Logger
}

// NewResolver creates a new Resolver
func NewResolver(users UserFinder, log *logger.Logger) *Resolver {
	return &Resolver{users: users, logger: log}
}

// Resolve returns the user identified by token. An empty or unknown token
// yields a nil user and no error; callers treat that as anonymous.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	user, err := r.users.GetUser(ctx, token)
	if errors.Is(err, models.ErrNotFound) {
		r.logger.Debug("identity_unknown", "Caller token matches no user", logger.RequestID(ctx), map[string]interface{}{
			"token": token,
		})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return user, nil
}
