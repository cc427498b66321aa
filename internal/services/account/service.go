// Package account implements the demo login and user lookups.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
)

// EmailDomain is the domain of every derived demo email
const EmailDomain = "savor.local"

var whitespace = regexp.MustCompile(`\s+`)

// Store is the record store surface the account service needs
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpsertUserByEmail(ctx context.Context, user *models.User) (*models.User, error)
}

// Service handles demo login and user queries
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a new account service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// DemoEmail derives the identity key of a demo login from name and role,
// e.g. "Ada Lovelace" as MANAGER becomes ada.lovelace.manager@savor.local
func DemoEmail(name string, role models.Role) string {
	local := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), ".")
	return fmt.Sprintf("%s.%s@%s", local, strings.ToLower(string(role)), EmailDomain)
}

// Login creates the user for the derived email or overwrites the role and
// region of the existing one
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	email := DemoEmail(req.Name, req.Role)

	user, err := s.store.UpsertUserByEmail(ctx, &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  email,
		Role:   req.Role,
		Region: req.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log in %s: %w", email, err)
	}

	s.logger.Info("user_logged_in", "Demo login", logger.RequestID(ctx), map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
		"region":  user.Region,
	})
	return user, nil
}

// GetUser returns one user by id
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, policy.NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every user
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}
