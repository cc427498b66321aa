// Package memory implements the record store in process memory. It keeps
// the same semantics as the PostgreSQL store, including the atomic cart
// upsert and unique user emails, and is used for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

type orderRecord struct {
	order models.Order
	items []models.OrderItem
	seq   int64
}

type cartRecord struct {
	item models.CartItem
	seq  int64
}

type cartKey struct {
	menuItemID   string
	restaurantID string
}

// Store is an in-memory record store safe for concurrent use
type Store struct {
	mu sync.Mutex

	seq            int64
	users          map[string]*models.User
	userSeq        map[string]int64
	usersByEmail   map[string]string
	restaurants    map[string]*models.Restaurant
	menuItems      map[string]*models.MenuItem
	cart           map[string]*cartRecord
	cartByKey      map[cartKey]string
	orders         map[string]*orderRecord
	statusLog      map[string][]models.OrderStatusHistory
	paymentMethods map[string]*models.PaymentMethod
	paymentSeq     map[string]int64

	now func() time.Time
}

// New creates an empty Store
func New() *Store {
	return &Store{
		users:          make(map[string]*models.User),
		userSeq:        make(map[string]int64),
		usersByEmail:   make(map[string]string),
		restaurants:    make(map[string]*models.Restaurant),
		menuItems:      make(map[string]*models.MenuItem),
		cart:           make(map[string]*cartRecord),
		cartByKey:      make(map[cartKey]string),
		orders:         make(map[string]*orderRecord),
		statusLog:      make(map[string][]models.OrderStatusHistory),
		paymentMethods: make(map[string]*models.PaymentMethod),
		paymentSeq:     make(map[string]int64),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// GetUser returns the user with the given id or models.ErrNotFound
func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// ListUsers returns every user, oldest first
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return s.userSeq[users[i].ID] < s.userSeq[users[j].ID]
	})
	return users, nil
}

// UpsertUserByEmail creates the user or overwrites role and region of the
// user that already owns the email
func (s *Store) UpsertUserByEmail(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.usersByEmail[user.Email]; ok {
		existing := s.users[id]
		existing.Role = user.Role
		existing.Region = user.Region
		cp := *existing
		return &cp, nil
	}

	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, taken := s.users[id]; taken {
		return nil, fmt.Errorf("insert user %s: duplicate id", id)
	}

	created := &models.User{
		ID:        id,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Region:    user.Region,
		CreatedAt: s.now(),
	}
	s.users[id] = created
	s.userSeq[id] = s.next()
	s.usersByEmail[created.Email] = id

	cp := *created
	return &cp, nil
}

// SeedUser inserts or refreshes a user with a fixed id
func (s *Store) SeedUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.usersByEmail[user.Email]; ok && owner != user.ID {
		return fmt.Errorf("seed user %s: email %s already used", user.ID, user.Email)
	}

	if existing, ok := s.users[user.ID]; ok {
		delete(s.usersByEmail, existing.Email)
		existing.Name, existing.Email, existing.Role, existing.Region = user.Name, user.Email, user.Role, user.Region
		s.usersByEmail[user.Email] = user.ID
		return nil
	}

	created := *user
	created.CreatedAt = s.now()
	s.users[user.ID] = &created
	s.userSeq[user.ID] = s.next()
	s.usersByEmail[user.Email] = user.ID
	return nil
}
