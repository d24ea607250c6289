package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type UserStore struct {
	mu sync.RWMutex

	users map[uuid.UUID]*models.User // user_id -> User
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]*models.User),
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserID]; exists {
		return store.ErrUserAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.UserID] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserID]; !exists {
		return store.ErrUserNotFound
	}

	user.UpdatedAt = time.Now()

	clone := *user
	s.users[user.UserID] = &clone

	return nil
}

// UpdateTenantID sets the user's cached tenant identifier.
// Writing the same value twice leaves the record unchanged.
func (s *UserStore) UpdateTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return store.ErrUserNotFound
	}

	if user.TenantID == tenantID {
		return nil
	}

	user.TenantID = tenantID
	user.UpdatedAt = time.Now()

	return nil
}

// ListByOrg returns all users belonging to an organization.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, user := range s.users {
		if user.OrgID != nil && *user.OrgID == orgID {
			clone := *user
			result = append(result, &clone)
		}
	}

	return result, nil
}
