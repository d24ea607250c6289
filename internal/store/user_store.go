package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore defines the interface for user storage operations.
// Users are the principals resolved from authentication tokens; the tenant
// middleware reads them on every request and may correct a stale TenantID.
type UserStore interface {
	// Create creates a new user in the store.
	// Returns ErrUserAlreadyExists if a user with the same ID already exists.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// Update updates an existing user.
	// Returns ErrUserNotFound if the user doesn't exist.
	Update(ctx context.Context, user *models.User) error

	// UpdateTenantID sets the user's cached tenant identifier.
	// This is the persistence half of tenant drift repair; writing the same
	// value twice is a no-op, making the operation idempotent under
	// concurrent requests from the same user.
	// Returns ErrUserNotFound if the user doesn't exist.
	UpdateTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error

	// ListByOrg returns all users belonging to an organization.
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.User, error)
}
