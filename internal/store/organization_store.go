package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations own tenants; their TenantID is the canonical value that user
// records are reconciled against.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if an organization with the same ID already exists.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Update(ctx context.Context, org *models.Organization) error

	// IncrementUserCount adjusts the seat count after provisioning or
	// removing a user. delta may be negative.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	IncrementUserCount(ctx context.Context, orgID uuid.UUID, delta int) error
}
