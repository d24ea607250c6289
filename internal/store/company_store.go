package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
)

// Sentinel errors for company store operations
var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company already exists")
)

// CompanyStore defines the interface for billing-entity storage operations.
// The subscription gate reads companies to decide whether seat-consuming
// operations may proceed.
type CompanyStore interface {
	// Create creates a new company in the store.
	// Returns ErrCompanyAlreadyExists if a company with the same ID already exists.
	Create(ctx context.Context, company *models.Company) error

	// Get retrieves a company by ID.
	// Returns ErrCompanyNotFound if the company doesn't exist.
	Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error)

	// Update updates an existing company.
	// Returns ErrCompanyNotFound if the company doesn't exist.
	Update(ctx context.Context, company *models.Company) error
}
