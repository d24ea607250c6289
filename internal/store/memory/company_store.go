package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// CompanyStore implements store.CompanyStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type CompanyStore struct {
	mu sync.RWMutex

	companies map[uuid.UUID]*models.Company // company_id -> Company
}

// NewCompanyStore creates a new in-memory company store.
func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		companies: make(map[uuid.UUID]*models.Company),
	}
}

// Create creates a new company in memory.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[company.CompanyID]; exists {
		return store.ErrCompanyAlreadyExists
	}

	clone := *company
	s.companies[company.CompanyID] = &clone

	return nil
}

// Get retrieves a company by ID.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, exists := s.companies[companyID]
	if !exists {
		return nil, store.ErrCompanyNotFound
	}

	clone := *company
	return &clone, nil
}

// Update updates an existing company.
func (s *CompanyStore) Update(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[company.CompanyID]; !exists {
		return store.ErrCompanyNotFound
	}

	company.UpdatedAt = time.Now()

	clone := *company
	s.companies[company.CompanyID] = &clone

	return nil
}
