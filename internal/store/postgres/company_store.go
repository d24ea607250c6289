package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// CompanyStore implements store.CompanyStore using PostgreSQL.
type CompanyStore struct {
	pool *pgxpool.Pool
}

// NewCompanyStore creates a new PostgreSQL-backed company store.
// It shares the connection pool with other stores.
func NewCompanyStore(pool *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{
		pool: pool,
	}
}

// Create creates a new company in the database.
func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (
			company_id, name, plan, subscription_expiry, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.Plan,
		company.SubscriptionExpiry,
		company.CreatedAt,
		company.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrCompanyAlreadyExists
		}
		return fmt.Errorf("failed to create company: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a company by ID.
func (s *CompanyStore) Get(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	query := `
		SELECT company_id, name, plan, subscription_expiry, created_at, updated_at
		FROM companies
		WHERE company_id = $1
	`

	var company models.Company
	err := s.pool.QueryRow(ctx, query, companyID).Scan(
		&company.CompanyID,
		&company.Name,
		&company.Plan,
		&company.SubscriptionExpiry,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", mapPostgresError(err))
	}

	return &company, nil
}

// Update updates an existing company.
func (s *CompanyStore) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now()

	query := `
		UPDATE companies SET
			name = $2,
			plan = $3,
			subscription_expiry = $4,
			updated_at = $5
		WHERE company_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.Plan,
		company.SubscriptionExpiry,
		company.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update company: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrCompanyNotFound
	}

	return nil
}
