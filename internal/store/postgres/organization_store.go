package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			org_id, name, is_active, tenant_id, company_id, user_count, max_users, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.IsActive,
		org.TenantID,
		org.CompanyID,
		org.UserCount,
		org.MaxUsers,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("tenant_id", org.TenantID).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `
		SELECT org_id, name, is_active, tenant_id, company_id, user_count, max_users, created_at, updated_at
		FROM organizations
		WHERE org_id = $1
	`

	var org models.Organization
	err := s.pool.QueryRow(ctx, query, orgID).Scan(
		&org.OrgID,
		&org.Name,
		&org.IsActive,
		&org.TenantID,
		&org.CompanyID,
		&org.UserCount,
		&org.MaxUsers,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return &org, nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()

	query := `
		UPDATE organizations SET
			name = $2,
			is_active = $3,
			tenant_id = $4,
			company_id = $5,
			user_count = $6,
			max_users = $7,
			updated_at = $8
		WHERE org_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.IsActive,
		org.TenantID,
		org.CompanyID,
		org.UserCount,
		org.MaxUsers,
		org.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}

// IncrementUserCount adjusts the organization's seat count atomically.
func (s *OrganizationStore) IncrementUserCount(ctx context.Context, orgID uuid.UUID, delta int) error {
	query := `
		UPDATE organizations SET
			user_count = user_count + $2,
			updated_at = now()
		WHERE org_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, orgID, delta)
	if err != nil {
		return fmt.Errorf("failed to update organization user count: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}
