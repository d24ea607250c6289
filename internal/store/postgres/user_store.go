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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, name, email, role, org_id, tenant_id, coins, xp, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		string(user.Role),
		user.OrgID,
		user.TenantID,
		user.Coins,
		user.XP,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("role", string(user.Role)).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT user_id, name, email, role, org_id, tenant_id, coins, xp, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.User
	var role string
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&role,
		&user.OrgID,
		&user.TenantID,
		&user.Coins,
		&user.XP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	user.Role = models.Role(role)

	return &user, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET
			name = $2,
			email = $3,
			role = $4,
			org_id = $5,
			tenant_id = $6,
			coins = $7,
			xp = $8,
			updated_at = $9
		WHERE user_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		string(user.Role),
		user.OrgID,
		user.TenantID,
		user.Coins,
		user.XP,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// UpdateTenantID sets the user's cached tenant identifier. The write is
// idempotent; repeating it with the same value changes nothing.
func (s *UserStore) UpdateTenantID(ctx context.Context, userID uuid.UUID, tenantID string) error {
	query := `
		UPDATE users SET
			tenant_id = $2,
			updated_at = now()
		WHERE user_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, userID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to update user tenant id: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// ListByOrg returns all users belonging to an organization.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.User, error) {
	query := `
		SELECT user_id, name, email, role, org_id, tenant_id, coins, xp, created_at, updated_at
		FROM users
		WHERE org_id = $1
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var user models.User
		var role string
		if err := rows.Scan(
			&user.UserID,
			&user.Name,
			&user.Email,
			&role,
			&user.OrgID,
			&user.TenantID,
			&user.Coins,
			&user.XP,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role = models.Role(role)
		result = append(result, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return result, nil
}
