package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// ProgressStore implements store.ProgressStore using PostgreSQL.
type ProgressStore struct {
	pool *pgxpool.Pool
}

// NewProgressStore creates a new PostgreSQL-backed progress store.
// It shares the connection pool with other stores.
func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{
		pool: pool,
	}
}

// Create stores a new progress record.
func (s *ProgressStore) Create(ctx context.Context, record *models.ProgressRecord) error {
	query := `
		INSERT INTO progress_records (
			record_id, user_id, game_id, score, coins_earned, xp_earned, tenant_id, org_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		record.RecordID,
		record.UserID,
		record.GameID,
		record.Score,
		record.CoinsEarned,
		record.XPEarned,
		record.TenantID,
		record.OrgID,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create progress record: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves a progress record by ID.
func (s *ProgressStore) Get(ctx context.Context, recordID uuid.UUID) (*models.ProgressRecord, error) {
	query := `
		SELECT record_id, user_id, game_id, score, coins_earned, xp_earned, tenant_id, org_id, created_at
		FROM progress_records
		WHERE record_id = $1
	`

	var record models.ProgressRecord
	err := s.pool.QueryRow(ctx, query, recordID).Scan(
		&record.RecordID,
		&record.UserID,
		&record.GameID,
		&record.Score,
		&record.CoinsEarned,
		&record.XPEarned,
		&record.TenantID,
		&record.OrgID,
		&record.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress record: %w", mapPostgresError(err))
	}

	return &record, nil
}

// List returns progress records matching the filter, newest first.
func (s *ProgressStore) List(ctx context.Context, filter store.ProgressFilter) ([]*models.ProgressRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT record_id, user_id, game_id, score, coins_earned, xp_earned, tenant_id, org_id, created_at
		FROM progress_records
		WHERE tenant_id = $1
	`)

	args := []any{filter.TenantID}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		sb.WriteString(" AND user_id = $" + strconv.Itoa(len(args)))
	}
	if filter.GameID != "" {
		args = append(args, filter.GameID)
		sb.WriteString(" AND game_id = $" + strconv.Itoa(len(args)))
	}

	sb.WriteString(" ORDER BY created_at DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.ProgressRecord
	for rows.Next() {
		var record models.ProgressRecord
		if err := rows.Scan(
			&record.RecordID,
			&record.UserID,
			&record.GameID,
			&record.Score,
			&record.CoinsEarned,
			&record.XPEarned,
			&record.TenantID,
			&record.OrgID,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		result = append(result, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress records: %w", err)
	}

	return result, nil
}
