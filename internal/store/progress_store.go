package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
)

// Sentinel errors for progress store operations
var (
	ErrProgressNotFound = errors.New("progress record not found")
)

// ProgressFilter narrows List queries. An empty TenantID matches only legacy
// records; handlers build filters through the isolation helpers so the tenant
// constraint is never forgotten.
type ProgressFilter struct {
	TenantID string
	UserID   *uuid.UUID
	GameID   string
	Limit    int
}

// ProgressStore defines the interface for game progress storage operations.
// Progress records are the tenant-scoped resources guarded by the resource
// gate; FindResource satisfies the gate's capability interface.
type ProgressStore interface {
	// Create stores a new progress record.
	Create(ctx context.Context, record *models.ProgressRecord) error

	// Get retrieves a progress record by ID.
	// Returns ErrProgressNotFound if the record doesn't exist.
	Get(ctx context.Context, recordID uuid.UUID) (*models.ProgressRecord, error)

	// List returns progress records matching the filter, newest first.
	List(ctx context.Context, filter ProgressFilter) ([]*models.ProgressRecord, error)
}
