package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// ProgressStore implements store.ProgressStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type ProgressStore struct {
	mu sync.RWMutex

	records map[uuid.UUID]*models.ProgressRecord // record_id -> ProgressRecord
}

// NewProgressStore creates a new in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[uuid.UUID]*models.ProgressRecord),
	}
}

// Create stores a new progress record.
func (s *ProgressStore) Create(ctx context.Context, record *models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records[record.RecordID] = &clone

	return nil
}

// Get retrieves a progress record by ID.
func (s *ProgressStore) Get(ctx context.Context, recordID uuid.UUID) (*models.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[recordID]
	if !exists {
		return nil, store.ErrProgressNotFound
	}

	clone := *record
	return &clone, nil
}

// List returns progress records matching the filter, newest first.
func (s *ProgressStore) List(ctx context.Context, filter store.ProgressFilter) ([]*models.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.ProgressRecord
	for _, record := range s.records {
		if record.TenantID != filter.TenantID {
			continue
		}
		if filter.UserID != nil && record.UserID != *filter.UserID {
			continue
		}
		if filter.GameID != "" && record.GameID != filter.GameID {
			continue
		}
		clone := *record
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}
