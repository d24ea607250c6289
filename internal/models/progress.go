package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressRecord captures one completed game session for a user: the game
// played, the score achieved and the rewards earned. Records created by
// multi-tenant users carry the tenant identifiers stamped by the isolation
// middleware; legacy records have an empty TenantID and nil OrgID.
type ProgressRecord struct {
	RecordID uuid.UUID // UUIDv7
	UserID   uuid.UUID
	GameID   string

	Score       int
	CoinsEarned int
	XPEarned    int

	TenantID string
	OrgID    *uuid.UUID

	CreatedAt time.Time
}

// ResourceTenantID returns the tenant the record belongs to. This satisfies
// the resource gate's ownership-check capability.
func (r *ProgressRecord) ResourceTenantID() string {
	return r.TenantID
}
