package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant-owning entity (a school, district or
// company account). Each organization owns exactly one tenant, identified by
// TenantID, and every non-legacy user belongs to exactly one organization.
type Organization struct {
	OrgID    uuid.UUID // UUIDv7
	Name     string
	IsActive bool

	// TenantID is the canonical tenant identifier. User records cache a
	// copy; when the two diverge this value is authoritative.
	TenantID string

	// CompanyID links to the billing entity, if any.
	CompanyID *uuid.UUID

	// Seat accounting.
	UserCount int
	MaxUsers  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSeatsAvailable returns true if the organization can provision another user.
func (o *Organization) HasSeatsAvailable() bool {
	return o.UserCount < o.MaxUsers
}
