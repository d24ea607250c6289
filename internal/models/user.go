package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role for authorization decisions.
type Role string

const (
	RoleStudent       Role = "student"
	RoleParent        Role = "parent"
	RoleTeacher       Role = "teacher"
	RoleSchoolAdmin   Role = "school-admin"
	RolePlatformAdmin Role = "platform-admin"
)

// User represents a principal in the system (student, parent, teacher or admin).
// Users created before multi-tenancy have no OrgID and operate in a single
// implicit global tenant; they are referred to as legacy users.
type User struct {
	UserID uuid.UUID // UUIDv7
	Name   string
	Email  string
	Role   Role

	// Multi-tenancy. OrgID is nil for legacy users. TenantID is a cached
	// copy of the organization's canonical tenant identifier and may drift;
	// the organization's value always wins.
	OrgID    *uuid.UUID
	TenantID string

	// Game progression totals, maintained by external reward flows.
	Coins int
	XP    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLegacy returns true if the user predates multi-tenancy.
func (u *User) IsLegacy() bool {
	return u.OrgID == nil
}
