package models

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a billing entity. One company can back multiple
// organizations; its subscription state gates seat-consuming operations.
type Company struct {
	CompanyID uuid.UUID // UUIDv7
	Name      string
	Plan      string

	SubscriptionExpiry time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionExpired returns true if the company's subscription has lapsed.
func (c *Company) SubscriptionExpired() bool {
	return time.Now().After(c.SubscriptionExpiry)
}
