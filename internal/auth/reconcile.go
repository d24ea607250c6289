package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
)

// ReconcileTenantID repairs tenant drift: if the user's cached tenant
// identifier differs from the organization's canonical one, the user record
// is corrected and persisted. The organization's value always wins; the user
// copy is never written back up.
//
// The repair is idempotent - it writes the organization's canonical value,
// so concurrent requests racing to repair the same user converge on the same
// state without locking.
func ReconcileTenantID(ctx context.Context, users store.UserStore, user *models.User, org *models.Organization) error {
	if org.TenantID == "" || user.TenantID == org.TenantID {
		return nil
	}

	log.Info().
		Str("user_id", user.UserID.String()).
		Str("stale_tenant_id", user.TenantID).
		Str("tenant_id", org.TenantID).
		Msg("repairing tenant drift")

	if err := users.UpdateTenantID(ctx, user.UserID, org.TenantID); err != nil {
		return fmt.Errorf("failed to repair tenant drift for user %s: %w", user.UserID, err)
	}

	user.TenantID = org.TenantID

	return nil
}
