package auth

import (
	"errors"
	"net/http"

	"github.com/mindleap/mindleap/internal/store"
)

// RequireSubscription returns middleware gating seat-consuming operations on
// the organization's billing state: an expired company subscription or an
// exhausted seat allowance rejects the request before the handler runs.
// Legacy requests and organizations without a billing company skip the
// subscription check; the seat check still applies to every organization.
func (p *Pipeline) RequireSubscription() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tc := TenantFromContext(ctx)
			if tc == nil {
				p.deny(w, StageSubscription, Unauthenticated("Authentication required"))
				return
			}

			if tc.IsLegacyUser {
				next.ServeHTTP(w, r)
				return
			}

			org := tc.Organization

			if org.CompanyID != nil {
				company, err := p.companies.Get(ctx, *org.CompanyID)
				if err != nil && !errors.Is(err, store.ErrCompanyNotFound) {
					p.deny(w, StageSubscription, ServerError("Server error", err))
					return
				}

				if company != nil && company.SubscriptionExpired() {
					p.deny(w, StageSubscription, Forbidden("Subscription expired. Please renew your subscription to continue."))
					return
				}
			}

			if !org.HasSeatsAvailable() {
				p.deny(w, StageSubscription, Forbidden("User limit reached. Please upgrade your plan to add more users."))
				return
			}

			p.metrics.IncAllowed(StageSubscription)
			next.ServeHTTP(w, r)
		})
	}
}
