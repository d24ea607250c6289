package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// ErrResourceNotFound is returned by a ResourceFinder when no resource exists
// for the given ID.
var ErrResourceNotFound = errors.New("resource not found")

// Resource is anything the resource gate can check tenant ownership of.
type Resource interface {
	// ResourceTenantID returns the tenant the resource belongs to.
	// Empty for legacy records.
	ResourceTenantID() string
}

// ResourceFinder is the capability the calling route hands to the resource
// gate. Routes pass the finder for the collection they serve rather than
// stashing a data-access object on the request.
type ResourceFinder interface {
	// FindResource loads the resource by ID.
	// Returns ErrResourceNotFound if no such resource exists.
	FindResource(ctx context.Context, id uuid.UUID) (Resource, error)
}

// RequireTenantResource returns middleware that verifies the resource named
// by the route's {id} path segment belongs to the caller's tenant. On success
// the loaded resource is attached to the context so the handler doesn't fetch
// it twice. Legacy requests pass through without the check.
func (p *Pipeline) RequireTenantResource(finder ResourceFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tc := TenantFromContext(ctx)
			if tc == nil {
				p.deny(w, StageResourceGate, Unauthenticated("Authentication required"))
				return
			}

			if tc.IsLegacyUser {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(r.PathValue("id"))
			if err != nil {
				p.deny(w, StageResourceGate, NotFound("Resource not found"))
				return
			}

			res, err := finder.FindResource(ctx, id)
			if err != nil {
				if errors.Is(err, ErrResourceNotFound) {
					p.deny(w, StageResourceGate, NotFound("Resource not found"))
					return
				}
				p.deny(w, StageResourceGate, ServerError("Server error", err))
				return
			}

			if res.ResourceTenantID() != tc.TenantID {
				p.deny(w, StageResourceGate, Forbidden("Access denied: Resource belongs to different tenant"))
				return
			}

			p.metrics.IncAllowed(StageResourceGate)
			next.ServeHTTP(w, r.WithContext(WithResource(ctx, res)))
		})
	}
}
