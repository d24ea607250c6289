package auth

import (
	"context"

	"github.com/mindleap/mindleap/internal/models"
)

// TenantContext is the per-request result of the tenant pipeline. It is an
// immutable value threaded through context.Context; stages that add to it
// (e.g. the resource gate) attach a copy rather than mutating in place.
//
// IsLegacyUser and IsMultiTenant are mutually exclusive: legacy users have no
// organization and bypass tenant scoping entirely.
type TenantContext struct {
	User          *models.User
	Organization  *models.Organization
	TenantID      string
	IsLegacyUser  bool
	IsMultiTenant bool

	// Resource is populated by the resource gate so handlers don't need a
	// second fetch.
	Resource Resource
}

type contextKey int

const tenantContextKey contextKey = iota

// WithTenantContext returns a context carrying the tenant pipeline result.
func WithTenantContext(ctx context.Context, tc *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tc)
}

// TenantFromContext extracts the tenant pipeline result from the context.
// Returns nil if the request did not pass through the tenant middleware.
func TenantFromContext(ctx context.Context) *TenantContext {
	tc, _ := ctx.Value(tenantContextKey).(*TenantContext)
	return tc
}

// WithResource returns a context whose tenant context carries the gated
// resource. The original TenantContext value is left untouched.
func WithResource(ctx context.Context, res Resource) context.Context {
	tc := TenantFromContext(ctx)
	if tc == nil {
		return ctx
	}

	clone := *tc
	clone.Resource = res
	return WithTenantContext(ctx, &clone)
}

// ResourceFromContext extracts the resource attached by the resource gate.
// Returns nil if the gate did not run for this request.
func ResourceFromContext(ctx context.Context) Resource {
	tc := TenantFromContext(ctx)
	if tc == nil {
		return nil
	}
	return tc.Resource
}
