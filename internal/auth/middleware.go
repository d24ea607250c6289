package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
	"github.com/mindleap/mindleap/internal/telemetry"
)

// Pipeline stage names used in logs and metrics labels.
const (
	StageAuthenticate  = "authenticate"
	StageResolveTenant = "resolve_tenant"
	StageIsolation     = "isolation"
	StageRoleGate      = "role_gate"
	StageResourceGate  = "resource_gate"
	StageSubscription  = "subscription_gate"
)

// Config holds the dependencies for the tenant pipeline.
type Config struct {
	// Secret is the HMAC secret tokens are verified against.
	Secret []byte

	// SessionCookie is the name of the cookie checked when no
	// Authorization header is present.
	SessionCookie string

	Users         store.UserStore
	Organizations store.OrganizationStore
	Companies     store.CompanyStore

	// Metrics records per-stage allow/deny outcomes. Optional.
	Metrics telemetry.PipelineMetrics
}

// Pipeline builds the tenant-isolation middleware chain: authentication,
// tenant resolution, isolation enforcement, role gating and resource /
// subscription gating. Each stage is a terminal gate: on failure it writes
// the JSON error response and halts; downstream handlers only ever see
// requests with a fully populated TenantContext.
type Pipeline struct {
	secret     []byte
	cookieName string
	users      store.UserStore
	orgs       store.OrganizationStore
	companies  store.CompanyStore
	metrics    telemetry.PipelineMetrics
}

// NewPipeline creates a tenant pipeline from the given configuration.
func NewPipeline(cfg Config) *Pipeline {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.Noop{}
	}

	return &Pipeline{
		secret:     cfg.Secret,
		cookieName: cfg.SessionCookie,
		users:      cfg.Users,
		orgs:       cfg.Organizations,
		companies:  cfg.Companies,
		metrics:    metrics,
	}
}

// Authenticate returns the middleware for the first two pipeline stages:
// credential verification and tenant resolution. On success the request
// context carries a TenantContext; legacy users (no organization) are marked
// and exempted from tenant enforcement downstream.
func (p *Pipeline) Authenticate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := p.extractToken(r)
			if tokenString == "" {
				p.deny(w, StageAuthenticate, Unauthenticated("Authentication required"))
				return
			}

			userID, err := verifyToken(tokenString, p.secret)
			if err != nil {
				p.deny(w, StageAuthenticate, err)
				return
			}

			user, err := p.users.Get(ctx, userID)
			if err != nil {
				if errors.Is(err, store.ErrUserNotFound) {
					p.deny(w, StageAuthenticate, Unauthenticated("User not found"))
					return
				}
				// Unexpected store failure while resolving the credential
				// subject is still an authentication failure to the caller.
				log.Error().Err(err).Str("user_id", userID.String()).Msg("user lookup failed")
				p.deny(w, StageAuthenticate, Unauthenticated("Authentication failed"))
				return
			}

			tc, err := p.resolveTenant(ctx, user)
			if err != nil {
				p.deny(w, StageResolveTenant, err)
				return
			}

			p.metrics.IncAllowed(StageAuthenticate)
			ctx = WithTenantContext(ctx, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveTenant classifies the user and loads its organization. Legacy users
// (no OrgID) short-circuit with tenant enforcement disabled. For multi-tenant
// users the organization must exist and be active, and the user's cached
// tenant identifier is reconciled against the organization's canonical value
// before enforcement proceeds.
func (p *Pipeline) resolveTenant(ctx context.Context, user *models.User) (*TenantContext, error) {
	if user.IsLegacy() {
		return &TenantContext{User: user, IsLegacyUser: true}, nil
	}

	if user.TenantID == "" {
		return nil, Forbidden("Tenant information missing")
	}

	org, err := p.orgs.Get(ctx, *user.OrgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, Forbidden("Organization not found or inactive")
		}
		// Infrastructure failure, not an authorization decision.
		return nil, ServerError("Server error", err)
	}

	if !org.IsActive {
		return nil, Forbidden("Organization not found or inactive")
	}

	if err := ReconcileTenantID(ctx, p.users, user, org); err != nil {
		return nil, ServerError("Server error", err)
	}

	return &TenantContext{
		User:          user,
		Organization:  org,
		TenantID:      user.TenantID,
		IsMultiTenant: true,
	}, nil
}

// extractToken prefers the Authorization header, falling back to the
// configured session cookie.
func (p *Pipeline) extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}

	if p.cookieName == "" {
		return ""
	}

	cookie, err := r.Cookie(p.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// deny terminates the request, recording the outcome for metrics.
func (p *Pipeline) deny(w http.ResponseWriter, stage string, err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = ServerError("Server error", err)
	}

	p.metrics.IncDenied(stage, perr.Kind.String())
	WriteError(w, perr)
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
