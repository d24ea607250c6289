package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mindleap/mindleap/internal/auth"
	"github.com/mindleap/mindleap/internal/badges"
	"github.com/mindleap/mindleap/internal/catalog"
	httpmiddleware "github.com/mindleap/mindleap/internal/http"
	"github.com/mindleap/mindleap/internal/models"
	"github.com/mindleap/mindleap/internal/store"
	"github.com/mindleap/mindleap/internal/telemetry"
)

// Config holds the dependencies for the API server.
type Config struct {
	Pipeline      *auth.Pipeline
	Users         store.UserStore
	Organizations store.OrganizationStore
	Progress      store.ProgressStore
	Catalog       *catalog.Catalog
	Badges        *badges.Client // optional; awards are skipped when nil

	CORSOrigins []string
	Logger      zerolog.Logger
}

// Server exposes the platform API. All /api routes run behind the tenant
// pipeline; handlers rely on the enriched context and never apply tenant
// filters themselves.
type Server struct {
	pipeline *auth.Pipeline
	users    store.UserStore
	orgs     store.OrganizationStore
	progress store.ProgressStore
	catalog  *catalog.Catalog
	badges   *badges.Client

	corsOrigins []string
	logger      zerolog.Logger
}

// New creates an API server.
func New(cfg Config) *Server {
	return &Server{
		pipeline:    cfg.Pipeline,
		users:       cfg.Users,
		orgs:        cfg.Organizations,
		progress:    cfg.Progress,
		catalog:     cfg.Catalog,
		badges:      cfg.Badges,
		corsOrigins: cfg.CORSOrigins,
		logger:      cfg.Logger,
	}
}

// Handler builds the route table with the middleware chains applied.
func (s *Server) Handler() http.Handler {
	authn := s.pipeline.Authenticate()
	scope := s.pipeline.TenantScope()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", telemetry.Handler())

	mux.Handle("GET /api/v1/games",
		chain(http.HandlerFunc(s.handleListGames), authn, scope))
	mux.Handle("GET /api/v1/progress",
		chain(http.HandlerFunc(s.handleListProgress), authn, scope))
	mux.Handle("POST /api/v1/progress",
		chain(http.HandlerFunc(s.handleCreateProgress), authn, scope))
	mux.Handle("GET /api/v1/progress/{id}",
		chain(http.HandlerFunc(s.handleGetProgress),
			authn, scope, s.pipeline.RequireTenantResource(progressFinder{s.progress})))
	mux.Handle("POST /api/v1/users",
		chain(http.HandlerFunc(s.handleProvisionUser),
			authn, scope,
			s.pipeline.RequireRole(models.RoleSchoolAdmin, models.RolePlatformAdmin),
			s.pipeline.RequireSubscription()))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)
	handler = httpmiddleware.RequestLogger(s.logger)(handler)
	handler = httpmiddleware.ClientIPMiddleware()(handler)

	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// chain applies middlewares to h, first middleware outermost.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
