package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindleap/mindleap/internal/auth"
	"github.com/mindleap/mindleap/internal/badges"
	"github.com/mindleap/mindleap/internal/catalog"
	"github.com/mindleap/mindleap/internal/logger"
	"github.com/mindleap/mindleap/internal/server"
	"github.com/mindleap/mindleap/internal/store"
	memorystore "github.com/mindleap/mindleap/internal/store/memory"
	postgresstore "github.com/mindleap/mindleap/internal/store/postgres"
	"github.com/mindleap/mindleap/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"MINDLEAP_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"MINDLEAP_CORS_ORIGINS"`

	// Auth configuration
	JWTSecret     string `help:"HMAC secret tokens are verified against" env:"MINDLEAP_JWT_SECRET" required:""`
	SessionCookie string `help:"name of the cookie checked when no Authorization header is present" default:"mindleap_session" env:"MINDLEAP_SESSION_COOKIE"`

	// Badge service configuration
	BadgeServiceURL string `help:"base URL of the badge service; empty disables awards" default:"" env:"MINDLEAP_BADGE_SERVICE_URL"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"MINDLEAP_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"MINDLEAP_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if len(c.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes")
	}

	var (
		users     store.UserStore
		orgs      store.OrganizationStore
		companies store.CompanyStore
		progress  store.ProgressStore
	)

	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.validate(); err != nil {
			return err
		}

		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		})
		if err != nil {
			return fmt.Errorf("failed to create postgres pool: %w", err)
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		users = postgresstore.NewUserStore(pool)
		orgs = postgresstore.NewOrganizationStore(pool)
		companies = postgresstore.NewCompanyStore(pool)
		progress = postgresstore.NewProgressStore(pool)

	default:
		log.Warn().Msg("Using in-memory stores, data is lost on restart")
		users = memorystore.NewUserStore()
		orgs = memorystore.NewOrganizationStore()
		companies = memorystore.NewCompanyStore()
		progress = memorystore.NewProgressStore()
	}

	games, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load game catalog: %w", err)
	}

	pipeline := auth.NewPipeline(auth.Config{
		Secret:        []byte(c.JWTSecret),
		SessionCookie: c.SessionCookie,
		Users:         users,
		Organizations: orgs,
		Companies:     companies,
		Metrics:       telemetry.NewProm("mindleap"),
	})

	var badgeClient *badges.Client
	if c.BadgeServiceURL != "" {
		badgeClient = badges.NewClient(c.BadgeServiceURL)
	}

	srv := server.New(server.Config{
		Pipeline:      pipeline,
		Users:         users,
		Organizations: orgs,
		Progress:      progress,
		Catalog:       games,
		Badges:        badgeClient,
		CORSOrigins:   c.CORSOrigins,
		Logger:        log,
	})

	httpServer := configureHTTPServer(c.Listen, srv.Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", c.Listen).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
