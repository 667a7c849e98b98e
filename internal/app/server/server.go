package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/identity"
	"staffleave/internal/domain/leave"
	"staffleave/internal/platform/config"
	"staffleave/internal/platform/crypto"
	"staffleave/internal/platform/db"
	"staffleave/internal/platform/metrics"
	audithandler "staffleave/internal/transport/http/handlers/audit"
	authhandler "staffleave/internal/transport/http/handlers/auth"
	leavehandler "staffleave/internal/transport/http/handlers/leave"
	userhandler "staffleave/internal/transport/http/handlers/user"
	"staffleave/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Logger *slog.Logger
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the router needs. Tests build it from fakes.
type Deps struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Collector
	DB      Pinger
	Gate    userhandler.Identity
	Login   authhandler.Authenticator
	Leave   leavehandler.Workflow
	Audit   audithandler.Lister
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// New connects to the database, prepares the schema and wires every component.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	collector := metrics.New()
	recorder := audit.NewRecorder(audit.NewStore(pool, cfg.StoreTimeout), collector, cfg.AuditTimeout, logger)

	policy, err := leave.NewPolicy(cfg.LeaveDays)
	if err != nil {
		pool.Close()
		return nil, err
	}
	leaveStore := leave.NewStore(pool, cfg.StoreTimeout)
	leaveService := leave.NewService(leaveStore, leave.NewCalculator(leaveStore, policy), recorder, logger)

	box, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}
	gate, err := identity.NewGate(identity.NewStore(pool, cfg.StoreTimeout), recorder, box, cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	router := NewRouter(Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: collector,
		DB:      pool,
		Gate:    gate,
		Login:   gate,
		Leave:   leaveService,
		Audit:   audit.NewService(audit.NewStore(pool, cfg.StoreTimeout)),
	})
	return &App{Config: cfg, DB: pool, Router: router, Logger: logger}, nil
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	var observer middleware.RouteObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}

	router := chi.NewRouter()
	if cfg.TrustProxy {
		router.Use(chimw.RealIP)
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(d.Logger, observer))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if d.DB == nil || d.DB.Ping(ctx) != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(d.Login).RegisterRoutes(r)
		userhandler.NewHandler(d.Gate).RegisterRoutes(r)
		leavehandler.NewHandler(d.Leave, d.Gate).RegisterRoutes(r)
		audithandler.NewHandler(d.Audit, d.Gate).RegisterRoutes(r)
	})

	return router
}

// NewLogger is JSON in production and text elsewhere.
func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
