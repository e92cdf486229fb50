package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	grantsservice "ensgrants/contexts/funding/grants-service"
	"ensgrants/contexts/funding/grants-service/adapters/memory"
	postgresadapter "ensgrants/contexts/funding/grants-service/adapters/postgres"
	"ensgrants/contexts/funding/grants-service/application/workers"
	"ensgrants/contexts/funding/grants-service/domain/entities"
	authorization "ensgrants/contexts/identity-access/authorization-service"
	signatureservice "ensgrants/contexts/identity-access/signature-service"
	"ensgrants/internal/platform/config"
	"ensgrants/internal/platform/db"
	"ensgrants/internal/platform/httpserver"
	"ensgrants/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 10 * time.Second

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workers.OutboxRelay
	audit        workers.EventAuditConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	return BuildAPIFromConfig(ctx, cfg, logger)
}

// BuildAPIFromConfig wires the API against Postgres, or against the
// in-memory store when no DSN is configured.
func BuildAPIFromConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	scope, err := entities.ParseSupersessionScope(cfg.SupersessionScope)
	if err != nil {
		return nil, err
	}

	authModule, err := authorization.NewModule(authorization.Dependencies{
		AdminAddresses: cfg.AdminAddresses,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("admin addresses: %w", err)
	}
	sigModule := signatureservice.NewModule(signatureservice.Dependencies{Logger: logger})
	signatures := signatureBridge{verifier: sigModule.Verifier}
	policy := policyBridge{policy: authModule.Policy}

	var (
		module grantsservice.Module
		pg     *db.Postgres
		health func(context.Context) error
	)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Warn("POSTGRES_DSN is empty, using in-memory grants store",
			"event", "bootstrap_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		module = grantsservice.NewInMemoryModule(nil, signatures, policy, scope, logger)
	} else {
		pg, err = db.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		module = grantsservice.NewModule(grantsservice.Dependencies{
			Rounds:      repo,
			Grants:      repo,
			Signatures:  signatures,
			Policy:      policy,
			Clock:       postgresadapter.SystemClock{},
			IDGenerator: postgresadapter.UUIDGenerator{},
			Scope:       scope,
			Logger:      logger,
		})
		health = pg.Ping
	}

	server := httpserver.New(module, httpserver.Options{
		Addr:          normalizeAddr(cfg.HTTPPort),
		MaxBodyBytes:  cfg.MaxBodyBytes,
		EnableSwagger: cfg.EnableSwagger,
		Health:        health,
	}, logger)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres:    pg,
		outboxRelay: grantsservice.NewOutboxRelay(repo, bus, postgresadapter.SystemClock{}, cfg.OutboxBatchSize, logger),
		audit: workers.EventAuditConsumer{
			Subscriber: bus,
			Logger:     logger,
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

// NewMemoryWorker relays the outbox of an in-memory store. It backs
// single-process runs and tests.
func NewMemoryWorker(store *memory.Store, bus *messaging.Bus, pollInterval time.Duration, logger *slog.Logger) *WorkerApp {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerApp{
		outboxRelay:  grantsservice.NewOutboxRelay(store, bus, store, 0, logger),
		audit:        workers.EventAuditConsumer{Subscriber: bus, Logger: logger},
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Handler exposes the routed HTTP handler.
func (a *APIApp) Handler() http.Handler {
	return a.server.Handler()
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.audit.Start(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	return w.outboxRelay.Run(ctx, w.pollInterval)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
