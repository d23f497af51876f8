package main

import (
	"context"
	"fmt"

	"github.com/nittany-hub/course-planner/config"
	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/catalog"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/schedule"
	"github.com/nittany-hub/course-planner/internal/domain/student"
	"github.com/nittany-hub/course-planner/internal/infrastructure/persistence/postgres"
	"github.com/nittany-hub/course-planner/internal/infrastructure/persistence/sqlite"
	rulesloader "github.com/nittany-hub/course-planner/internal/infrastructure/rules"
	"github.com/nittany-hub/course-planner/internal/interface/http/handlers"
	"github.com/nittany-hub/course-planner/pkg/logger"
	"github.com/nittany-hub/course-planner/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOTSTRAP
// Shared wiring for every subcommand: configuration, logging, the selected
// persistence backend, and the decision environment.
// ══════════════════════════════════════════════════════════════════════════════

// storeSet bundles the repository implementations of the selected backend.
// Both backends satisfy the same domain interfaces, so everything above
// this point is backend-agnostic.
type storeSet struct {
	Catalog  catalog.Repository
	Snapshot catalog.SnapshotSource
	Student  student.Repository
	Program  program.Repository
	Plan     plan.Repository
	Schedule schedule.Repository

	// Checker feeds the health endpoint.
	Checker handlers.StoreChecker

	closeFn func()
}

// Close releases the backend's connections.
func (s *storeSet) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// setupLogger builds the process logger from observability settings.
func setupLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
}

// openStores connects the configured persistence backend and, for
// PostgreSQL, brings the schema up to date.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storeSet, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreSQLite:
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storeSet, error) {
	log.Info("connecting to database...")

	// The database container may come up after the planner does.
	var conn *postgres.Connection
	connect := func(ctx context.Context) error {
		c, err := postgres.NewConnectionFromURL(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		if err := c.Ping(ctx); err != nil {
			c.Close()
			return err
		}
		conn = c
		return nil
	}

	retrier := retry.ConnectRetrier()
	err := retrier.Do(ctx, connect)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	catalogRepo := postgres.NewCatalogRepository(conn)
	return &storeSet{
		Catalog:  catalogRepo,
		Snapshot: catalogRepo,
		Student:  postgres.NewStudentRepository(conn),
		Program:  postgres.NewProgramRepository(conn),
		Plan:     postgres.NewPlanRepository(conn),
		Schedule: postgres.NewScheduleRepository(conn),
		Checker:  conn,
		closeFn: func() {
			log.Info("closing database connection...")
			conn.Close()
		},
	}, nil
}

func openSQLite(cfg *config.Config, log *logger.Logger) (*storeSet, error) {
	log.Info("opening embedded store", logger.String("path", cfg.Store.SQLitePath))
	store, err := sqlite.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open embedded store: %w", err)
	}

	return &storeSet{
		Catalog:  store,
		Snapshot: store,
		Student:  store,
		Program:  store,
		Plan:     store,
		Schedule: store,
		Checker:  store,
		closeFn: func() {
			log.Info("closing embedded store...")
			_ = store.Close()
		},
	}, nil
}

// buildEnvironment loads the rule tables and validates them into the shared
// decision environment. An empty rules path means compiled-in defaults.
func buildEnvironment(cfg *config.Config, stores *storeSet, log *logger.Logger) (*query.Environment, error) {
	if cfg.Rules.Path == "" {
		return query.NewEnvironment(stores.Snapshot, nil, nil, log)
	}

	rs, seq, err := rulesloader.Load(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules file: %w", err)
	}
	log.Info("rules file loaded", logger.String("path", cfg.Rules.Path))
	return query.NewEnvironment(stores.Snapshot, rs, seq, log)
}
