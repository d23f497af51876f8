package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nittany-hub/course-planner/internal/application/command"
	"github.com/nittany-hub/course-planner/internal/application/eventhandler"
	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/infrastructure/ingest"
	"github.com/nittany-hub/course-planner/internal/infrastructure/messaging"
	"github.com/nittany-hub/course-planner/internal/infrastructure/persistence/redis"
	httpserver "github.com/nittany-hub/course-planner/internal/interface/http"
	"github.com/nittany-hub/course-planner/internal/interface/http/handlers"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planner HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := setupLogger(cfg)
	log.Info("starting course planner",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("store", cfg.Store.Backend),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. PERSISTENCE
	// ─────────────────────────────────────────────────────────────────────────
	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS RECOMMENDATION CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var recCache query.RecommendationCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("Redis unavailable, recommendation caching disabled", logger.Err(err))
		} else {
			defer cache.Close()
			recCache = redis.NewRecommendationCache(cache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. DECISION ENVIRONMENT AND APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	env, err := buildEnvironment(cfg, stores, log)
	if err != nil {
		return err
	}

	checkEligibility := query.NewCheckEligibilityHandler(env, stores.Plan)
	recommend := query.NewRecommendHandler(env, stores.Plan, stores.Program, recCache)
	missingPrereqs := query.NewMissingPrereqsHandler(env, stores.Plan)
	getPlan := query.NewGetPlanHandler(env, stores.Plan)
	getSchedule := query.NewGetScheduleHandler(stores.Schedule)
	findConflicts := query.NewFindConflictsHandler(env, stores.Schedule)

	signIn := command.NewSignInHandler(stores.Student, stores.Plan, log)
	addPlanned := command.NewAddPlannedCourseHandler(env, stores.Plan, bus)
	removePlanned := command.NewRemovePlannedCourseHandler(env, stores.Plan, bus)
	transcript := command.NewTranscriptHandler(env, stores.Plan, bus)
	setPrimary := command.NewSetPrimaryProgramHandler(stores.Program, stores.Student, bus, log)
	enroll := command.NewEnrollSectionHandler(stores.Schedule, bus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	if recCache != nil {
		planChanged := eventhandler.NewOnPlanChangedHandler(recCache, log)
		if err := planChanged.Subscribe(bus); err != nil {
			return fmt.Errorf("subscribe plan change handler: %w", err)
		}
		log.Info("recommendation invalidation handler registered")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("store", handlers.NewStoreCheck(stores.Checker))

	importer := ingest.NewImporter(stores.Catalog, stores.Program, stores.Schedule, log)

	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.MaxHeaderBytes = cfg.HTTP.MaxHeaderBytes
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.APIKeyHeader = cfg.HTTP.APIKeyHeader
	httpCfg.APIKeys = cfg.HTTP.APIKeys
	httpCfg.ImportDir = cfg.HTTP.ImportDir

	server := httpserver.NewServer(httpCfg, httpserver.Dependencies{
		CheckEligibilityHandler:  checkEligibility,
		RecommendHandler:         recommend,
		MissingPrereqsHandler:    missingPrereqs,
		GetPlanHandler:           getPlan,
		GetScheduleHandler:       getSchedule,
		FindConflictsHandler:     findConflicts,
		SignInHandler:            signIn,
		AddPlannedCourseHandler:  addPlanned,
		RemovePlannedHandler:     removePlanned,
		TranscriptHandler:        transcript,
		SetPrimaryProgramHandler: setPrimary,
		EnrollSectionHandler:     enroll,
		CatalogRepo:              stores.Catalog,
		ProgramRepo:              stores.Program,
		Importer:                 importer,
		Logger:                   log,
		HealthChecker:            health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", logger.String("address", server.Address()))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	log.Info("stopping HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}
