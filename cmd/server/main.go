package main

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

	"github.com/SAP-F-2025/attempt-service/internal/analytics"
	"github.com/SAP-F-2025/attempt-service/internal/cache"
	"github.com/SAP-F-2025/attempt-service/internal/config"
	"github.com/SAP-F-2025/attempt-service/internal/handlers"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"github.com/SAP-F-2025/attempt-service/internal/repositories/memory"
	"github.com/SAP-F-2025/attempt-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/attempt-service/internal/scoring"
	"github.com/SAP-F-2025/attempt-service/internal/services"
	"github.com/SAP-F-2025/attempt-service/internal/utils"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
	"github.com/SAP-F-2025/attempt-service/pkg"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

type storage struct {
	tests    repositories.TestRepository
	attempts repositories.AttemptRepository
	seed     func(tests []models.Test) error
	close    func()
}

func run(cfg *config.Config, logger utils.Logger) error {
	slogger := utils.ToSlogLogger(logger)
	v := validator.New()

	store, err := openStorage(cfg, slogger)
	if err != nil {
		return err
	}
	defer store.close()

	if cfg.SeedFile != "" {
		tests, err := loadSeedTests(cfg.SeedFile, v)
		if err != nil {
			return err
		}
		if err := store.seed(tests); err != nil {
			return fmt.Errorf("failed to seed tests: %w", err)
		}
		logger.Info("Seeded tests", "file", cfg.SeedFile, "count", len(tests))
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	catalog := services.NewCatalogService(store.tests, slogger)
	attempts := services.NewAttemptService(
		store.attempts,
		catalog,
		scoring.NewEngine(),
		analytics.NewAggregator(analytics.Thresholds{}),
		v,
		publisher,
		slogger,
		services.AttemptServiceConfig{SubmitGrace: cfg.SubmitGrace},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	router.Use(gin.Recovery())
	handlers.NewHandlerManager(catalog, attempts, services.NewResultExporter(attempts), logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Attempt service listening", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return services.NewExpirySweeper(attempts, cfg.ExpirySweepInterval, slogger).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		tests := memory.NewTestStore()
		return &storage{
			tests:    tests,
			attempts: memory.NewAttemptStore(),
			seed:     seedMemory(tests),
			close:    func() {},
		}, nil
	case config.StorageDriverPostgres:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}

		var catalogCache cache.CacheService
		redisClient, err := pkg.NewRedisClient(cfg)
		switch {
		case err != nil:
			logger.Warn("Redis unavailable, caching tests in process", "error", err)
			catalogCache = cache.NewMemoryCache()
		case redisClient != nil:
			catalogCache = cache.NewRedisCache(redisClient, "attempt-service:", logger)
		default:
			catalogCache = cache.NewMemoryCache()
		}

		return &storage{
			tests:    postgres.NewTestPostgreSQL(db, catalogCache, cfg.CacheTTL, logger),
			attempts: postgres.NewAttemptPostgreSQL(db),
			seed:     seedPostgres(db, catalogCache),
			close: func() {
				if redisClient != nil {
					redisClient.Close()
				}
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
