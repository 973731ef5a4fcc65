package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/cache"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/database"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/events"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/memory"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/providers/positioning"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/handlers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/middleware"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/routes"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/redis"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/observability"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/config"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/secrets"
)

const memoryCacheSize = 10000

type repos struct {
	stores  repositories.StoreRepository
	items   repositories.ItemRepository
	reports repositories.ReportRepository
	flags   repositories.FlagRepository
	close   func()
}

func main() {
	if result, err := secrets.Apply(context.Background(), secrets.ConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("failed to load secrets from Vault")
	} else if result.Enabled {
		log.Info().Str("path", result.Path).Int("loaded", result.Loaded).Int("skipped", result.Skipped).Msg("applied Vault secrets")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Redis is optional: without it caching, rate limiting and events stay in process.
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache and event bus")
		cacheProvider = cache.NewMemoryAdapter(memoryCacheSize)
		eventBus = events.NewMemoryEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}()

	r, err := openRepositories(ctx, cfg, cacheProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer r.close()

	positionSource := newPositionSource(cfg.Positioning, cacheProvider)

	locationDefaults := services.LocationOptions{
		EnableHighAccuracy: cfg.Positioning.EnableHighAccuracy,
		Timeout:            cfg.Positioning.Timeout,
		MaxCachedAge:       cfg.Positioning.MaxCachedAge,
	}
	locationService := services.NewLocationService(positionSource, locationDefaults)
	proximityService := services.NewProximityService(r.stores, r.items)

	reportService := services.NewReportService(r.reports, r.items, r.flags, services.FlagPolicy{MinNegative: cfg.Reports.FlagMinNegative})
	reportService.SetCache(cacheProvider, cfg.Reports.StatsCacheTTL)
	reportService.SetEventBus(eventBus)

	verificationService := services.NewVerificationService(r.items, services.VerificationPolicy{
		ReviewThreshold: cfg.Verification.ReviewThreshold,
		MaxAge:          cfg.Verification.MaxAge,
	})
	verificationService.SetEventBus(eventBus)
	verificationService.SetBatchConcurrency(cfg.Verification.BatchConcurrency)

	router := routes.NewRouter(
		handlers.NewLocationHandler(locationService, locationDefaults, metrics),
		handlers.NewProximityHandler(proximityService),
		handlers.NewReportHandler(reportService, cacheProvider, handlers.ReportLimits{
			RateLimit:   cfg.Reports.RateLimit,
			RateWindow:  cfg.Reports.RateWindow,
			DedupWindow: cfg.Reports.DedupWindow,
		}, metrics),
		handlers.NewVerificationHandler(verificationService),
		middleware.NewCacheMiddleware(cacheProvider, middleware.DefaultCacheRules()),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second + cfg.Positioning.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("storage", cfg.Storage.Driver).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, cacheProvider providers.CacheProvider) (*repos, error) {
	if cfg.Storage.Driver == "memory" {
		db := memory.NewDB()
		if cfg.Storage.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Storage.SeedFile)
			if err != nil {
				return nil, err
			}
			if err := seed.Apply(db, time.Now().UTC()); err != nil {
				return nil, fmt.Errorf("apply seed: %w", err)
			}
			log.Info().Str("file", cfg.Storage.SeedFile).Int("stores", len(seed.Stores)).Msg("seeded in-memory store")
		}
		return &repos{
			stores:  memory.NewStoreRepository(db),
			items:   memory.NewItemRepository(db),
			reports: memory.NewReportRepository(db),
			flags:   memory.NewFlagRepository(db),
			close:   func() {},
		}, nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.Database).Msg("PostgreSQL client initialized")

	return &repos{
		stores:  database.NewCachedStoreAdapter(database.NewStoreAdapter(pgClient), cacheProvider),
		items:   database.NewItemAdapter(pgClient),
		reports: database.NewReportAdapter(pgClient),
		flags:   database.NewFlagAdapter(pgClient),
		close: func() {
			if err := pgClient.Close(); err != nil {
				log.Error().Err(err).Msg("error closing PostgreSQL client")
			}
		},
	}, nil
}

func newPositionSource(cfg config.PositioningConfig, cacheProvider providers.CacheProvider) providers.PositionSource {
	switch cfg.Provider {
	case "google":
		if cfg.APIKey == "" {
			log.Warn().Msg("POSITIONING_API_KEY is not set; using mock position source")
			return positioning.NewMockPositionSource(cfg.MockLatitude, cfg.MockLongitude)
		}
		return positioning.NewGooglePositionSource(cfg.APIKey, cacheProvider, cfg.WatchInterval)
	case "none":
		log.Info().Msg("positioning disabled")
		return nil
	default:
		return positioning.NewMockPositionSource(cfg.MockLatitude, cfg.MockLongitude)
	}
}
