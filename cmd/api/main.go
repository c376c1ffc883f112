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

	"github.com/moysha/servicecatalog/internal/adapters/cache"
	"github.com/moysha/servicecatalog/internal/adapters/database"
	"github.com/moysha/servicecatalog/internal/adapters/events"
	"github.com/moysha/servicecatalog/internal/adapters/search"
	"github.com/moysha/servicecatalog/internal/api/handlers"
	"github.com/moysha/servicecatalog/internal/api/routes"
	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/redis"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/typesense"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	"github.com/moysha/servicecatalog/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
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
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
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

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(&cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	healthChecks := map[string]handlers.Pinger{"postgres": pgClient}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			// the catalog works without caching or events
			log.Warn().Err(err).Msg("Redis unavailable, running without cache and event bus")
			redisClient = nil
		} else {
			defer redisClient.Close()
			healthChecks["redis"] = redisClient
		}
	}

	var searchIndex repositories.ServiceSearchIndex
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, search falls back to PostgreSQL")
		} else {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchIndex = search.NewTypesenseAdapter(tsClient)
			healthChecks["typesense"] = tsClient
		}
	}

	// Adapters
	var serviceRepo repositories.ServiceRepository = database.NewServiceAdapter(pgClient)
	var categoryRepo repositories.CategoryRepository = database.NewCategoryAdapter(pgClient)
	responseRepo := database.NewResponseAdapter(pgClient)
	feedbackRepo := database.NewFeedbackAdapter(pgClient)
	favoriteRepo := database.NewFavoriteAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient, cfg.Cache.KeyPrefix)
		eventBus = events.NewRedisEventBus(redisClient)

		serviceRepo = database.NewCachedServiceAdapter(serviceRepo, cacheProvider,
			time.Duration(cfg.Cache.ServiceTTLSeconds)*time.Second, metrics)
		categoryRepo = database.NewCachedCategoryAdapter(categoryRepo, cacheProvider,
			time.Duration(cfg.Cache.CategoryTTLSeconds)*time.Second, metrics)
		log.Info().Msg("service and category adapters wrapped with caching layer")
	}

	// Services
	catalogService := services.NewServiceCatalogService(pgClient, serviceRepo, userRepo, categoryRepo, searchIndex, eventBus, metrics)
	responseService := services.NewResponseService(pgClient, responseRepo, serviceRepo, userRepo)
	feedbackService := services.NewFeedbackService(pgClient, feedbackRepo, serviceRepo, userRepo)
	favoriteService := services.NewFavoriteService(pgClient, favoriteRepo, serviceRepo, userRepo)
	categoryService := services.NewCategoryService(pgClient, categoryRepo, serviceRepo, eventBus)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		}

		warmingService := services.NewCacheWarmingService(serviceRepo, categoryRepo)
		go warmingService.StartPeriodicWarming(ctx, time.Duration(cfg.Cache.WarmIntervalSeconds)*time.Second)
	}

	// Handlers
	paging := handlers.NewPaging(cfg.Pagination)
	router := routes.NewRouter(
		handlers.NewServiceHandler(catalogService, paging),
		handlers.NewResponseHandler(responseService, paging),
		handlers.NewFeedbackHandler(feedbackService, paging, cacheProvider),
		handlers.NewFavoriteHandler(favoriteService, paging),
		handlers.NewCategoryHandler(categoryService),
		handlers.NewHealthHandler(healthChecks),
		routes.Options{
			Services:       serviceRepo,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Metrics:        metrics,
		},
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
