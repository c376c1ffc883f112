package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moysha/servicecatalog/internal/adapters/database"
	"github.com/moysha/servicecatalog/internal/adapters/events"
	"github.com/moysha/servicecatalog/internal/adapters/search"
	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/redis"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/typesense"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	"github.com/moysha/servicecatalog/pkg/config"
)

func main() {
	var reset, follow bool
	var intervalFlag string
	var workers int
	flag.BoolVar(&reset, "reset", false, "drop the Typesense collection before reindexing")
	flag.BoolVar(&follow, "follow", false, "after reindexing, keep the index in step with catalog events")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&workers, "workers", 4, "number of concurrent index writers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}
	if follow && interval > 0 {
		log.Fatal().Msg("-follow and -interval are mutually exclusive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Typesense client")
	}

	var eventBus providers.EventBus
	if follow {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("-follow needs Redis for catalog events")
		}
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
	}

	indexer := services.NewSearchIndexService(
		database.NewServiceAdapter(pgClient),
		search.NewTypesenseAdapter(tsClient),
		eventBus,
		workers,
	)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", tsClient.Collection()).Msg("dropping collection before reindex")
		if err := tsClient.DropSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to drop collection")
		}
	}

	for {
		if err := indexOnce(ctx, tsClient, indexer); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if follow {
			log.Info().Msg("following catalog events")
			if err := indexer.Follow(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("index follower stopped")
			}
			return
		}

		if interval <= 0 {
			return
		}

		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")
		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, tsClient *typesense.Client, indexer *services.SearchIndexService) error {
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	start := time.Now()
	summary, err := indexer.Reindex(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("processed", summary.TotalProcessed).
		Int("indexed", summary.SuccessCount).
		Int("failed", summary.FailureCount).
		Dur("elapsed", time.Since(start)).
		Msg("reindex finished")
	return nil
}
