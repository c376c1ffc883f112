package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
)

// WarmServiceCount is how many of the newest active listings get preloaded
const WarmServiceCount = 50

// CacheWarmingService preloads frequently read data through the read-through
// repositories, so the first requests after a deploy hit a warm cache.
type CacheWarmingService struct {
	services   repositories.ServiceRepository
	categories repositories.CategoryRepository
}

// NewCacheWarmingService creates a new cache warming service.
// Both repositories are expected to be the cached decorators.
func NewCacheWarmingService(
	services repositories.ServiceRepository,
	categories repositories.CategoryRepository,
) *CacheWarmingService {
	return &CacheWarmingService{
		services:   services,
		categories: categories,
	}
}

// WarmCache warms the cache with frequently accessed data
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	var failed int

	if err := s.warmCategories(ctx); err != nil {
		failed++
		log.Warn().Err(err).Msg("failed to warm categories")
	}
	if err := s.warmNewestServices(ctx); err != nil {
		failed++
		log.Warn().Err(err).Msg("failed to warm newest services")
	}

	if failed == 2 {
		return fmt.Errorf("cache warming failed")
	}
	log.Info().Msg("cache warming completed")
	return nil
}

func (s *CacheWarmingService) warmCategories(ctx context.Context) error {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	log.Debug().Int("categories", len(categories)).Msg("warmed category list")
	return nil
}

func (s *CacheWarmingService) warmNewestServices(ctx context.Context) error {
	result, err := s.services.Search(ctx,
		repositories.ServiceFilter{Status: entities.ServiceStatusActive},
		entities.PageRequest{Limit: WarmServiceCount, Sort: []entities.SortOrder{{Field: "createdAt", Desc: true}}},
	)
	if err != nil {
		return fmt.Errorf("failed to fetch newest services: %w", err)
	}
	if len(result.Content) == 0 {
		return nil
	}

	ids := make([]string, len(result.Content))
	for i, service := range result.Content {
		ids[i] = service.ID
	}
	if _, err := s.services.GetByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to cache newest services: %w", err)
	}
	log.Debug().Int("services", len(ids)).Msg("warmed newest services")
	return nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("initial cache warming failed")
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("started periodic cache warming")
}
