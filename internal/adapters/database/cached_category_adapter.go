package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
)

const categoriesCacheKey = "categories:all"

// CachedCategoryAdapter caches the category directory listing
type CachedCategoryAdapter struct {
	repositories.CategoryRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedCategoryAdapter creates a new cached category adapter
func NewCachedCategoryAdapter(adapter repositories.CategoryRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) repositories.CategoryRepository {
	return &CachedCategoryAdapter{
		CategoryRepository: adapter,
		cache:              cache,
		ttl:                ttl,
		metrics:            metrics,
	}
}

// List returns the cached directory or loads and caches it
func (a *CachedCategoryAdapter) List(ctx context.Context) ([]*entities.Category, error) {
	if data, err := a.cache.Get(ctx, categoriesCacheKey); err == nil {
		var categories []*entities.Category
		if err := json.Unmarshal(data, &categories); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "category")
			return categories, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, "category")

	categories, err := a.CategoryRepository.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(categories); err == nil {
		if err := a.cache.Set(ctx, categoriesCacheKey, data, a.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache categories")
		}
	}
	return categories, nil
}

// Create inserts a category and drops the cached listing
func (a *CachedCategoryAdapter) Create(ctx context.Context, category *entities.Category) error {
	if err := a.CategoryRepository.Create(ctx, category); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// Update renames a category and drops the cached listing
func (a *CachedCategoryAdapter) Update(ctx context.Context, category *entities.Category) error {
	if err := a.CategoryRepository.Update(ctx, category); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// Delete removes a category and drops the cached listing
func (a *CachedCategoryAdapter) Delete(ctx context.Context, id string) error {
	if err := a.CategoryRepository.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

func (a *CachedCategoryAdapter) invalidate(ctx context.Context) {
	if err := a.cache.Delete(ctx, categoriesCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate cached categories")
	}
}
