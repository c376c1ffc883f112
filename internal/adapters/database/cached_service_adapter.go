package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
)

// CachedServiceAdapter wraps a ServiceRepository with a read-through cache
// of single-service lookups. Reads inside a transaction always go to the
// database so ownership checks see live rows.
type CachedServiceAdapter struct {
	repositories.ServiceRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedServiceAdapter creates a new cached service adapter
func NewCachedServiceAdapter(adapter repositories.ServiceRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) repositories.ServiceRepository {
	return &CachedServiceAdapter{
		ServiceRepository: adapter,
		cache:             cache,
		ttl:               ttl,
		metrics:           metrics,
	}
}

// GetByID retrieves a service, consulting the cache outside transactions
func (a *CachedServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	if postgres.InTx(ctx) {
		return a.ServiceRepository.GetByID(ctx, id)
	}

	key := providers.ServiceCacheKey(id)
	if service, ok := a.fromCache(ctx, key); ok {
		observability.RecordCacheHit(ctx, a.metrics, "service")
		return service, nil
	}
	observability.RecordCacheMiss(ctx, a.metrics, "service")

	service, err := a.ServiceRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(ctx, service)
	return service, nil
}

// GetByIDs serves what it can from the cache and loads the rest in one query
func (a *CachedServiceAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error) {
	if postgres.InTx(ctx) {
		return a.ServiceRepository.GetByIDs(ctx, ids)
	}

	services := make([]*entities.Service, 0, len(ids))
	missing := make([]string, 0)
	for _, id := range ids {
		if service, ok := a.fromCache(ctx, providers.ServiceCacheKey(id)); ok {
			services = append(services, service)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return services, nil
	}

	loaded, err := a.ServiceRepository.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, service := range loaded {
		a.store(ctx, service)
	}
	return append(services, loaded...), nil
}

// Update writes the service and drops its cached projection
func (a *CachedServiceAdapter) Update(ctx context.Context, service *entities.Service) error {
	if err := a.ServiceRepository.Update(ctx, service); err != nil {
		return err
	}
	a.evict(ctx, service.ID)
	return nil
}

// SetStatusByOwner updates every service of the owner and drops their cached projections
func (a *CachedServiceAdapter) SetStatusByOwner(ctx context.Context, ownerID string, status entities.ServiceStatus) (int64, error) {
	owned, err := a.ServiceRepository.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	updated, err := a.ServiceRepository.SetStatusByOwner(ctx, ownerID, status)
	if err != nil {
		return 0, err
	}

	ids := make([]string, len(owned))
	for i, s := range owned {
		ids[i] = s.ID
	}
	a.evict(ctx, ids...)
	return updated, nil
}

// Delete removes the service and its cached projection
func (a *CachedServiceAdapter) Delete(ctx context.Context, id string) error {
	if err := a.ServiceRepository.Delete(ctx, id); err != nil {
		return err
	}
	a.evict(ctx, id)
	return nil
}

func (a *CachedServiceAdapter) fromCache(ctx context.Context, key string) (*entities.Service, bool) {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var service entities.Service
	if err := json.Unmarshal(data, &service); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached service")
		return nil, false
	}
	return &service, true
}

func (a *CachedServiceAdapter) store(ctx context.Context, service *entities.Service) {
	data, err := json.Marshal(service)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, providers.ServiceCacheKey(service.ID), data, a.ttl); err != nil {
		log.Warn().Err(err).Str("service_id", service.ID).Msg("failed to cache service")
	}
}

func (a *CachedServiceAdapter) evict(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = providers.ServiceCacheKey(id)
	}
	if err := a.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate cached services")
	}
}
