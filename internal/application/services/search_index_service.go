package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// ReindexBatchSize is the page size used to walk the catalog
const ReindexBatchSize = 100

type ReindexSummary struct {
	TotalProcessed int
	SuccessCount   int
	FailureCount   int
}

// SearchIndexService keeps the external search index in step with storage
type SearchIndexService struct {
	services    repositories.ServiceRepository
	index       repositories.ServiceSearchIndex
	events      providers.EventBus
	workerCount int
}

func NewSearchIndexService(
	services repositories.ServiceRepository,
	index repositories.ServiceSearchIndex,
	events providers.EventBus,
	workers int,
) *SearchIndexService {
	if workers <= 0 {
		workers = 1
	}
	return &SearchIndexService{
		services:    services,
		index:       index,
		events:      events,
		workerCount: workers,
	}
}

// Reindex walks the whole catalog and upserts every listing into the index
func (s *SearchIndexService) Reindex(ctx context.Context) (*ReindexSummary, error) {
	var processed, success, failure int64

	serviceChan := make(chan *entities.Service, ReindexBatchSize)
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for service := range serviceChan {
				err := s.index.Index(ctx, service)
				atomic.AddInt64(&processed, 1)
				if err != nil {
					atomic.AddInt64(&failure, 1)
					log.Warn().Err(err).Str("service_id", service.ID).Msg("failed to index service")
				} else {
					atomic.AddInt64(&success, 1)
				}
			}
		}()
	}

	page := entities.PageRequest{
		Limit: ReindexBatchSize,
		Sort:  []entities.SortOrder{{Field: "createdAt"}},
	}
	for {
		result, err := s.services.Search(ctx, repositories.ServiceFilter{}, page)
		if err != nil {
			close(serviceChan)
			wg.Wait()
			return nil, fmt.Errorf("failed to list services at offset %d: %w", page.Offset, err)
		}

		for _, service := range result.Content {
			select {
			case serviceChan <- service:
			case <-ctx.Done():
				close(serviceChan)
				wg.Wait()
				return nil, ctx.Err()
			}
		}

		page.Offset += len(result.Content)
		if len(result.Content) < ReindexBatchSize || int64(page.Offset) >= result.TotalElements {
			break
		}
	}

	close(serviceChan)
	wg.Wait()

	return &ReindexSummary{
		TotalProcessed: int(processed),
		SuccessCount:   int(success),
		FailureCount:   int(failure),
	}, nil
}

// Follow applies catalog events to the index until ctx is done
func (s *SearchIndexService) Follow(ctx context.Context) error {
	if s.events == nil {
		return fmt.Errorf("follow mode requires an event bus")
	}
	eventChan, err := s.events.Subscribe(ctx, providers.EventChannelCatalog)
	if err != nil {
		return fmt.Errorf("failed to subscribe to catalog events: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			if event == nil {
				continue
			}
			if err := s.Apply(ctx, event); err != nil {
				log.Warn().Err(err).
					Str("service_id", event.ServiceID).
					Str("event_type", string(event.Type)).
					Msg("failed to apply catalog event to index")
			}
		}
	}
}

// Apply brings the index document of one listing up to date
func (s *SearchIndexService) Apply(ctx context.Context, event *entities.CatalogEvent) error {
	if event.Type == entities.CatalogEventServiceDeleted {
		return s.index.Delete(ctx, event.ServiceID)
	}

	service, err := s.services.GetByID(ctx, event.ServiceID)
	if apperrors.IsNotFound(err) {
		// deleted after the event was published
		return s.index.Delete(ctx, event.ServiceID)
	}
	if err != nil {
		return err
	}
	return s.index.Index(ctx, service)
}
