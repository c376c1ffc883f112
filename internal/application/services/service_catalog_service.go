package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// CreateServiceInput carries the fields of a new listing
type CreateServiceInput struct {
	OwnerID     string
	CategoryID  string
	Title       string
	Description string
	Type        entities.ServiceType
	Price       decimal.Decimal
	Barter      *bool
	Place       string
}

// UpdateServiceInput is a sparse update: nil fields are left untouched
type UpdateServiceInput struct {
	RequesterID string
	CategoryID  *string
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Barter      *bool
	Place       *string
}

// ServiceCatalogService handles the lifecycle and search of listings
type ServiceCatalogService struct {
	tx         repositories.Transactor
	services   repositories.ServiceRepository
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	index      repositories.ServiceSearchIndex
	events     providers.EventBus
	metrics    *observability.Metrics
}

// NewServiceCatalogService creates a new catalog service.
// index, events and metrics are optional.
func NewServiceCatalogService(
	tx repositories.Transactor,
	services repositories.ServiceRepository,
	users repositories.UserRepository,
	categories repositories.CategoryRepository,
	index repositories.ServiceSearchIndex,
	events providers.EventBus,
	metrics *observability.Metrics,
) *ServiceCatalogService {
	return &ServiceCatalogService{
		tx:         tx,
		services:   services,
		users:      users,
		categories: categories,
		index:      index,
		events:     events,
		metrics:    metrics,
	}
}

// Create publishes a new listing. Status is always ACTIVE.
func (s *ServiceCatalogService) Create(ctx context.Context, input CreateServiceInput) (*entities.Service, error) {
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("type must be OFFER or ORDER")
	}
	if input.Price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative")
	}

	var service *entities.Service
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := s.users.GetByID(ctx, input.OwnerID)
		if err != nil {
			return notFoundAs(err, "Owner not found: %s", input.OwnerID)
		}
		category, err := loadCategory(ctx, s.categories, input.CategoryID)
		if err != nil {
			return err
		}

		service = &entities.Service{
			ID:           uuid.NewString(),
			OwnerID:      owner.ID,
			OwnerEmail:   owner.Email,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Title:        input.Title,
			Description:  input.Description,
			Type:         input.Type,
			Status:       entities.ServiceStatusActive,
			Price:        entities.NormalizePrice(input.Price),
			Barter:       input.Barter != nil && *input.Barter,
			Place:        input.Place,
			CreatedAt:    time.Now().UTC(),
		}
		return s.services.Create(ctx, service)
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("service_id", service.ID).
		Str("owner_id", service.OwnerID).
		Msg("service created")
	s.afterWrite(ctx, entities.CatalogEventServiceCreated, service)
	return service, nil
}

// Update applies a sparse update on behalf of the owner
func (s *ServiceCatalogService) Update(ctx context.Context, serviceID string, input UpdateServiceInput) (*entities.Service, error) {
	if input.Price != nil && input.Price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative")
	}

	var service *entities.Service
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		service, err = loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(input.RequesterID) {
			return apperrors.NewBadRequestError("Only owner can update the service")
		}

		if input.CategoryID != nil && *input.CategoryID != service.CategoryID {
			category, err := loadCategory(ctx, s.categories, *input.CategoryID)
			if err != nil {
				return err
			}
			service.CategoryID = category.ID
			service.CategoryName = category.Name
		}
		if input.Title != nil {
			service.Title = *input.Title
		}
		if input.Description != nil {
			service.Description = *input.Description
		}
		if input.Price != nil {
			service.Price = entities.NormalizePrice(*input.Price)
		}
		if input.Barter != nil {
			service.Barter = *input.Barter
		}
		if input.Place != nil {
			service.Place = *input.Place
		}

		return s.services.Update(ctx, service)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, entities.CatalogEventServiceUpdated, service)
	return service, nil
}

// ChangeStatus sets the status of a listing. Any status may follow any other.
func (s *ServiceCatalogService) ChangeStatus(ctx context.Context, serviceID, requesterID string, status entities.ServiceStatus) (*entities.Service, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be ACTIVE or ARCHIVED")
	}

	var service *entities.Service
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		service, err = loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(requesterID) {
			return apperrors.NewBadRequestError("Only owner can change status")
		}
		service.Status = status
		return s.services.Update(ctx, service)
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("service_id", serviceID).
		Str("status", string(status)).
		Msg("service status changed")
	s.afterWrite(ctx, entities.CatalogEventServiceUpdated, service)
	return service, nil
}

// ChangeOwnerServicesStatus applies status to every listing of an owner
func (s *ServiceCatalogService) ChangeOwnerServicesStatus(ctx context.Context, ownerID, requesterID string, status entities.ServiceStatus) ([]*entities.Service, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be ACTIVE or ARCHIVED")
	}
	if ownerID != requesterID {
		return nil, apperrors.NewBadRequestError("Only owner can change status of own services")
	}

	var changed []*entities.Service
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := loadUser(ctx, s.users, ownerID); err != nil {
			return err
		}
		if _, err := s.services.SetStatusByOwner(ctx, ownerID, status); err != nil {
			return err
		}
		var err error
		changed, err = s.services.ListByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("owner_id", ownerID).
		Int("services", len(changed)).
		Str("status", string(status)).
		Msg("owner services status changed")
	for _, service := range changed {
		s.afterWrite(ctx, entities.CatalogEventServiceUpdated, service)
	}
	return changed, nil
}

// Delete hard-deletes a listing on behalf of its owner
func (s *ServiceCatalogService) Delete(ctx context.Context, serviceID, requesterID string) error {
	var service *entities.Service
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		service, err = loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}
		if !service.IsOwnedBy(requesterID) {
			return apperrors.NewBadRequestError("Only owner can delete the service")
		}
		return s.services.Delete(ctx, serviceID)
	})
	if err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Str("service_id", serviceID).Msg("service deleted")
	s.afterWrite(ctx, entities.CatalogEventServiceDeleted, service)
	return nil
}

// GetByID retrieves a listing
func (s *ServiceCatalogService) GetByID(ctx context.Context, serviceID string) (*entities.Service, error) {
	return loadService(ctx, s.services, serviceID)
}

// Search returns the page of listings matching every present filter field
func (s *ServiceCatalogService) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	ctx, span := observability.StartSpan(ctx, "ServiceCatalogService.Search",
		attribute.Int("search.clauses", len(filter.Clauses())),
		attribute.Int("search.offset", page.Offset),
		attribute.Int("search.limit", page.Limit),
	)
	defer span.End()

	start := time.Now()
	result, err := s.services.Search(ctx, filter, page)
	observability.RecordDBMetric(ctx, s.metrics, "service_search", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return entities.Page[*entities.Service]{}, err
	}
	span.SetAttributes(attribute.Int64("search.total", result.TotalElements))
	return result, nil
}

// Suggest returns active listings whose title matches query, for typeahead.
// The search index is used when configured; storage answers otherwise or
// when the index fails.
func (s *ServiceCatalogService) Suggest(ctx context.Context, query string, limit int) ([]*entities.Service, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entities.Service{}, nil
	}

	filter := repositories.ServiceFilter{TitleLike: query, Status: entities.ServiceStatusActive}
	page := entities.PageRequest{Limit: limit}

	if s.index != nil {
		result, err := s.index.Search(ctx, filter, page)
		if err == nil {
			// the index matches titles with typo tolerance; keep only real substring hits
			suggestions := make([]*entities.Service, 0, len(result.Content))
			for _, service := range result.Content {
				if filter.Matches(service) {
					suggestions = append(suggestions, service)
				}
			}
			return suggestions, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("search index unavailable, suggesting from storage")
	}

	result, err := s.services.Search(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return result.Content, nil
}

// afterWrite mirrors a committed write to the search index and the event bus.
// Both are best-effort: failures are logged, never returned.
func (s *ServiceCatalogService) afterWrite(ctx context.Context, eventType entities.CatalogEventType, service *entities.Service) {
	logger := observability.LoggerFromContext(ctx)

	if s.index != nil {
		var err error
		if eventType == entities.CatalogEventServiceDeleted {
			err = s.index.Delete(ctx, service.ID)
		} else {
			err = s.index.Index(ctx, service)
		}
		if err != nil {
			logger.Warn().Err(err).Str("service_id", service.ID).Msg("failed to sync search index")
		}
	}

	if s.events == nil {
		return
	}
	event := &entities.CatalogEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ServiceID:  service.ID,
		OwnerID:    service.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, providers.EventChannelCatalog, event); err != nil {
		logger.Warn().Err(err).Str("service_id", service.ID).Msg("failed to publish catalog event")
		return
	}
	observability.RecordCatalogEvent(ctx, s.metrics, string(eventType))
}
