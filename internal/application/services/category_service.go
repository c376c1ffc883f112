package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// renameAnnounceBatch is the page size used to walk a renamed category's listings
const renameAnnounceBatch = 100

// CategoryService manages the category directory
type CategoryService struct {
	tx         repositories.Transactor
	categories repositories.CategoryRepository
	services   repositories.ServiceRepository
	events     providers.EventBus
}

// NewCategoryService creates a new category service. events may be nil.
func NewCategoryService(
	tx repositories.Transactor,
	categories repositories.CategoryRepository,
	services repositories.ServiceRepository,
	events providers.EventBus,
) *CategoryService {
	return &CategoryService{tx: tx, categories: categories, services: services, events: events}
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]*entities.Category, error) {
	return s.categories.List(ctx)
}

// Create adds a category. Names are unique regardless of case.
func (s *CategoryService) Create(ctx context.Context, name string) (*entities.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	var category *entities.Category
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.categories.FindByName(ctx, name)
		if err == nil {
			return apperrors.NewConflictError(fmt.Sprintf("Category already exists: %s", existing.Name))
		}
		if !apperrors.IsNotFound(err) {
			return err
		}

		category = &entities.Category{ID: uuid.NewString(), Name: name}
		return s.categories.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("category_id", category.ID).Str("name", name).Msg("category created")
	return category, nil
}

// Rename changes the name of a category
func (s *CategoryService) Rename(ctx context.Context, id, name string) (*entities.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	var category *entities.Category
	var renamed bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		category, err = loadCategory(ctx, s.categories, id)
		if err != nil {
			return err
		}
		// names compare case-insensitively, so a case-only change keeps the stored name
		if category.SameName(name) {
			return nil
		}
		renamed = true

		existing, err := s.categories.FindByName(ctx, name)
		switch {
		case err == nil && existing.ID != id:
			return apperrors.NewConflictError(fmt.Sprintf("Category already exists: %s", existing.Name))
		case err != nil && !apperrors.IsNotFound(err):
			return err
		}

		category.Name = name
		return s.categories.Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	if renamed {
		s.announceRename(ctx, category)
	}
	return category, nil
}

// announceRename publishes an update for every listing of the category.
// Listings carry the category name, so cached projections and index
// documents have to be refreshed. Failures are logged, never returned.
func (s *CategoryService) announceRename(ctx context.Context, category *entities.Category) {
	if s.events == nil || s.services == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	filter := repositories.ServiceFilter{CategoryID: category.ID}
	page := entities.PageRequest{Limit: renameAnnounceBatch, Sort: []entities.SortOrder{{Field: "createdAt"}}}
	published := 0
	for {
		result, err := s.services.Search(ctx, filter, page)
		if err != nil {
			logger.Warn().Err(err).Str("category_id", category.ID).Msg("failed to list services of renamed category")
			return
		}
		for _, service := range result.Content {
			event := &entities.CatalogEvent{
				ID:         uuid.NewString(),
				Type:       entities.CatalogEventServiceUpdated,
				ServiceID:  service.ID,
				OwnerID:    service.OwnerID,
				OccurredAt: time.Now().UTC(),
			}
			if err := s.events.Publish(ctx, providers.EventChannelCatalog, event); err != nil {
				logger.Warn().Err(err).Str("service_id", service.ID).Msg("failed to publish catalog event")
				continue
			}
			published++
		}

		page.Offset += len(result.Content)
		if len(result.Content) < page.Limit || int64(page.Offset) >= result.TotalElements {
			break
		}
	}

	logger.Info().
		Str("category_id", category.ID).
		Str("name", category.Name).
		Int("services", published).
		Msg("category renamed")
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := loadCategory(ctx, s.categories, id); err != nil {
			return err
		}
		return s.categories.Delete(ctx, id)
	})
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name must not be blank")
	}
	if len([]rune(name)) > entities.CategoryNameMaxLength {
		return "", apperrors.NewValidationError(fmt.Sprintf("name must be at most %d characters", entities.CategoryNameMaxLength))
	}
	return name, nil
}
