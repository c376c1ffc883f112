package services

import (
	"context"
	"time"

	"github.com/moysha/servicecatalog/internal/application/loaders"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// FavoriteService manages users' bookmarks of listings
type FavoriteService struct {
	tx        repositories.Transactor
	favorites repositories.FavoriteRepository
	services  repositories.ServiceRepository
	users     repositories.UserRepository
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(
	tx repositories.Transactor,
	favorites repositories.FavoriteRepository,
	services repositories.ServiceRepository,
	users repositories.UserRepository,
) *FavoriteService {
	return &FavoriteService{tx: tx, favorites: favorites, services: services, users: users}
}

// Add bookmarks a listing for userID
func (s *FavoriteService) Add(ctx context.Context, serviceID, userID string) (*entities.Favorite, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}

	var favorite *entities.Favorite
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.favorites.Exists(ctx, userID, serviceID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewConflictError("Service already in favorites")
		}
		if _, err := loadUser(ctx, s.users, userID); err != nil {
			return err
		}
		service, err := loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}

		favorite = &entities.Favorite{
			UserID:    userID,
			ServiceID: serviceID,
			Service:   service,
			CreatedAt: time.Now().UTC(),
		}
		return s.favorites.Create(ctx, favorite)
	})
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

// Remove deletes a bookmark
func (s *FavoriteService) Remove(ctx context.Context, serviceID, userID string) error {
	removed, err := s.favorites.Delete(ctx, userID, serviceID)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewNotFoundError("Favorite not found")
	}
	return nil
}

// List pages a user's bookmarks, each carrying its listing
func (s *FavoriteService) List(ctx context.Context, userID string, page entities.PageRequest) (entities.Page[*entities.Favorite], error) {
	result, err := s.favorites.ListByUser(ctx, userID, page)
	if err != nil {
		return entities.Page[*entities.Favorite]{}, err
	}
	if len(result.Content) == 0 {
		return result, nil
	}

	ids := make([]string, len(result.Content))
	for i, f := range result.Content {
		ids[i] = f.ServiceID
	}
	projections, err := s.loadServices(ctx, ids)
	if err != nil {
		return entities.Page[*entities.Favorite]{}, err
	}
	for _, f := range result.Content {
		f.Service = projections[f.ServiceID]
	}
	return result, nil
}

// loadServices resolves listings in one batch, through the request's
// dataloader when one is attached
func (s *FavoriteService) loadServices(ctx context.Context, ids []string) (map[string]*entities.Service, error) {
	out := make(map[string]*entities.Service, len(ids))

	if l := loaders.For(ctx); l != nil {
		services, errs := l.ServiceLoader.LoadMany(ctx, ids)()
		for i, service := range services {
			if len(errs) > i && errs[i] != nil {
				if !apperrors.IsNotFound(errs[i]) {
					return nil, errs[i]
				}
				observability.LoggerFromContext(ctx).Debug().Str("service_id", ids[i]).Msg("favorite without service")
				continue
			}
			out[ids[i]] = service
		}
		return out, nil
	}

	services, err := s.services.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, service := range services {
		out[service.ID] = service
	}
	return out, nil
}
