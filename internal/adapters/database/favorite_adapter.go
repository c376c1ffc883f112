package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// FavoriteAdapter implements FavoriteRepository
type FavoriteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFavoriteAdapter creates a new favorite adapter
func NewFavoriteAdapter(client *postgres.Client) repositories.FavoriteRepository {
	return &FavoriteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var favoriteSortColumns = map[string]string{
	"createdAt": "created_at",
}

// Create inserts the (user, service) pair
func (a *FavoriteAdapter) Create(ctx context.Context, favorite *entities.Favorite) error {
	query, args, err := a.db.Insert("favorites").Rows(goqu.Record{
		"user_id":    favorite.UserID,
		"service_id": favorite.ServiceID,
		"created_at": favorite.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("Service already in favorites")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("user or service of the favorite not found")
		}
		return apperrors.NewInternalError("failed to create favorite", err)
	}
	return nil
}

// Exists reports whether the pair is present
func (a *FavoriteAdapter) Exists(ctx context.Context, userID, serviceID string) (bool, error) {
	query, args, err := a.db.From("favorites").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"user_id": userID, "service_id": serviceID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check favorite existence", err)
	}
	return count > 0, nil
}

// Delete removes the pair and reports whether it existed
func (a *FavoriteAdapter) Delete(ctx context.Context, userID, serviceID string) (bool, error) {
	query, args, err := a.db.Delete("favorites").
		Where(goqu.Ex{"user_id": userID, "service_id": serviceID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternalError("failed to delete favorite", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// ListByUser pages a user's bookmarks, newest first
func (a *FavoriteAdapter) ListByUser(ctx context.Context, userID string, page entities.PageRequest) (entities.Page[*entities.Favorite], error) {
	countSQL, countArgs, err := a.db.From("favorites").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to build count query", err)
	}
	var total int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to count favorites", err)
	}

	ds := applyPage(
		a.db.From("favorites").Select("user_id", "service_id", "created_at").Where(goqu.Ex{"user_id": userID}),
		page, favoriteSortColumns,
		goqu.I("created_at").Desc(), goqu.I("service_id").Asc(),
	)
	query, args, err := ds.ToSQL()
	if err != nil {
		return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to list favorites", err)
	}
	defer rows.Close()

	var favorites []*entities.Favorite
	for rows.Next() {
		f := &entities.Favorite{}
		if err := rows.Scan(&f.UserID, &f.ServiceID, &f.CreatedAt); err != nil {
			return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to scan favorite", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[*entities.Favorite]{}, apperrors.NewInternalError("failed to iterate favorites", err)
	}

	return entities.NewPage(favorites, total, page), nil
}
