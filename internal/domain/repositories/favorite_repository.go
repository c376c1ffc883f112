package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// FavoriteRepository defines the interface for bookmark operations
type FavoriteRepository interface {
	// Create inserts the pair; an existing pair yields Conflict
	Create(ctx context.Context, favorite *entities.Favorite) error

	// Exists reports whether the pair is present
	Exists(ctx context.Context, userID, serviceID string) (bool, error)

	// Delete removes the pair and reports whether it existed
	Delete(ctx context.Context, userID, serviceID string) (bool, error)

	// ListByUser pages a user's bookmarks without service projections
	ListByUser(ctx context.Context, userID string, page entities.PageRequest) (entities.Page[*entities.Favorite], error)
}
