package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	// List returns every category ordered by name
	List(ctx context.Context) ([]*entities.Category, error)

	// GetByID retrieves a category by ID, NotFound if absent
	GetByID(ctx context.Context, id string) (*entities.Category, error)

	// FindByName looks a category up case-insensitively, NotFound if absent
	FindByName(ctx context.Context, name string) (*entities.Category, error)

	// Create inserts a category; a duplicate name yields Conflict
	Create(ctx context.Context, category *entities.Category) error

	// Update renames a category; a duplicate name yields Conflict
	Update(ctx context.Context, category *entities.Category) error

	// Delete removes a category, NotFound if absent
	Delete(ctx context.Context, id string) error
}
