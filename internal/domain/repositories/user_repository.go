package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// UserRepository is the read-only view of the user directory.
// The directory is owned by the user service; this repo never writes to it.
type UserRepository interface {
	// GetByID retrieves a user by ID, NotFound if absent
	GetByID(ctx context.Context, id string) (*entities.User, error)
}
