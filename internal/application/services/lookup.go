package services

import (
	"context"
	"fmt"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// notFoundAs replaces the message of a NotFound error so callers see which
// reference was missing. Other errors pass through unchanged.
func notFoundAs(err error, format string, args ...any) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFoundErrorf(format, args...)
	}
	return err
}

func loadService(ctx context.Context, repo repositories.ServiceRepository, id string) (*entities.Service, error) {
	service, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Service not found: %s", id)
	}
	return service, nil
}

func loadUser(ctx context.Context, repo repositories.UserRepository, id string) (*entities.User, error) {
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "User not found: %s", id)
	}
	return user, nil
}

func loadCategory(ctx context.Context, repo repositories.CategoryRepository, id string) (*entities.Category, error) {
	category, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "Category not found: %s", id)
	}
	return category, nil
}

func requireID(field, value string) error {
	if value == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	return nil
}
