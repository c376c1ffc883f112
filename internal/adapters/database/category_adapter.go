package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// CategoryAdapter implements CategoryRepository
type CategoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCategoryAdapter creates a new category adapter
func NewCategoryAdapter(client *postgres.Client) repositories.CategoryRepository {
	return &CategoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List returns every category ordered by name
func (a *CategoryAdapter) List(ctx context.Context) ([]*entities.Category, error) {
	query, args, err := a.db.From("categories").
		Select("id", "name").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list categories", err)
	}
	defer rows.Close()

	categories := make([]*entities.Category, 0)
	for rows.Next() {
		c := &entities.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate categories", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (a *CategoryAdapter) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	return a.getOne(ctx, goqu.I("id").Eq(id), fmt.Sprintf("category with id %s not found", id))
}

// FindByName looks a category up case-insensitively
func (a *CategoryAdapter) FindByName(ctx context.Context, name string) (*entities.Category, error) {
	return a.getOne(ctx,
		goqu.Func("LOWER", goqu.I("name")).Eq(strings.ToLower(strings.TrimSpace(name))),
		fmt.Sprintf("category with name %s not found", name))
}

func (a *CategoryAdapter) getOne(ctx context.Context, where exp.Expression, notFound string) (*entities.Category, error) {
	query, args, err := a.db.From("categories").Select("id", "name").Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	c := &entities.Category{}
	err = a.client.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get category", err)
	}
	return c, nil
}

// Create inserts a category
func (a *CategoryAdapter) Create(ctx context.Context, category *entities.Category) error {
	query, args, err := a.db.Insert("categories").Rows(goqu.Record{
		"id":   category.ID,
		"name": category.Name,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("Category already exists: %s", category.Name))
		}
		return apperrors.NewInternalError("failed to create category", err)
	}
	return nil
}

// Update renames a category
func (a *CategoryAdapter) Update(ctx context.Context, category *entities.Category) error {
	query, args, err := a.db.Update("categories").
		Set(goqu.Record{"name": category.Name}).
		Where(goqu.Ex{"id": category.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("Category already exists: %s", category.Name))
		}
		return apperrors.NewInternalError("failed to update category", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("category with id %s not found", category.ID)
	}
	return nil
}

// Delete removes a category that no service references
func (a *CategoryAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("categories").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("Category %s is used by services", id))
		}
		return apperrors.NewInternalError("failed to delete category", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("category with id %s not found", id)
	}
	return nil
}
