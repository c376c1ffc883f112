package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// ServiceAdapter implements ServiceRepository
type ServiceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *postgres.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// serviceSortColumns maps API sort keys to columns
var serviceSortColumns = map[string]string{
	"createdAt": "s.created_at",
	"price":     "s.price",
	"title":     "s.title",
	"type":      "s.type",
	"status":    "s.status",
}

func (a *ServiceAdapter) selectServices() *goqu.SelectDataset {
	return a.db.From(goqu.T("services").As("s")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("s.owner_id")))).
		LeftJoin(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("s.category_id")))).
		Select(
			"s.id", "s.owner_id", "u.email", "s.category_id", "c.name",
			"s.title", "s.description", "s.type", "s.status",
			"s.price", "s.barter", "s.place", "s.created_at",
		)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*entities.Service, error) {
	s := &entities.Service{}
	var ownerEmail, categoryName, place sql.NullString
	err := row.Scan(
		&s.ID, &s.OwnerID, &ownerEmail, &s.CategoryID, &categoryName,
		&s.Title, &s.Description, &s.Type, &s.Status,
		&s.Price, &s.Barter, &place, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.OwnerEmail = ownerEmail.String
	s.CategoryName = categoryName.String
	s.Place = place.String
	return s, nil
}

// Create inserts a service
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	record := goqu.Record{
		"id":          service.ID,
		"owner_id":    service.OwnerID,
		"category_id": service.CategoryID,
		"title":       service.Title,
		"description": service.Description,
		"type":        string(service.Type),
		"status":      string(service.Status),
		"price":       service.Price,
		"barter":      service.Barter,
		"place":       sql.NullString{String: service.Place, Valid: service.Place != ""},
		"created_at":  service.CreatedAt,
	}

	query, args, err := a.db.Insert("services").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("owner or category of the service not found")
		}
		return apperrors.NewInternalError("failed to create service", err)
	}
	return nil
}

// GetByID retrieves a service by ID
func (a *ServiceAdapter) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	query, args, err := a.selectServices().Where(goqu.I("s.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	service, err := scanService(a.client.Conn(ctx).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundErrorf("service with id %s not found", id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get service", err)
	}
	return service, nil
}

// GetByIDs retrieves the services that exist among ids
func (a *ServiceAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error) {
	if len(ids) == 0 {
		return []*entities.Service{}, nil
	}

	query, args, err := a.selectServices().Where(goqu.I("s.id").In(ids)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryServices(ctx, query, args)
}

// ListByOwner returns every service of an owner, newest first
func (a *ServiceAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Service, error) {
	query, args, err := a.selectServices().
		Where(goqu.I("s.owner_id").Eq(ownerID)).
		Order(goqu.I("s.created_at").Desc(), goqu.I("s.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryServices(ctx, query, args)
}

func (a *ServiceAdapter) queryServices(ctx context.Context, query string, args []any) ([]*entities.Service, error) {
	rows, err := a.client.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query services", err)
	}
	defer rows.Close()

	services := make([]*entities.Service, 0)
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}
	return services, nil
}

// Update writes every mutable column of a service
func (a *ServiceAdapter) Update(ctx context.Context, service *entities.Service) error {
	record := goqu.Record{
		"category_id": service.CategoryID,
		"title":       service.Title,
		"description": service.Description,
		"type":        string(service.Type),
		"status":      string(service.Status),
		"price":       service.Price,
		"barter":      service.Barter,
		"place":       sql.NullString{String: service.Place, Valid: service.Place != ""},
	}

	query, args, err := a.db.Update("services").
		Set(record).
		Where(goqu.Ex{"id": service.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundErrorf("category with id %s not found", service.CategoryID)
		}
		return apperrors.NewInternalError("failed to update service", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("service with id %s not found", service.ID)
	}
	return nil
}

// SetStatusByOwner changes the status of all services of an owner
func (a *ServiceAdapter) SetStatusByOwner(ctx context.Context, ownerID string, status entities.ServiceStatus) (int64, error) {
	query, args, err := a.db.Update("services").
		Set(goqu.Record{"status": string(status)}).
		Where(goqu.Ex{"owner_id": ownerID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to update services status", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected, nil
}

// Delete hard-deletes a service; responses, feedback and favorites cascade
func (a *ServiceAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("services").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete service", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("service with id %s not found", id)
	}
	return nil
}

// Search returns the page of services matching every clause of filter.
// The count runs on the same predicate before pagination is applied.
func (a *ServiceAdapter) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	where := serviceClauseExpressions(filter.Clauses())

	countSQL, countArgs, err := a.db.From(goqu.T("services").As("s")).
		Where(where...).
		Select(goqu.COUNT("*")).
		ToSQL()
	if err != nil {
		return entities.Page[*entities.Service]{}, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return entities.Page[*entities.Service]{}, apperrors.NewInternalError("failed to count services", err)
	}

	ds := applyPage(a.selectServices().Where(where...), page, serviceSortColumns,
		goqu.I("s.created_at").Desc(), goqu.I("s.id").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return entities.Page[*entities.Service]{}, apperrors.NewInternalError("failed to build search query", err)
	}

	services, err := a.queryServices(ctx, query, args)
	if err != nil {
		return entities.Page[*entities.Service]{}, err
	}
	return entities.NewPage(services, total, page), nil
}

// serviceClauseExpressions renders search clauses against the "s" alias
func serviceClauseExpressions(clauses []repositories.Clause) []exp.Expression {
	exprs := make([]exp.Expression, 0, len(clauses))
	for _, c := range clauses {
		column := goqu.I("s." + string(c.Field))
		value := clauseValue(c.Value)

		switch c.Op {
		case repositories.OpEqual:
			exprs = append(exprs, column.Eq(value))
		case repositories.OpContainsFold:
			exprs = append(exprs, goqu.Func("LOWER", column).Like(containsPattern(fmt.Sprint(value))))
		case repositories.OpGreaterOrEqual:
			exprs = append(exprs, column.Gte(value))
		case repositories.OpLessOrEqual:
			exprs = append(exprs, column.Lte(value))
		}
	}
	return exprs
}

func clauseValue(v any) any {
	switch val := v.(type) {
	case entities.ServiceType:
		return string(val)
	case entities.ServiceStatus:
		return string(val)
	default:
		return v
	}
}
