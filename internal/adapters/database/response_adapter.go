package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// ResponseAdapter implements ResponseRepository
type ResponseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewResponseAdapter creates a new response adapter
func NewResponseAdapter(client *postgres.Client) repositories.ResponseRepository {
	return &ResponseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var responseSortColumns = map[string]string{
	"createdAt": "r.created_at",
	"status":    "r.status",
}

func (a *ResponseAdapter) fromResponses() *goqu.SelectDataset {
	return a.db.From(goqu.T("responses").As("r")).
		Join(goqu.T("services").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("r.service_id"))))
}

func scanResponse(row rowScanner) (*entities.Response, error) {
	r := &entities.Response{}
	if err := row.Scan(&r.ID, &r.ServiceID, &r.SenderID, &r.ServiceOwnerID, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

var responseColumns = []any{"r.id", "r.service_id", "r.sender_id", "s.owner_id", "r.status", "r.created_at"}

// Create inserts a response
func (a *ResponseAdapter) Create(ctx context.Context, response *entities.Response) error {
	query, args, err := a.db.Insert("responses").Rows(goqu.Record{
		"id":         response.ID,
		"service_id": response.ServiceID,
		"sender_id":  response.SenderID,
		"status":     string(response.Status),
		"created_at": response.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError("Response already exists")
		}
		return apperrors.NewInternalError("failed to create response", err)
	}
	return nil
}

// GetByID retrieves a response by ID
func (a *ResponseAdapter) GetByID(ctx context.Context, id string) (*entities.Response, error) {
	return a.getOne(ctx, goqu.I("r.id").Eq(id), "response with id "+id+" not found")
}

// FindBySenderAndService retrieves the row of the (sender, service) pair
func (a *ResponseAdapter) FindBySenderAndService(ctx context.Context, senderID, serviceID string) (*entities.Response, error) {
	return a.getOne(ctx,
		goqu.And(goqu.I("r.sender_id").Eq(senderID), goqu.I("r.service_id").Eq(serviceID)),
		"response of user "+senderID+" to service "+serviceID+" not found")
}

func (a *ResponseAdapter) getOne(ctx context.Context, where exp.Expression, notFound string) (*entities.Response, error) {
	query, args, err := a.fromResponses().Select(responseColumns...).Where(where).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	response, err := scanResponse(a.client.Conn(ctx).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get response", err)
	}
	return response, nil
}

// TransitionStatus updates the status only if the row is still in from
func (a *ResponseAdapter) TransitionStatus(ctx context.Context, id string, from, to entities.ResponseStatus) (bool, error) {
	query, args, err := a.db.Update("responses").
		Set(goqu.Record{"status": string(to)}).
		Where(goqu.Ex{"id": id, "status": string(from)}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build update query", err)
	}
	return a.execAffected(ctx, query, args, "failed to update response status")
}

// DeleteActive removes the response only while it is active
func (a *ResponseAdapter) DeleteActive(ctx context.Context, id string) (bool, error) {
	query, args, err := a.db.Delete("responses").
		Where(goqu.Ex{"id": id, "status": string(entities.ResponseStatusActive)}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build delete query", err)
	}
	return a.execAffected(ctx, query, args, "failed to delete response")
}

func (a *ResponseAdapter) execAffected(ctx context.Context, query string, args []any, msg string) (bool, error) {
	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.NewInternalError(msg, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected == 1, nil
}

// ListByService pages the responses of a service
func (a *ResponseAdapter) ListByService(ctx context.Context, serviceID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	return a.list(ctx, goqu.I("r.service_id").Eq(serviceID), status, page)
}

// ListByUser pages responses the user sent or received, in one query
func (a *ResponseAdapter) ListByUser(ctx context.Context, userID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	return a.list(ctx, goqu.Or(goqu.I("r.sender_id").Eq(userID), goqu.I("s.owner_id").Eq(userID)), status, page)
}

func (a *ResponseAdapter) list(ctx context.Context, scope exp.Expression, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	where := []exp.Expression{scope}
	if status != nil {
		where = append(where, goqu.I("r.status").Eq(string(*status)))
	}

	countSQL, countArgs, err := a.fromResponses().Where(where...).Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to build count query", err)
	}
	var total int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to count responses", err)
	}

	ds := applyPage(a.fromResponses().Select(responseColumns...).Where(where...), page, responseSortColumns,
		goqu.I("r.created_at").Desc(), goqu.I("r.id").Asc())
	query, args, err := ds.ToSQL()
	if err != nil {
		return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to list responses", err)
	}
	defer rows.Close()

	var responses []*entities.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to scan response", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[*entities.Response]{}, apperrors.NewInternalError("failed to iterate responses", err)
	}

	return entities.NewPage(responses, total, page), nil
}
