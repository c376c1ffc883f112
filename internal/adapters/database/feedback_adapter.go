package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var feedbackSortColumns = map[string]string{
	"createdAt": "f.created_at",
	"rate":      "f.rate",
}

func (a *FeedbackAdapter) selectFeedback() *goqu.SelectDataset {
	return a.db.From(goqu.T("feedback").As("f")).
		Join(goqu.T("services").As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("f.service_id")))).
		Select("f.id", "f.service_id", "f.sender_id", "s.owner_id", "f.rate", "f.review", "f.created_at")
}

func scanFeedback(row rowScanner) (*entities.Feedback, error) {
	f := &entities.Feedback{}
	var review sql.NullString
	if err := row.Scan(&f.ID, &f.ServiceID, &f.SenderID, &f.ServiceOwnerID, &f.Rate, &review, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Review = review.String
	return f, nil
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"id":         feedback.ID,
		"service_id": feedback.ServiceID,
		"sender_id":  feedback.SenderID,
		"rate":       feedback.Rate,
		"review":     sql.NullString{String: feedback.Review, Valid: feedback.Review != ""},
		"created_at": feedback.CreatedAt,
	}

	query, args, err := a.db.Insert("feedback").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.Conn(ctx).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("Feedback already exists for user %s", feedback.SenderID))
		}
		return apperrors.NewInternalError("failed to create feedback", err)
	}

	return nil
}

// GetByID retrieves feedback by ID
func (a *FeedbackAdapter) GetByID(ctx context.Context, id string) (*entities.Feedback, error) {
	query, args, err := a.selectFeedback().Where(goqu.I("f.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	feedback, err := scanFeedback(a.client.Conn(ctx).QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundErrorf("feedback with id %s not found", id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get feedback", err)
	}
	return feedback, nil
}

// ExistsBySenderAndService reports whether the sender already rated the service
func (a *FeedbackAdapter) ExistsBySenderAndService(ctx context.Context, senderID, serviceID string) (bool, error) {
	query, args, err := a.db.From("feedback").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"sender_id": senderID, "service_id": serviceID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check feedback existence", err)
	}
	return count > 0, nil
}

// Update writes rate and review
func (a *FeedbackAdapter) Update(ctx context.Context, feedback *entities.Feedback) error {
	query, args, err := a.db.Update("feedback").
		Set(goqu.Record{
			"rate":   feedback.Rate,
			"review": sql.NullString{String: feedback.Review, Valid: feedback.Review != ""},
		}).
		Where(goqu.Ex{"id": feedback.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update feedback", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("feedback with id %s not found", feedback.ID)
	}
	return nil
}

// Delete removes feedback
func (a *FeedbackAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("feedback").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete feedback", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundErrorf("feedback with id %s not found", id)
	}
	return nil
}

// ListByService pages the feedback left for a service
func (a *FeedbackAdapter) ListByService(ctx context.Context, serviceID string, page entities.PageRequest) (entities.Page[*entities.Feedback], error) {
	countSQL, countArgs, err := a.db.From("feedback").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"service_id": serviceID}).
		ToSQL()
	if err != nil {
		return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to build count query", err)
	}
	var total int64
	if err := a.client.Conn(ctx).QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to count feedback", err)
	}

	ds := applyPage(a.selectFeedback().Where(goqu.I("f.service_id").Eq(serviceID)), page, feedbackSortColumns,
		goqu.I("f.created_at").Desc(), goqu.I("f.id").Asc())
	query, args, err := ds.ToSQL()
	if err != nil {
		return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to list feedback", err)
	}
	defer rows.Close()

	var items []*entities.Feedback
	for rows.Next() {
		feedback, err := scanFeedback(rows)
		if err != nil {
			return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to scan feedback", err)
		}
		items = append(items, feedback)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[*entities.Feedback]{}, apperrors.NewInternalError("failed to iterate feedback", err)
	}

	return entities.NewPage(items, total, page), nil
}
