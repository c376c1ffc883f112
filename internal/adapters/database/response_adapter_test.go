package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

var responseRowColumns = []string{"id", "service_id", "sender_id", "owner_id", "status", "created_at"}

func TestResponseAdapter_Create_DuplicatePairIsConflict(t *testing.T) {
	client, mock := setupMockClient(t)
	mock.ExpectExec(`INSERT INTO "responses"`).WillReturnError(&pq.Error{Code: "23505"})

	err := NewResponseAdapter(client).Create(context.Background(), &entities.Response{
		ID: "r-1", ServiceID: "svc-1", SenderID: "user-2", Status: entities.ResponseStatusActive, CreatedAt: time.Now(),
	})

	assert.True(t, apperrors.IsConflict(err))
}

func TestResponseAdapter_FindBySenderAndService(t *testing.T) {
	client, mock := setupMockClient(t)
	mock.ExpectQuery(`FROM "responses" AS "r" INNER JOIN "services" AS "s".*"r"\."sender_id" = 'user-2'.*"r"\."service_id" = 'svc-1'`).
		WillReturnRows(sqlmock.NewRows(responseRowColumns).AddRow("r-1", "svc-1", "user-2", "owner-1", "ARCHIVED", time.Now()))

	response, err := NewResponseAdapter(client).FindBySenderAndService(context.Background(), "user-2", "svc-1")

	require.NoError(t, err)
	assert.Equal(t, "owner-1", response.ServiceOwnerID)
	assert.Equal(t, entities.ResponseStatusArchived, response.Status)
}

func TestResponseAdapter_TransitionStatus(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewResponseAdapter(client)

	mock.ExpectExec(`UPDATE "responses" SET "status"='ACTIVE' WHERE .*"status" = 'ARCHIVED'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := adapter.TransitionStatus(context.Background(), "r-1", entities.ResponseStatusArchived, entities.ResponseStatusActive)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(`UPDATE "responses"`).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = adapter.TransitionStatus(context.Background(), "r-1", entities.ResponseStatusArchived, entities.ResponseStatusActive)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResponseAdapter_DeleteActive(t *testing.T) {
	client, mock := setupMockClient(t)
	mock.ExpectExec(`DELETE FROM "responses" WHERE .*"status" = 'ACTIVE'`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewResponseAdapter(client).DeleteActive(context.Background(), "r-1")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResponseAdapter_ListByUser_CoversSentAndReceived(t *testing.T) {
	client, mock := setupMockClient(t)
	status := entities.ResponseStatusActive
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "responses" AS "r" INNER JOIN "services" AS "s" .*\("r"\."sender_id" = 'user-1'\) OR \("s"\."owner_id" = 'user-1'\).*"r"\."status" = 'ACTIVE'`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY "r"\."created_at" DESC, "r"\."id" ASC LIMIT 10`).
		WillReturnRows(sqlmock.NewRows(responseRowColumns).
			AddRow("r-1", "svc-1", "user-1", "owner-9", "ACTIVE", now).
			AddRow("r-2", "svc-2", "user-7", "user-1", "ACTIVE", now))

	page, err := NewResponseAdapter(client).ListByUser(context.Background(), "user-1", &status, entities.PageRequest{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Len(t, page.Content, 2)
}
