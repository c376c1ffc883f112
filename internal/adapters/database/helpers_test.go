package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
)

func setupMockClient(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return postgres.NewFromDB(mockDB), mock
}

var serviceRowColumns = []string{
	"id", "owner_id", "email", "category_id", "name",
	"title", "description", "type", "status",
	"price", "barter", "place", "created_at",
}

func serviceRow(rows *sqlmock.Rows, id, ownerID string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, ownerID, ownerID+"@example.com", "study", "Study",
		"Math tutoring", "Algebra and geometry", "OFFER", "ACTIVE",
		"1500.00", false, nil, created)
}
