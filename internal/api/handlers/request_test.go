package handlers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

func TestPaging_Parse_Defaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/favorites", nil)

	page, err := testPaging.Parse(req)

	require.NoError(t, err)
	assert.Equal(t, entities.PageRequest{Offset: 0, Limit: 20}, page)
}

func TestPaging_Parse_OffsetLimitAndSort(t *testing.T) {
	req := httptest.NewRequest("GET", "/x?offset=40&limit=10&sort=createdAt,desc&sort=title", nil)

	page, err := testPaging.Parse(req)

	require.NoError(t, err)
	assert.Equal(t, 40, page.Offset)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, []entities.SortOrder{
		{Field: "createdAt", Desc: true},
		{Field: "title"},
	}, page.Sort)
}

func TestPaging_Parse_PageAndSize(t *testing.T) {
	req := httptest.NewRequest("GET", "/x?page=2&size=15", nil)

	page, err := testPaging.Parse(req)

	require.NoError(t, err)
	assert.Equal(t, 30, page.Offset)
	assert.Equal(t, 15, page.Limit)
}

func TestPaging_Parse_ClampsLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/x?limit=5000", nil)

	page, err := testPaging.Parse(req)

	require.NoError(t, err)
	assert.Equal(t, 100, page.Limit)
}

func TestPaging_Parse_Rejects(t *testing.T) {
	for _, query := range []string{
		"limit=0",
		"limit=abc",
		"offset=-1",
		"sort=title,sideways",
	} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/x?"+query, nil)

			_, err := testPaging.Parse(req)

			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		})
	}
}
