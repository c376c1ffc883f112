package search

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

func TestFilterBy(t *testing.T) {
	min := decimal.NewFromInt(1000)
	max := decimal.NewFromInt(2000)
	barter := true
	after := time.Unix(1700000000, 0)

	expr := filterBy(repositories.ServiceFilter{
		OwnerID:      "owner-1",
		Type:         entities.ServiceTypeOffer,
		TitleLike:    "math",
		MinPrice:     &min,
		MaxPrice:     &max,
		BarterOnly:   &barter,
		CreatedAfter: &after,
	}.Clauses())

	assert.Equal(t,
		"owner_id:=`owner-1` && type:=`OFFER` && price:>=1000.00 && price:<=2000.00 && barter:=true && created_at:>=1700000000000000",
		expr)
}

func TestFilterBy_EmptyFilter(t *testing.T) {
	assert.Empty(t, filterBy(repositories.ServiceFilter{}.Clauses()))
}

func TestSearchParams(t *testing.T) {
	params, err := searchParams(
		repositories.ServiceFilter{TitleLike: "  guitar "},
		entities.PageRequest{Offset: 40, Limit: 20, Sort: []entities.SortOrder{{Field: "price"}, {Field: "unknown"}}},
	)
	require.NoError(t, err)

	assert.Equal(t, "guitar", *params.Q)
	assert.Equal(t, "title", *params.QueryBy)
	assert.Equal(t, 3, *params.Page)
	assert.Equal(t, 20, *params.PerPage)
	assert.Equal(t, "price:asc", *params.SortBy)
	assert.Nil(t, params.FilterBy)

	params, err = searchParams(repositories.ServiceFilter{}, entities.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, "*", *params.Q)
	assert.Equal(t, "created_at:desc", *params.SortBy)
	assert.Equal(t, defaultPerPage, *params.PerPage)
}

func TestSearchParams_RejectsOffsetOffPageBoundary(t *testing.T) {
	_, err := searchParams(repositories.ServiceFilter{}, entities.PageRequest{Offset: 15, Limit: 10})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestFilterBy_CreatedBoundsNeverLoosen(t *testing.T) {
	after := time.Unix(1700000000, 1500)  // 1.5µs past the second
	before := time.Unix(1700000100, 2500) // 2.5µs past the second

	expr := filterBy(repositories.ServiceFilter{CreatedAfter: &after, CreatedBefore: &before}.Clauses())

	assert.Equal(t, "created_at:>=1700000000000002 && created_at:<=1700000100000002", expr)
}

func TestDocumentRoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 123456000, time.UTC)
	service := &entities.Service{
		ID: "svc-1", OwnerID: "owner-1", CategoryID: "study", CategoryName: "Study",
		Title: "Math", Description: "Algebra", Type: entities.ServiceTypeOrder,
		Status: entities.ServiceStatusActive, Price: decimal.RequireFromString("99.90"),
		Barter: true, CreatedAt: created,
	}

	doc := serviceDocument(service)
	assert.NotContains(t, doc, "place")

	// Typesense returns numbers as float64
	doc["created_at"] = float64(doc["created_at"].(int64))
	got := documentService(doc)

	require.NotNil(t, got)
	assert.Equal(t, service.ID, got.ID)
	assert.Equal(t, service.Type, got.Type)
	assert.True(t, service.Price.Equal(got.Price))
	assert.Equal(t, created, got.CreatedAt)
	assert.True(t, got.Barter)
}
