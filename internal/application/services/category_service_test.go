package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
	"github.com/moysha/servicecatalog/tests/mocks"
)

func newCategoryService(t *testing.T) (*services.CategoryService, *mocks.CategoryRepository) {
	repo := &mocks.CategoryRepository{}
	t.Cleanup(func() { repo.AssertExpectations(t) })
	return services.NewCategoryService(&mocks.Transactor{}, repo, nil, nil), repo
}

func TestCategoryService_Create(t *testing.T) {
	svc, repo := newCategoryService(t)

	repo.On("FindByName", mock.Anything, "Music").Return(nil, apperrors.NewNotFoundError("category not found"))
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *entities.Category) bool {
		return c.Name == "Music" && c.ID != ""
	})).Return(nil)

	category, err := svc.Create(context.Background(), "  Music ")

	require.NoError(t, err)
	assert.Equal(t, "Music", category.Name)
}

func TestCategoryService_Create_DuplicateIgnoringCase(t *testing.T) {
	svc, repo := newCategoryService(t)

	repo.On("FindByName", mock.Anything, "music").Return(&entities.Category{ID: "cat-1", Name: "Music"}, nil)

	_, err := svc.Create(context.Background(), "music")

	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Category already exists: Music")
}

func TestCategoryService_Create_Validation(t *testing.T) {
	svc, _ := newCategoryService(t)

	_, err := svc.Create(context.Background(), "   ")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Create(context.Background(), strings.Repeat("x", entities.CategoryNameMaxLength+1))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestCategoryService_Rename(t *testing.T) {
	t.Run("new name", func(t *testing.T) {
		svc, repo := newCategoryService(t)
		repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Music"}, nil)
		repo.On("FindByName", mock.Anything, "Sports").Return(nil, apperrors.NewNotFoundError("category not found"))
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		category, err := svc.Rename(context.Background(), "cat-1", "Sports")

		require.NoError(t, err)
		assert.Equal(t, "Sports", category.Name)
	})

	t.Run("case-only change keeps the stored name", func(t *testing.T) {
		svc, repo := newCategoryService(t)
		repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "music"}, nil)

		category, err := svc.Rename(context.Background(), "cat-1", "MUSIC")

		require.NoError(t, err)
		assert.Equal(t, "music", category.Name)
		repo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unchanged name", func(t *testing.T) {
		svc, repo := newCategoryService(t)
		repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Music"}, nil)

		_, err := svc.Rename(context.Background(), "cat-1", "Music")

		require.NoError(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("name owned by another category", func(t *testing.T) {
		svc, repo := newCategoryService(t)
		repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Music"}, nil)
		repo.On("FindByName", mock.Anything, "sports").Return(&entities.Category{ID: "cat-2", Name: "Sports"}, nil)

		_, err := svc.Rename(context.Background(), "cat-1", "sports")

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("missing category", func(t *testing.T) {
		svc, repo := newCategoryService(t)
		repo.On("GetByID", mock.Anything, "cat-x").Return(nil, apperrors.NewNotFoundError("category not found"))

		_, err := svc.Rename(context.Background(), "cat-x", "Sports")

		assert.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "Category not found: cat-x")
	})
}

func TestCategoryService_Delete(t *testing.T) {
	svc, repo := newCategoryService(t)

	repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Music"}, nil)
	repo.On("Delete", mock.Anything, "cat-1").Return(nil)
	repo.On("GetByID", mock.Anything, "cat-x").Return(nil, apperrors.NewNotFoundError("category not found"))

	assert.NoError(t, svc.Delete(context.Background(), "cat-1"))

	err := svc.Delete(context.Background(), "cat-x")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Category not found: cat-x")
}

func TestCategoryService_Rename_RefreshesListings(t *testing.T) {
	repo := &mocks.CategoryRepository{}
	catalog := &mocks.ServiceRepository{}
	events := &mocks.EventBus{}
	t.Cleanup(func() {
		repo.AssertExpectations(t)
		catalog.AssertExpectations(t)
		events.AssertExpectations(t)
	})
	svc := services.NewCategoryService(&mocks.Transactor{}, repo, catalog, events)

	repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Study"}, nil)
	repo.On("FindByName", mock.Anything, "Lessons").Return(nil, apperrors.NewNotFoundError("category not found"))
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	firstPage := make([]*entities.Service, 100)
	for i := range firstPage {
		firstPage[i] = ownedService(fmt.Sprintf("svc-%d", i), "owner-1")
	}
	filter := repositories.ServiceFilter{CategoryID: "cat-1"}
	atOffset := func(offset int) any {
		return mock.MatchedBy(func(p entities.PageRequest) bool { return p.Offset == offset && p.Limit == 100 })
	}
	catalog.On("Search", mock.Anything, filter, atOffset(0)).
		Return(entities.Page[*entities.Service]{Content: firstPage, TotalElements: 101}, nil).Once()
	catalog.On("Search", mock.Anything, filter, atOffset(100)).
		Return(entities.Page[*entities.Service]{Content: []*entities.Service{ownedService("svc-100", "owner-2")}, TotalElements: 101}, nil).Once()
	events.On("Publish", mock.Anything, providers.EventChannelCatalog, mock.MatchedBy(func(e *entities.CatalogEvent) bool {
		return e.Type == entities.CatalogEventServiceUpdated && e.ServiceID != ""
	})).Return(nil).Times(101)

	category, err := svc.Rename(context.Background(), "cat-1", "Lessons")

	require.NoError(t, err)
	assert.Equal(t, "Lessons", category.Name)
}

func TestCategoryService_Rename_CaseOnlyPublishesNothing(t *testing.T) {
	repo := &mocks.CategoryRepository{}
	catalog := &mocks.ServiceRepository{}
	events := &mocks.EventBus{}
	svc := services.NewCategoryService(&mocks.Transactor{}, repo, catalog, events)

	repo.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Study"}, nil)

	category, err := svc.Rename(context.Background(), "cat-1", "STUDY")

	require.NoError(t, err)
	assert.Equal(t, "Study", category.Name)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	catalog.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
