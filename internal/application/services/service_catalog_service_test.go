package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
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

type catalogFixture struct {
	tx         *mocks.Transactor
	services   *mocks.ServiceRepository
	users      *mocks.UserRepository
	categories *mocks.CategoryRepository
	index      *mocks.ServiceSearchIndex
	events     *mocks.EventBus
	svc        *services.ServiceCatalogService
}

func newCatalogFixture(t *testing.T, withIndex bool) *catalogFixture {
	f := &catalogFixture{
		tx:         &mocks.Transactor{},
		services:   &mocks.ServiceRepository{},
		users:      &mocks.UserRepository{},
		categories: &mocks.CategoryRepository{},
		events:     &mocks.EventBus{},
	}
	var index repositories.ServiceSearchIndex
	if withIndex {
		f.index = &mocks.ServiceSearchIndex{}
		index = f.index
	}
	f.svc = services.NewServiceCatalogService(f.tx, f.services, f.users, f.categories, index, f.events, nil)

	t.Cleanup(func() {
		f.services.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.categories.AssertExpectations(t)
		f.events.AssertExpectations(t)
		if f.index != nil {
			f.index.AssertExpectations(t)
		}
	})
	return f
}

func (f *catalogFixture) expectEvent(eventType entities.CatalogEventType, serviceID string) {
	f.events.On("Publish", mock.Anything, providers.EventChannelCatalog, mock.MatchedBy(func(e *entities.CatalogEvent) bool {
		return e.Type == eventType && e.ServiceID == serviceID
	})).Return(nil).Once()
}

func ownedService(id, ownerID string) *entities.Service {
	return &entities.Service{
		ID:          id,
		OwnerID:     ownerID,
		CategoryID:  "cat-1",
		Title:       "Math tutoring",
		Description: "Algebra and geometry",
		Type:        entities.ServiceTypeOffer,
		Status:      entities.ServiceStatusActive,
		Price:       decimal.NewFromInt(1500),
		CreatedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestServiceCatalogService_Create(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t, false)

	f.users.On("GetByID", mock.Anything, "owner-1").Return(&entities.User{ID: "owner-1", Email: "owner@example.com"}, nil)
	f.categories.On("GetByID", mock.Anything, "cat-1").Return(&entities.Category{ID: "cat-1", Name: "Study"}, nil)
	f.services.On("Create", mock.Anything, mock.AnythingOfType("*entities.Service")).Return(nil)
	f.events.On("Publish", mock.Anything, providers.EventChannelCatalog, mock.Anything).Return(nil)

	service, err := f.svc.Create(ctx, services.CreateServiceInput{
		OwnerID:     "owner-1",
		CategoryID:  "cat-1",
		Title:       "Math tutoring",
		Description: "Algebra",
		Type:        entities.ServiceTypeOffer,
		Price:       decimal.RequireFromString("1500.005"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, service.ID)
	assert.Equal(t, entities.ServiceStatusActive, service.Status)
	assert.False(t, service.Barter, "absent barter defaults to false")
	assert.Equal(t, "owner@example.com", service.OwnerEmail)
	assert.Equal(t, "Study", service.CategoryName)
	assert.Equal(t, "1500.01", service.Price.StringFixed(2))
	assert.False(t, service.CreatedAt.IsZero())
	assert.Equal(t, 1, f.tx.Calls)
}

func TestServiceCatalogService_Create_OwnerNotFound(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.users.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("user not found"))

	_, err := f.svc.Create(context.Background(), services.CreateServiceInput{
		OwnerID:    "ghost",
		CategoryID: "cat-1",
		Type:       entities.ServiceTypeOrder,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Owner not found: ghost")
	f.services.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestServiceCatalogService_Create_CategoryNotFound(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.users.On("GetByID", mock.Anything, "owner-1").Return(&entities.User{ID: "owner-1"}, nil)
	f.categories.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("category not found"))

	_, err := f.svc.Create(context.Background(), services.CreateServiceInput{
		OwnerID:    "owner-1",
		CategoryID: "missing",
		Type:       entities.ServiceTypeOffer,
	})

	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Category not found: missing")
}

func TestServiceCatalogService_Create_RejectsInvalidInput(t *testing.T) {
	f := newCatalogFixture(t, false)

	_, err := f.svc.Create(context.Background(), services.CreateServiceInput{Type: "RENT"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = f.svc.Create(context.Background(), services.CreateServiceInput{
		Type:  entities.ServiceTypeOffer,
		Price: decimal.NewFromInt(-1),
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, 0, f.tx.Calls)
}

func TestServiceCatalogService_Update_SparseMerge(t *testing.T) {
	f := newCatalogFixture(t, true)
	existing := ownedService("svc-1", "owner-1")
	existing.Place = "Library"

	f.services.On("GetByID", mock.Anything, "svc-1").Return(existing, nil)
	f.services.On("Update", mock.Anything, mock.AnythingOfType("*entities.Service")).Return(nil)
	f.index.On("Index", mock.Anything, mock.AnythingOfType("*entities.Service")).Return(nil)
	f.expectEvent(entities.CatalogEventServiceUpdated, "svc-1")

	title := "Physics tutoring"
	barter := true
	updated, err := f.svc.Update(context.Background(), "svc-1", services.UpdateServiceInput{
		RequesterID: "owner-1",
		Title:       &title,
		Barter:      &barter,
	})

	require.NoError(t, err)
	assert.Equal(t, "Physics tutoring", updated.Title)
	assert.True(t, updated.Barter)
	assert.Equal(t, "Algebra and geometry", updated.Description)
	assert.Equal(t, "Library", updated.Place)
	assert.Equal(t, "1500", updated.Price.String())
	f.categories.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestServiceCatalogService_Update_ResolvesChangedCategory(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)
	f.categories.On("GetByID", mock.Anything, "cat-2").Return(&entities.Category{ID: "cat-2", Name: "Music"}, nil)
	f.services.On("Update", mock.Anything, mock.MatchedBy(func(s *entities.Service) bool {
		return s.CategoryID == "cat-2"
	})).Return(nil)
	f.expectEvent(entities.CatalogEventServiceUpdated, "svc-1")

	category := "cat-2"
	updated, err := f.svc.Update(context.Background(), "svc-1", services.UpdateServiceInput{
		RequesterID: "owner-1",
		CategoryID:  &category,
	})

	require.NoError(t, err)
	assert.Equal(t, "Music", updated.CategoryName)
}

func TestServiceCatalogService_Update_RejectsNonOwner(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)

	title := "Hijacked"
	_, err := f.svc.Update(context.Background(), "svc-1", services.UpdateServiceInput{
		RequesterID: "intruder",
		Title:       &title,
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadRequest))
	assert.Contains(t, err.Error(), "Only owner can update the service")
	f.services.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestServiceCatalogService_Update_NotFound(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-x").Return(nil, apperrors.NewNotFoundError("service not found"))

	_, err := f.svc.Update(context.Background(), "svc-x", services.UpdateServiceInput{RequesterID: "owner-1"})

	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Service not found: svc-x")
}

func TestServiceCatalogService_ChangeStatus_AnyToAny(t *testing.T) {
	f := newCatalogFixture(t, false)
	archived := ownedService("svc-1", "owner-1")
	archived.Status = entities.ServiceStatusArchived

	f.services.On("GetByID", mock.Anything, "svc-1").Return(archived, nil)
	f.services.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.expectEvent(entities.CatalogEventServiceUpdated, "svc-1")

	service, err := f.svc.ChangeStatus(context.Background(), "svc-1", "owner-1", entities.ServiceStatusActive)

	require.NoError(t, err)
	assert.Equal(t, entities.ServiceStatusActive, service.Status)
}

func TestServiceCatalogService_ChangeStatus_RejectsNonOwner(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)

	_, err := f.svc.ChangeStatus(context.Background(), "svc-1", "other", entities.ServiceStatusArchived)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadRequest))
	assert.Contains(t, err.Error(), "Only owner can change status")
}

func TestServiceCatalogService_ChangeOwnerServicesStatus(t *testing.T) {
	f := newCatalogFixture(t, false)

	first := ownedService("svc-1", "owner-1")
	second := ownedService("svc-2", "owner-1")
	first.Status, second.Status = entities.ServiceStatusArchived, entities.ServiceStatusArchived

	f.users.On("GetByID", mock.Anything, "owner-1").Return(&entities.User{ID: "owner-1"}, nil)
	f.services.On("SetStatusByOwner", mock.Anything, "owner-1", entities.ServiceStatusArchived).Return(int64(2), nil)
	f.services.On("ListByOwner", mock.Anything, "owner-1").Return([]*entities.Service{first, second}, nil)
	f.expectEvent(entities.CatalogEventServiceUpdated, "svc-1")
	f.expectEvent(entities.CatalogEventServiceUpdated, "svc-2")

	changed, err := f.svc.ChangeOwnerServicesStatus(context.Background(), "owner-1", "owner-1", entities.ServiceStatusArchived)

	require.NoError(t, err)
	assert.Len(t, changed, 2)
	assert.Equal(t, 1, f.tx.Calls)
}

func TestServiceCatalogService_ChangeOwnerServicesStatus_RejectsOtherRequester(t *testing.T) {
	f := newCatalogFixture(t, false)

	_, err := f.svc.ChangeOwnerServicesStatus(context.Background(), "owner-1", "other", entities.ServiceStatusArchived)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadRequest))
	assert.Equal(t, 0, f.tx.Calls)
}

func TestServiceCatalogService_Delete(t *testing.T) {
	f := newCatalogFixture(t, true)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)
	f.services.On("Delete", mock.Anything, "svc-1").Return(nil)
	f.index.On("Delete", mock.Anything, "svc-1").Return(errors.New("typesense down"))
	f.expectEvent(entities.CatalogEventServiceDeleted, "svc-1")

	err := f.svc.Delete(context.Background(), "svc-1", "owner-1")

	require.NoError(t, err, "index failures are not surfaced")
}

func TestServiceCatalogService_Delete_RejectsNonOwner(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)

	err := f.svc.Delete(context.Background(), "svc-1", "other")

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeBadRequest))
	assert.Contains(t, err.Error(), "Only owner can delete the service")
	f.services.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestServiceCatalogService_PublishFailureIsNotSurfaced(t *testing.T) {
	f := newCatalogFixture(t, false)

	f.services.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)
	f.services.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, providers.EventChannelCatalog, mock.Anything).Return(errors.New("redis down"))

	_, err := f.svc.ChangeStatus(context.Background(), "svc-1", "owner-1", entities.ServiceStatusArchived)

	assert.NoError(t, err)
}

func TestServiceCatalogService_Search(t *testing.T) {
	f := newCatalogFixture(t, false)

	filter := repositories.ServiceFilter{TitleLike: "math", Type: entities.ServiceTypeOffer}
	page := entities.PageRequest{Offset: 0, Limit: 10}
	expected := entities.NewPage([]*entities.Service{ownedService("svc-1", "owner-1")}, 1, page)

	f.services.On("Search", mock.Anything, filter, page).Return(expected, nil)

	result, err := f.svc.Search(context.Background(), filter, page)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalElements)
	assert.Len(t, result.Content, 1)
}

func TestServiceCatalogService_Suggest_FallsBackToStorage(t *testing.T) {
	f := newCatalogFixture(t, true)

	filter := repositories.ServiceFilter{TitleLike: "math", Status: entities.ServiceStatusActive}
	page := entities.PageRequest{Limit: 5}

	f.index.On("Search", mock.Anything, filter, page).Return(entities.Page[*entities.Service]{}, errors.New("timeout"))
	f.services.On("Search", mock.Anything, filter, page).
		Return(entities.NewPage([]*entities.Service{ownedService("svc-1", "owner-1")}, 1, page), nil)

	suggestions, err := f.svc.Suggest(context.Background(), "  math ", 5)

	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestServiceCatalogService_Suggest_BlankQuery(t *testing.T) {
	f := newCatalogFixture(t, true)

	suggestions, err := f.svc.Suggest(context.Background(), "   ", 5)

	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestServiceCatalogService_Suggest_DropsFuzzyIndexHits(t *testing.T) {
	f := newCatalogFixture(t, true)

	filter := repositories.ServiceFilter{TitleLike: "math", Status: entities.ServiceStatusActive}
	page := entities.PageRequest{Limit: 5}

	exact := ownedService("svc-1", "owner-1")
	fuzzy := ownedService("svc-2", "owner-2")
	fuzzy.Title = "Bath repair"
	f.index.On("Search", mock.Anything, filter, page).
		Return(entities.NewPage([]*entities.Service{exact, fuzzy}, 2, page), nil)

	suggestions, err := f.svc.Suggest(context.Background(), "math", 5)

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "svc-1", suggestions[0].ID)
	f.services.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}
