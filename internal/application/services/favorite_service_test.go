package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moysha/servicecatalog/internal/application/loaders"
	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
	"github.com/moysha/servicecatalog/tests/mocks"
)

func newFavoriteService(t *testing.T) (*services.FavoriteService, *mocks.FavoriteRepository, *mocks.ServiceRepository, *mocks.UserRepository) {
	favorites := &mocks.FavoriteRepository{}
	catalog := &mocks.ServiceRepository{}
	users := &mocks.UserRepository{}
	t.Cleanup(func() {
		favorites.AssertExpectations(t)
		catalog.AssertExpectations(t)
		users.AssertExpectations(t)
	})
	return services.NewFavoriteService(&mocks.Transactor{}, favorites, catalog, users), favorites, catalog, users
}

func TestFavoriteService_Add(t *testing.T) {
	svc, favorites, catalog, users := newFavoriteService(t)

	favorites.On("Exists", mock.Anything, "user-1", "svc-1").Return(false, nil)
	users.On("GetByID", mock.Anything, "user-1").Return(&entities.User{ID: "user-1"}, nil)
	catalog.On("GetByID", mock.Anything, "svc-1").Return(ownedService("svc-1", "owner-1"), nil)
	favorites.On("Create", mock.Anything, mock.AnythingOfType("*entities.Favorite")).Return(nil)

	favorite, err := svc.Add(context.Background(), "svc-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", favorite.UserID)
	require.NotNil(t, favorite.Service)
	assert.Equal(t, "svc-1", favorite.Service.ID)
	assert.False(t, favorite.CreatedAt.IsZero())
}

func TestFavoriteService_Add_Conflict(t *testing.T) {
	svc, favorites, _, users := newFavoriteService(t)

	favorites.On("Exists", mock.Anything, "user-1", "svc-1").Return(true, nil)

	_, err := svc.Add(context.Background(), "svc-1", "user-1")

	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "Service already in favorites")
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestFavoriteService_Add_MissingService(t *testing.T) {
	svc, favorites, catalog, users := newFavoriteService(t)

	favorites.On("Exists", mock.Anything, "user-1", "svc-x").Return(false, nil)
	users.On("GetByID", mock.Anything, "user-1").Return(&entities.User{ID: "user-1"}, nil)
	catalog.On("GetByID", mock.Anything, "svc-x").Return(nil, apperrors.NewNotFoundError("service not found"))

	_, err := svc.Add(context.Background(), "svc-x", "user-1")

	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Service not found: svc-x")
}

func TestFavoriteService_Remove(t *testing.T) {
	svc, favorites, _, _ := newFavoriteService(t)

	favorites.On("Delete", mock.Anything, "user-1", "svc-1").Return(true, nil).Once()
	favorites.On("Delete", mock.Anything, "user-1", "svc-2").Return(false, nil).Once()

	assert.NoError(t, svc.Remove(context.Background(), "svc-1", "user-1"))

	err := svc.Remove(context.Background(), "svc-2", "user-1")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Favorite not found")
}

func TestFavoriteService_List_AttachesProjections(t *testing.T) {
	svc, favorites, catalog, _ := newFavoriteService(t)
	page := entities.PageRequest{Limit: 20}

	favorites.On("ListByUser", mock.Anything, "user-1", page).Return(entities.NewPage([]*entities.Favorite{
		{UserID: "user-1", ServiceID: "svc-1"},
		{UserID: "user-1", ServiceID: "svc-2"},
	}, 2, page), nil)
	catalog.On("GetByIDs", mock.Anything, []string{"svc-1", "svc-2"}).
		Return([]*entities.Service{ownedService("svc-2", "owner-2"), ownedService("svc-1", "owner-1")}, nil).Once()

	result, err := svc.List(context.Background(), "user-1", page)

	require.NoError(t, err)
	require.Len(t, result.Content, 2)
	assert.Equal(t, "svc-1", result.Content[0].Service.ID)
	assert.Equal(t, "svc-2", result.Content[1].Service.ID)
}

func TestFavoriteService_List_UsesRequestLoader(t *testing.T) {
	svc, favorites, catalog, _ := newFavoriteService(t)
	page := entities.PageRequest{Limit: 20}

	favorites.On("ListByUser", mock.Anything, "user-1", page).Return(entities.NewPage([]*entities.Favorite{
		{UserID: "user-1", ServiceID: "svc-1"},
		{UserID: "user-1", ServiceID: "svc-gone"},
	}, 2, page), nil)
	catalog.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]*entities.Service{ownedService("svc-1", "owner-1")}, nil).Once()

	ctx := loaders.WithLoaders(context.Background(), loaders.NewLoaders(catalog))
	result, err := svc.List(ctx, "user-1", page)

	require.NoError(t, err)
	assert.Equal(t, "svc-1", result.Content[0].Service.ID)
	assert.Nil(t, result.Content[1].Service)
}

func TestFavoriteService_List_Empty(t *testing.T) {
	svc, favorites, catalog, _ := newFavoriteService(t)
	page := entities.PageRequest{Limit: 20}

	favorites.On("ListByUser", mock.Anything, "user-1", page).Return(entities.NewPage[*entities.Favorite](nil, 0, page), nil)

	result, err := svc.List(context.Background(), "user-1", page)

	require.NoError(t, err)
	assert.Empty(t, result.Content)
	catalog.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}
