package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/tests/mocks"
)

func TestCacheWarmingService_WarmCache(t *testing.T) {
	catalog := &mocks.ServiceRepository{}
	categories := &mocks.CategoryRepository{}

	categories.On("List", mock.Anything).Return([]*entities.Category{{ID: "cat-1", Name: "Music"}}, nil)
	catalog.On("Search", mock.Anything, repositories.ServiceFilter{Status: entities.ServiceStatusActive}, mock.MatchedBy(func(p entities.PageRequest) bool {
		return p.Limit == services.WarmServiceCount && len(p.Sort) == 1 && p.Sort[0].Desc
	})).Return(entities.NewPage([]*entities.Service{ownedService("svc-1", "o"), ownedService("svc-2", "o")}, 2, entities.PageRequest{}), nil)
	catalog.On("GetByIDs", mock.Anything, []string{"svc-1", "svc-2"}).Return([]*entities.Service{}, nil)

	err := services.NewCacheWarmingService(catalog, categories).WarmCache(context.Background())

	assert.NoError(t, err)
	catalog.AssertExpectations(t)
	categories.AssertExpectations(t)
}

func TestCacheWarmingService_PartialFailureIsTolerated(t *testing.T) {
	catalog := &mocks.ServiceRepository{}
	categories := &mocks.CategoryRepository{}

	categories.On("List", mock.Anything).Return(nil, errors.New("redis down"))
	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(entities.NewPage[*entities.Service](nil, 0, entities.PageRequest{}), nil)

	assert.NoError(t, services.NewCacheWarmingService(catalog, categories).WarmCache(context.Background()))
}

func TestCacheWarmingService_TotalFailure(t *testing.T) {
	catalog := &mocks.ServiceRepository{}
	categories := &mocks.CategoryRepository{}

	categories.On("List", mock.Anything).Return(nil, errors.New("db down"))
	catalog.On("Search", mock.Anything, mock.Anything, mock.Anything).
		Return(entities.Page[*entities.Service]{}, errors.New("db down"))

	assert.Error(t, services.NewCacheWarmingService(catalog, categories).WarmCache(context.Background()))
}
