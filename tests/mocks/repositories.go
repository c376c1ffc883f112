// Package mocks holds testify mocks of the domain ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
)

// ServiceRepository is a mock of repositories.ServiceRepository
type ServiceRepository struct {
	mock.Mock
}

func (m *ServiceRepository) Create(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *ServiceRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

func (m *ServiceRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Service, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

func (m *ServiceRepository) Update(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceRepository) SetStatusByOwner(ctx context.Context, ownerID string, status entities.ServiceStatus) (int64, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ServiceRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceRepository) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(entities.Page[*entities.Service]), args.Error(1)
}

// ServiceSearchIndex is a mock of repositories.ServiceSearchIndex
type ServiceSearchIndex struct {
	mock.Mock
}

func (m *ServiceSearchIndex) Index(ctx context.Context, service *entities.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *ServiceSearchIndex) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceSearchIndex) Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(entities.Page[*entities.Service]), args.Error(1)
}

// ResponseRepository is a mock of repositories.ResponseRepository
type ResponseRepository struct {
	mock.Mock
}

func (m *ResponseRepository) Create(ctx context.Context, response *entities.Response) error {
	return m.Called(ctx, response).Error(0)
}

func (m *ResponseRepository) GetByID(ctx context.Context, id string) (*entities.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Response), args.Error(1)
}

func (m *ResponseRepository) FindBySenderAndService(ctx context.Context, senderID, serviceID string) (*entities.Response, error) {
	args := m.Called(ctx, senderID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Response), args.Error(1)
}

func (m *ResponseRepository) TransitionStatus(ctx context.Context, id string, from, to entities.ResponseStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *ResponseRepository) DeleteActive(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ResponseRepository) ListByService(ctx context.Context, serviceID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	args := m.Called(ctx, serviceID, status, page)
	return args.Get(0).(entities.Page[*entities.Response]), args.Error(1)
}

func (m *ResponseRepository) ListByUser(ctx context.Context, userID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	args := m.Called(ctx, userID, status, page)
	return args.Get(0).(entities.Page[*entities.Response]), args.Error(1)
}

// FeedbackRepository is a mock of repositories.FeedbackRepository
type FeedbackRepository struct {
	mock.Mock
}

func (m *FeedbackRepository) Create(ctx context.Context, feedback *entities.Feedback) error {
	return m.Called(ctx, feedback).Error(0)
}

func (m *FeedbackRepository) GetByID(ctx context.Context, id string) (*entities.Feedback, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Feedback), args.Error(1)
}

func (m *FeedbackRepository) ExistsBySenderAndService(ctx context.Context, senderID, serviceID string) (bool, error) {
	args := m.Called(ctx, senderID, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *FeedbackRepository) Update(ctx context.Context, feedback *entities.Feedback) error {
	return m.Called(ctx, feedback).Error(0)
}

func (m *FeedbackRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FeedbackRepository) ListByService(ctx context.Context, serviceID string, page entities.PageRequest) (entities.Page[*entities.Feedback], error) {
	args := m.Called(ctx, serviceID, page)
	return args.Get(0).(entities.Page[*entities.Feedback]), args.Error(1)
}

// FavoriteRepository is a mock of repositories.FavoriteRepository
type FavoriteRepository struct {
	mock.Mock
}

func (m *FavoriteRepository) Create(ctx context.Context, favorite *entities.Favorite) error {
	return m.Called(ctx, favorite).Error(0)
}

func (m *FavoriteRepository) Exists(ctx context.Context, userID, serviceID string) (bool, error) {
	args := m.Called(ctx, userID, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *FavoriteRepository) Delete(ctx context.Context, userID, serviceID string) (bool, error) {
	args := m.Called(ctx, userID, serviceID)
	return args.Bool(0), args.Error(1)
}

func (m *FavoriteRepository) ListByUser(ctx context.Context, userID string, page entities.PageRequest) (entities.Page[*entities.Favorite], error) {
	args := m.Called(ctx, userID, page)
	return args.Get(0).(entities.Page[*entities.Favorite]), args.Error(1)
}

// CategoryRepository is a mock of repositories.CategoryRepository
type CategoryRepository struct {
	mock.Mock
}

func (m *CategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Category), args.Error(1)
}

func (m *CategoryRepository) GetByID(ctx context.Context, id string) (*entities.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Category), args.Error(1)
}

func (m *CategoryRepository) FindByName(ctx context.Context, name string) (*entities.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Category), args.Error(1)
}

func (m *CategoryRepository) Create(ctx context.Context, category *entities.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *CategoryRepository) Update(ctx context.Context, category *entities.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *CategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// UserRepository is a mock of repositories.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// Transactor runs the callback inline and records how often it was used
type Transactor struct {
	Calls int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}
