package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// CacheProvider is a mock of providers.CacheProvider
type CacheProvider struct {
	mock.Mock
}

func (m *CacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *CacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *CacheProvider) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *CacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// EventBus is a mock of providers.EventBus
type EventBus struct {
	mock.Mock
}

func (m *EventBus) Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error {
	return m.Called(ctx, channel, event).Error(0)
}

func (m *EventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.CatalogEvent), args.Error(1)
}

func (m *EventBus) Close() error {
	return m.Called().Error(0)
}
