package providers

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// EventChannelCatalog carries every committed change of the service catalog
const EventChannelCatalog = "catalog:services"

// EventBus defines the interface for publishing and subscribing to catalog events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error

	// Subscribe delivers events until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}
