package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// ServiceRepository defines the interface for catalog data operations
type ServiceRepository interface {
	// Create inserts a service
	Create(ctx context.Context, service *entities.Service) error

	// GetByID retrieves a service with its owner and category projections
	GetByID(ctx context.Context, id string) (*entities.Service, error)

	// GetByIDs retrieves the services that exist among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error)

	// ListByOwner returns every service of an owner, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Service, error)

	// Update writes every mutable column of a service
	Update(ctx context.Context, service *entities.Service) error

	// SetStatusByOwner changes the status of all services of an owner
	SetStatusByOwner(ctx context.Context, ownerID string, status entities.ServiceStatus) (int64, error)

	// Delete hard-deletes a service; dependent rows cascade in storage
	Delete(ctx context.Context, id string) error

	// Search returns the page of services matching every clause of filter
	Search(ctx context.Context, filter ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error)
}

// ServiceSearchIndex is an external full-text index of the catalog (e.g. Typesense)
type ServiceSearchIndex interface {
	// Index upserts a service document
	Index(ctx context.Context, service *entities.Service) error

	// Delete removes a service document
	Delete(ctx context.Context, id string) error

	// Search queries the index with the same filter semantics as ServiceRepository.Search
	Search(ctx context.Context, filter ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error)
}
