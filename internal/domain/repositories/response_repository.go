package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// ResponseRepository defines the interface for response data operations.
// Returned responses carry ServiceOwnerID read from the services table.
type ResponseRepository interface {
	// Create inserts a response; a second row for the same (sender, service) yields Conflict
	Create(ctx context.Context, response *entities.Response) error

	// GetByID retrieves a response, NotFound if absent
	GetByID(ctx context.Context, id string) (*entities.Response, error)

	// FindBySenderAndService retrieves the single row for the pair, NotFound if absent
	FindBySenderAndService(ctx context.Context, senderID, serviceID string) (*entities.Response, error)

	// TransitionStatus moves a response from one status to another.
	// It reports false when the row was not in the expected status.
	TransitionStatus(ctx context.Context, id string, from, to entities.ResponseStatus) (bool, error)

	// DeleteActive removes a response that is still active.
	// It reports false when no active row matched.
	DeleteActive(ctx context.Context, id string) (bool, error)

	// ListByService pages the responses of a service, optionally by status
	ListByService(ctx context.Context, serviceID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error)

	// ListByUser pages responses the user sent or received as service owner
	ListByUser(ctx context.Context, userID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error)
}
