package repositories

import (
	"context"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// FeedbackRepository defines the interface for feedback operations
type FeedbackRepository interface {
	// Create inserts feedback; a second row for the same (sender, service) yields Conflict
	Create(ctx context.Context, feedback *entities.Feedback) error

	// GetByID retrieves feedback with the owner of its service, NotFound if absent
	GetByID(ctx context.Context, id string) (*entities.Feedback, error)

	// ExistsBySenderAndService reports whether the sender already rated the service
	ExistsBySenderAndService(ctx context.Context, senderID, serviceID string) (bool, error)

	// Update writes rate and review
	Update(ctx context.Context, feedback *entities.Feedback) error

	// Delete removes feedback, NotFound if absent
	Delete(ctx context.Context, id string) error

	// ListByService pages the feedback left for a service
	ListByService(ctx context.Context, serviceID string, page entities.PageRequest) (entities.Page[*entities.Feedback], error)
}
