package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// ResponseService handles the lifecycle of responses to listings
type ResponseService struct {
	tx        repositories.Transactor
	responses repositories.ResponseRepository
	services  repositories.ServiceRepository
	users     repositories.UserRepository
}

// NewResponseService creates a new response service
func NewResponseService(
	tx repositories.Transactor,
	responses repositories.ResponseRepository,
	services repositories.ServiceRepository,
	users repositories.UserRepository,
) *ResponseService {
	return &ResponseService{
		tx:        tx,
		responses: responses,
		services:  services,
		users:     users,
	}
}

// Respond records senderID's response to a listing.
// A previously archived response is reactivated in place and keeps its id.
func (s *ResponseService) Respond(ctx context.Context, serviceID, senderID string) (*entities.Response, error) {
	if err := requireID("senderId", senderID); err != nil {
		return nil, err
	}

	var response *entities.Response
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		service, err := loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}
		if service.IsOwnedBy(senderID) {
			return apperrors.NewBadRequestError("Owner cannot respond to own service")
		}
		if _, err := loadUser(ctx, s.users, senderID); err != nil {
			return err
		}

		existing, err := s.responses.FindBySenderAndService(ctx, senderID, serviceID)
		switch {
		case err == nil:
			if existing.IsActive() {
				return apperrors.NewConflictError("Response already exists")
			}
			ok, err := s.responses.TransitionStatus(ctx, existing.ID, entities.ResponseStatusArchived, entities.ResponseStatusActive)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.NewConflictError("Response already exists")
			}
			existing.Status = entities.ResponseStatusActive
			response = existing
			return nil
		case apperrors.IsNotFound(err):
			response = &entities.Response{
				ID:             uuid.NewString(),
				ServiceID:      serviceID,
				SenderID:       senderID,
				ServiceOwnerID: service.OwnerID,
				Status:         entities.ResponseStatusActive,
				CreatedAt:      time.Now().UTC(),
			}
			return s.responses.Create(ctx, response)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("response_id", response.ID).
		Str("service_id", serviceID).
		Msg("response submitted")
	return response, nil
}

// ChangeStatus archives a response. Archiving is the only allowed transition.
func (s *ResponseService) ChangeStatus(ctx context.Context, responseID, requesterID string, status entities.ResponseStatus) (*entities.Response, error) {
	var response *entities.Response
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		response, err = s.responses.GetByID(ctx, responseID)
		if err != nil {
			return notFoundAs(err, "Response not found: %s", responseID)
		}
		if status != entities.ResponseStatusArchived {
			return apperrors.NewBadRequestError("Only archiving is allowed")
		}
		if !response.CanBeManagedBy(requesterID) {
			return apperrors.NewBadRequestError("Only author or service owner can change response status")
		}
		if !response.IsActive() {
			return apperrors.NewBadRequestError("Response already archived")
		}

		ok, err := s.responses.TransitionStatus(ctx, responseID, entities.ResponseStatusActive, entities.ResponseStatusArchived)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewBadRequestError("Response already archived")
		}
		response.Status = entities.ResponseStatusArchived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Delete removes an active response on behalf of its sender or the listing owner
func (s *ResponseService) Delete(ctx context.Context, responseID, requesterID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		response, err := s.responses.GetByID(ctx, responseID)
		if err != nil {
			return notFoundAs(err, "Response not found: %s", responseID)
		}
		if !response.IsActive() {
			return apperrors.NewBadRequestError("Only active response can be deleted")
		}
		if !response.CanBeManagedBy(requesterID) {
			return apperrors.NewBadRequestError("Only author or service owner can delete response")
		}

		ok, err := s.responses.DeleteActive(ctx, responseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewBadRequestError("Only active response can be deleted")
		}
		return nil
	})
}

// ListByService pages the responses of a listing, optionally by status
func (s *ResponseService) ListByService(ctx context.Context, serviceID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	if _, err := loadService(ctx, s.services, serviceID); err != nil {
		return entities.Page[*entities.Response]{}, err
	}
	return s.responses.ListByService(ctx, serviceID, status, page)
}

// ListByUser pages the responses a user sent or received as a listing owner
func (s *ResponseService) ListByUser(ctx context.Context, userID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error) {
	return s.responses.ListByUser(ctx, userID, status, page)
}
