package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// FeedbackService handles ratings left for listings.
type FeedbackService struct {
	tx       repositories.Transactor
	feedback repositories.FeedbackRepository
	services repositories.ServiceRepository
	users    repositories.UserRepository
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(
	tx repositories.Transactor,
	feedback repositories.FeedbackRepository,
	services repositories.ServiceRepository,
	users repositories.UserRepository,
) *FeedbackService {
	return &FeedbackService{tx: tx, feedback: feedback, services: services, users: users}
}

// Create stores the sender's single rating of a listing.
func (s *FeedbackService) Create(ctx context.Context, serviceID, senderID string, rate int, review string) (*entities.Feedback, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if err := requireID("senderId", senderID); err != nil {
		return nil, err
	}

	var feedback *entities.Feedback
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		service, err := loadService(ctx, s.services, serviceID)
		if err != nil {
			return err
		}
		if service.IsOwnedBy(senderID) {
			return apperrors.NewBadRequestError("Owner cannot rate own service")
		}

		exists, err := s.feedback.ExistsBySenderAndService(ctx, senderID, serviceID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewConflictError(fmt.Sprintf("Feedback already exists for user %s", senderID))
		}
		if _, err := loadUser(ctx, s.users, senderID); err != nil {
			return err
		}

		feedback = &entities.Feedback{
			ID:             uuid.New().String(),
			ServiceID:      serviceID,
			SenderID:       senderID,
			ServiceOwnerID: service.OwnerID,
			Rate:           rate,
			Review:         review,
			CreatedAt:      time.Now().UTC(),
		}
		return s.feedback.Create(ctx, feedback)
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

// Update rewrites rate and review. Only the original sender may do so.
func (s *FeedbackService) Update(ctx context.Context, feedbackID, senderID string, rate int, review string) (*entities.Feedback, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}

	var feedback *entities.Feedback
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		feedback, err = s.feedback.GetByID(ctx, feedbackID)
		if err != nil {
			return notFoundAs(err, "Feedback not found: %s", feedbackID)
		}
		if feedback.SenderID != senderID {
			return apperrors.NewBadRequestError("Only author can update feedback")
		}
		feedback.Rate = rate
		feedback.Review = review
		return s.feedback.Update(ctx, feedback)
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

// Delete removes feedback on behalf of its sender or the listing owner.
func (s *FeedbackService) Delete(ctx context.Context, feedbackID, requesterID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		feedback, err := s.feedback.GetByID(ctx, feedbackID)
		if err != nil {
			return notFoundAs(err, "Feedback not found: %s", feedbackID)
		}
		if feedback.SenderID != requesterID && feedback.ServiceOwnerID != requesterID {
			return apperrors.NewBadRequestError("Only author or service owner can delete feedback")
		}
		return s.feedback.Delete(ctx, feedbackID)
	})
}

// ListByService pages the feedback left for a listing. An unknown listing is NotFound.
func (s *FeedbackService) ListByService(ctx context.Context, serviceID string, page entities.PageRequest) (entities.Page[*entities.Feedback], error) {
	if _, err := loadService(ctx, s.services, serviceID); err != nil {
		return entities.Page[*entities.Feedback]{}, err
	}
	return s.feedback.ListByService(ctx, serviceID, page)
}

func validateRate(rate int) error {
	if !entities.ValidRate(rate) {
		return apperrors.NewValidationError(fmt.Sprintf("rate must be between %d and %d", entities.FeedbackMinRate, entities.FeedbackMaxRate))
	}
	return nil
}
