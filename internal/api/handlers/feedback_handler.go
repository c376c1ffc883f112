package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/providers"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

const (
	feedbackRateLimit  = 10
	feedbackRateWindow = time.Hour
)

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Create(ctx context.Context, serviceID, senderID string, rate int, review string) (*entities.Feedback, error)
	Update(ctx context.Context, feedbackID, senderID string, rate int, review string) (*entities.Feedback, error)
	Delete(ctx context.Context, feedbackID, requesterID string) error
	ListByService(ctx context.Context, serviceID string, page entities.PageRequest) (entities.Page[*entities.Feedback], error)
}

// FeedbackHandler handles feedback HTTP requests.
type FeedbackHandler struct {
	service FeedbackService
	paging  Paging
	limiter *writeLimiter
}

// NewFeedbackHandler creates a new feedback handler. cache may be nil.
func NewFeedbackHandler(service FeedbackService, paging Paging, cache providers.CacheProvider) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		paging:  paging,
		limiter: newWriteLimiter("feedback:rate:", feedbackRateLimit, feedbackRateWindow, cache),
	}
}

type feedbackRequest struct {
	SenderID string `json:"senderId"`
	Rate     int    `json:"rate"`
	Review   string `json:"review"`
}

func (req feedbackRequest) validate() error {
	if !entities.ValidRate(req.Rate) {
		return apperrors.NewValidationError("rate must be between 1 and 5")
	}
	return validateText("review", req.Review, entities.FeedbackReviewMaxLength, false)
}

// CreateFeedback handles POST /api/services/{serviceId}/feedback
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	req, senderID, ok := h.decode(w, r)
	if !ok {
		return
	}

	feedback, err := h.service.Create(r.Context(), r.PathValue("serviceId"), senderID, req.Rate, req.Review)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, feedback)
}

// UpdateFeedback handles PUT /api/services/{serviceId}/feedback/{feedbackId}
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	req, senderID, ok := h.decode(w, r)
	if !ok {
		return
	}

	feedback, err := h.service.Update(r.Context(), r.PathValue("feedbackId"), senderID, req.Rate, req.Review)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, feedback)
}

// DeleteFeedback handles DELETE /api/services/{serviceId}/feedback/{feedbackId}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r, "")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), r.PathValue("feedbackId"), requester); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFeedback handles GET /api/services/{serviceId}/feedback
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	page, err := h.paging.Parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.service.ListByService(r.Context(), r.PathValue("serviceId"), page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// decode reads and validates a feedback write, applying the per-sender rate limit
func (h *FeedbackHandler) decode(w http.ResponseWriter, r *http.Request) (feedbackRequest, string, bool) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return req, "", false
	}
	senderID, err := requesterID(r, req.SenderID)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewValidationError("senderId is required"))
		return req, "", false
	}
	if err := req.validate(); err != nil {
		respondWithAppError(w, r, err)
		return req, "", false
	}

	allowed, retryAfter := h.limiter.allow(r.Context(), senderID+"|"+clientIP(r))
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return req, "", false
	}
	return req, senderID, true
}
