package handlers

import (
	"context"
	"net/http"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

// ResponseLifecycle is the part of the response service the HTTP layer uses
type ResponseLifecycle interface {
	Respond(ctx context.Context, serviceID, senderID string) (*entities.Response, error)
	ChangeStatus(ctx context.Context, responseID, requesterID string, status entities.ResponseStatus) (*entities.Response, error)
	Delete(ctx context.Context, responseID, requesterID string) error
	ListByService(ctx context.Context, serviceID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error)
	ListByUser(ctx context.Context, userID string, status *entities.ResponseStatus, page entities.PageRequest) (entities.Page[*entities.Response], error)
}

// ResponseHandler handles response HTTP requests
type ResponseHandler struct {
	responses ResponseLifecycle
	paging    Paging
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responses ResponseLifecycle, paging Paging) *ResponseHandler {
	return &ResponseHandler{responses: responses, paging: paging}
}

type createResponseRequest struct {
	SenderID string `json:"senderId"`
}

// Respond handles POST /api/services/{serviceId}/responses
func (h *ResponseHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req createResponseRequest
	if err := decodeJSON(r, &req); err != nil && r.Header.Get(UserIDHeader) == "" {
		respondWithAppError(w, r, err)
		return
	}
	senderID, err := requesterID(r, req.SenderID)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewValidationError("senderId is required"))
		return
	}

	response, err := h.responses.Respond(r.Context(), r.PathValue("serviceId"), senderID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, response)
}

// ChangeResponseStatus handles PATCH /api/services/{serviceId}/responses/{responseId}/status
func (h *ResponseHandler) ChangeResponseStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	requester, err := requesterID(r, req.RequesterID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	status := entities.ResponseStatus(req.Status)
	if !status.Valid() {
		respondWithAppError(w, r, apperrors.NewValidationError("status must be ACTIVE or ARCHIVED"))
		return
	}

	response, err := h.responses.ChangeStatus(r.Context(), r.PathValue("responseId"), requester, status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, response)
}

// DeleteResponse handles DELETE /api/services/{serviceId}/responses/{responseId}
func (h *ResponseHandler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r, "")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.responses.Delete(r.Context(), r.PathValue("responseId"), requester); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServiceResponses handles GET /api/services/{serviceId}/responses[?status=]
func (h *ResponseHandler) ListServiceResponses(w http.ResponseWriter, r *http.Request) {
	status, err := statusQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	page, err := h.paging.Parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.responses.ListByService(r.Context(), r.PathValue("serviceId"), status, page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ListUserResponses handles GET /api/users/{userId}/responses[?status=]
func (h *ResponseHandler) ListUserResponses(w http.ResponseWriter, r *http.Request) {
	status, err := statusQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.listUserResponses(w, r, status)
}

// ListActiveUserResponses handles GET /api/users/{userId}/responses/active
func (h *ResponseHandler) ListActiveUserResponses(w http.ResponseWriter, r *http.Request) {
	status := entities.ResponseStatusActive
	h.listUserResponses(w, r, &status)
}

// ListArchivedUserResponses handles GET /api/users/{userId}/responses/archived
func (h *ResponseHandler) ListArchivedUserResponses(w http.ResponseWriter, r *http.Request) {
	status := entities.ResponseStatusArchived
	h.listUserResponses(w, r, &status)
}

func (h *ResponseHandler) listUserResponses(w http.ResponseWriter, r *http.Request, status *entities.ResponseStatus) {
	page, err := h.paging.Parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.responses.ListByUser(r.Context(), r.PathValue("userId"), status, page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func statusQuery(r *http.Request) (*entities.ResponseStatus, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, nil
	}
	status := entities.ResponseStatus(raw)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status must be ACTIVE or ARCHIVED")
	}
	return &status, nil
}
