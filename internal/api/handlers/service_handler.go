package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

const defaultSuggestLimit = 10

// ServiceCatalog is the part of the catalog service the HTTP layer uses
type ServiceCatalog interface {
	Create(ctx context.Context, input services.CreateServiceInput) (*entities.Service, error)
	Update(ctx context.Context, serviceID string, input services.UpdateServiceInput) (*entities.Service, error)
	ChangeStatus(ctx context.Context, serviceID, requesterID string, status entities.ServiceStatus) (*entities.Service, error)
	ChangeOwnerServicesStatus(ctx context.Context, ownerID, requesterID string, status entities.ServiceStatus) ([]*entities.Service, error)
	Delete(ctx context.Context, serviceID, requesterID string) error
	GetByID(ctx context.Context, serviceID string) (*entities.Service, error)
	Search(ctx context.Context, filter repositories.ServiceFilter, page entities.PageRequest) (entities.Page[*entities.Service], error)
	Suggest(ctx context.Context, query string, limit int) ([]*entities.Service, error)
}

// ServiceHandler handles listing HTTP requests
type ServiceHandler struct {
	catalog ServiceCatalog
	paging  Paging
}

// NewServiceHandler creates a new listing handler
func NewServiceHandler(catalog ServiceCatalog, paging Paging) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, paging: paging}
}

type createServiceRequest struct {
	OwnerID     string           `json:"ownerId"`
	CategoryID  string           `json:"categoryId"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Price       *decimal.Decimal `json:"price"`
	Barter      *bool            `json:"barter"`
	Place       string           `json:"place"`
}

func (req createServiceRequest) validate() error {
	if req.CategoryID == "" {
		return apperrors.NewValidationError("categoryId is required")
	}
	if err := validateText("title", req.Title, entities.ServiceTitleMaxLength, true); err != nil {
		return err
	}
	if err := validateText("description", req.Description, entities.ServiceDescriptionMaxLength, true); err != nil {
		return err
	}
	if !entities.ServiceType(req.Type).Valid() {
		return apperrors.NewValidationError("type must be OFFER or ORDER")
	}
	if req.Price == nil {
		return apperrors.NewValidationError("price is required")
	}
	if req.Price.IsNegative() {
		return apperrors.NewValidationError("price must not be negative")
	}
	return validateText("place", req.Place, entities.ServicePlaceMaxLength, false)
}

type updateServiceRequest struct {
	RequesterID string           `json:"requesterId"`
	CategoryID  *string          `json:"categoryId"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Barter      *bool            `json:"barter"`
	Place       *string          `json:"place"`
}

func (req updateServiceRequest) validate() error {
	if req.Title != nil {
		if err := validateText("title", *req.Title, entities.ServiceTitleMaxLength, true); err != nil {
			return err
		}
	}
	if req.Description != nil {
		if err := validateText("description", *req.Description, entities.ServiceDescriptionMaxLength, true); err != nil {
			return err
		}
	}
	if req.Price != nil && req.Price.IsNegative() {
		return apperrors.NewValidationError("price must not be negative")
	}
	if req.Place != nil {
		return validateText("place", *req.Place, entities.ServicePlaceMaxLength, false)
	}
	return nil
}

type changeStatusRequest struct {
	RequesterID string `json:"requesterId"`
	Status      string `json:"status"`
}

type searchServicesRequest struct {
	OwnerID       string           `json:"ownerId"`
	CategoryID    string           `json:"categoryId"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	TitleLike     string           `json:"titleLike"`
	MinPrice      *decimal.Decimal `json:"minPrice"`
	MaxPrice      *decimal.Decimal `json:"maxPrice"`
	BarterOnly    *bool            `json:"barterOnly"`
	CreatedAfter  *time.Time       `json:"createdAfter"`
	CreatedBefore *time.Time       `json:"createdBefore"`
}

func (req searchServicesRequest) toFilter() (repositories.ServiceFilter, error) {
	filter := repositories.ServiceFilter{
		OwnerID:       req.OwnerID,
		CategoryID:    req.CategoryID,
		Type:          entities.ServiceType(req.Type),
		Status:        entities.ServiceStatus(req.Status),
		TitleLike:     req.TitleLike,
		MinPrice:      req.MinPrice,
		MaxPrice:      req.MaxPrice,
		BarterOnly:    req.BarterOnly,
		CreatedAfter:  req.CreatedAfter,
		CreatedBefore: req.CreatedBefore,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, apperrors.NewValidationError("type must be OFFER or ORDER")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, apperrors.NewValidationError("status must be ACTIVE or ARCHIVED")
	}
	return filter, nil
}

// CreateService handles POST /api/services
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	ownerID, err := requesterID(r, req.OwnerID)
	if err != nil {
		respondWithAppError(w, r, apperrors.NewValidationError("ownerId is required"))
		return
	}
	if err := req.validate(); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	service, err := h.catalog.Create(r.Context(), services.CreateServiceInput{
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Type:        entities.ServiceType(req.Type),
		Price:       *req.Price,
		Barter:      req.Barter,
		Place:       req.Place,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, service)
}

// GetService handles GET /api/services/{serviceId}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalog.GetByID(r.Context(), r.PathValue("serviceId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, service)
}

// UpdateService handles PUT /api/services/{serviceId}
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req updateServiceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	requester, err := requesterID(r, req.RequesterID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	service, err := h.catalog.Update(r.Context(), r.PathValue("serviceId"), services.UpdateServiceInput{
		RequesterID: requester,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Barter:      req.Barter,
		Place:       req.Place,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, service)
}

// ChangeServiceStatus handles PATCH /api/services/{serviceId}/status
func (h *ServiceHandler) ChangeServiceStatus(w http.ResponseWriter, r *http.Request) {
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

	service, err := h.catalog.ChangeStatus(r.Context(), r.PathValue("serviceId"), requester, entities.ServiceStatus(req.Status))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, service)
}

// ChangeOwnerServicesStatus handles PATCH /api/users/{userId}/services/status
func (h *ServiceHandler) ChangeOwnerServicesStatus(w http.ResponseWriter, r *http.Request) {
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

	changed, err := h.catalog.ChangeOwnerServicesStatus(r.Context(), r.PathValue("userId"), requester, entities.ServiceStatus(req.Status))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, changed)
}

// DeleteService handles DELETE /api/services/{serviceId}
func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterID(r, "")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), r.PathValue("serviceId"), requester); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchServices handles POST /api/services/search. An empty body matches every listing.
func (h *ServiceHandler) SearchServices(w http.ResponseWriter, r *http.Request) {
	var req searchServicesRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithAppError(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
			return
		}
	}
	filter, err := req.toFilter()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	page, err := h.paging.Parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.catalog.Search(r.Context(), filter, page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SuggestServices handles GET /api/services/suggest?q=&limit=
func (h *ServiceHandler) SuggestServices(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, h.paging.MaxLimit)
	}

	suggestions, err := h.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
