package handlers

import (
	"context"
	"net/http"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// CategoryService defines the category directory operations used by the handler.
type CategoryService interface {
	List(ctx context.Context) ([]*entities.Category, error)
	Create(ctx context.Context, name string) (*entities.Category, error)
	Rename(ctx context.Context, id, name string) (*entities.Category, error)
	Delete(ctx context.Context, id string) error
}

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categories CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /api/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if categories == nil {
		categories = []*entities.Category{}
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := validateText("name", req.Name, entities.CategoryNameMaxLength, true); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, category)
}

// RenameCategory handles PUT /api/categories/{id}
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := validateText("name", req.Name, entities.CategoryNameMaxLength, true); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	category, err := h.categories.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
