package handlers

import (
	"context"
	"net/http"

	"github.com/moysha/servicecatalog/internal/domain/entities"
)

// FavoriteService defines the bookmark operations used by the handler.
type FavoriteService interface {
	Add(ctx context.Context, serviceID, userID string) (*entities.Favorite, error)
	Remove(ctx context.Context, serviceID, userID string) error
	List(ctx context.Context, userID string, page entities.PageRequest) (entities.Page[*entities.Favorite], error)
}

// FavoriteHandler handles favorite HTTP requests. Every route acts on
// behalf of the user named by the identity header.
type FavoriteHandler struct {
	favorites FavoriteService
	paging    Paging
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites FavoriteService, paging Paging) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, paging: paging}
}

// AddFavorite handles POST /api/services/{serviceId}/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	favorite, err := h.favorites.Add(r.Context(), r.PathValue("serviceId"), userID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, favorite)
}

// RemoveFavorite handles DELETE /api/services/{serviceId}/favorites
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), r.PathValue("serviceId"), userID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites handles GET /api/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUser(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	page, err := h.paging.Parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	result, err := h.favorites.List(r.Context(), userID, page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
