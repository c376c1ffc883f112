package routes

import (
	"net/http"

	"github.com/moysha/servicecatalog/internal/api/handlers"
	"github.com/moysha/servicecatalog/internal/api/middleware"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	serviceHandler  *handlers.ServiceHandler
	responseHandler *handlers.ResponseHandler
	feedbackHandler *handlers.FeedbackHandler
	favoriteHandler *handlers.FavoriteHandler
	categoryHandler *handlers.CategoryHandler
	healthHandler   *handlers.HealthHandler

	// services backs the per-request dataloaders
	services       repositories.ServiceRepository
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Options carries what the router needs besides its handlers
type Options struct {
	Services       repositories.ServiceRepository
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	serviceHandler *handlers.ServiceHandler,
	responseHandler *handlers.ResponseHandler,
	feedbackHandler *handlers.FeedbackHandler,
	favoriteHandler *handlers.FavoriteHandler,
	categoryHandler *handlers.CategoryHandler,
	healthHandler *handlers.HealthHandler,
	opts Options,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		serviceHandler:  serviceHandler,
		responseHandler: responseHandler,
		feedbackHandler: feedbackHandler,
		favoriteHandler: favoriteHandler,
		categoryHandler: categoryHandler,
		healthHandler:   healthHandler,
		services:        opts.Services,
		allowedOrigins:  opts.AllowedOrigins,
		metrics:         opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Service endpoints
	r.mux.HandleFunc("POST /api/services", r.serviceHandler.CreateService)
	r.mux.HandleFunc("POST /api/services/search", r.serviceHandler.SearchServices)
	r.mux.HandleFunc("GET /api/services/suggest", r.serviceHandler.SuggestServices)
	r.mux.HandleFunc("GET /api/services/{serviceId}", r.serviceHandler.GetService)
	r.mux.HandleFunc("PUT /api/services/{serviceId}", r.serviceHandler.UpdateService)
	r.mux.HandleFunc("DELETE /api/services/{serviceId}", r.serviceHandler.DeleteService)
	r.mux.HandleFunc("PATCH /api/services/{serviceId}/status", r.serviceHandler.ChangeServiceStatus)
	r.mux.HandleFunc("PATCH /api/users/{userId}/services/status", r.serviceHandler.ChangeOwnerServicesStatus)

	// Response endpoints
	r.mux.HandleFunc("GET /api/services/{serviceId}/responses", r.responseHandler.ListServiceResponses)
	r.mux.HandleFunc("POST /api/services/{serviceId}/responses", r.responseHandler.Respond)
	r.mux.HandleFunc("PATCH /api/services/{serviceId}/responses/{responseId}/status", r.responseHandler.ChangeResponseStatus)
	r.mux.HandleFunc("DELETE /api/services/{serviceId}/responses/{responseId}", r.responseHandler.DeleteResponse)
	r.mux.HandleFunc("GET /api/users/{userId}/responses", r.responseHandler.ListUserResponses)
	r.mux.HandleFunc("GET /api/users/{userId}/responses/active", r.responseHandler.ListActiveUserResponses)
	r.mux.HandleFunc("GET /api/users/{userId}/responses/archived", r.responseHandler.ListArchivedUserResponses)

	// Feedback endpoints
	r.mux.HandleFunc("GET /api/services/{serviceId}/feedback", r.feedbackHandler.ListFeedback)
	r.mux.HandleFunc("POST /api/services/{serviceId}/feedback", r.feedbackHandler.CreateFeedback)
	r.mux.HandleFunc("PUT /api/services/{serviceId}/feedback/{feedbackId}", r.feedbackHandler.UpdateFeedback)
	r.mux.HandleFunc("DELETE /api/services/{serviceId}/feedback/{feedbackId}", r.feedbackHandler.DeleteFeedback)

	// Favorite endpoints
	r.mux.HandleFunc("GET /api/favorites", r.favoriteHandler.ListFavorites)
	r.mux.HandleFunc("POST /api/services/{serviceId}/favorites", r.favoriteHandler.AddFavorite)
	r.mux.HandleFunc("DELETE /api/services/{serviceId}/favorites", r.favoriteHandler.RemoveFavorite)

	// Category endpoints
	r.mux.HandleFunc("GET /api/categories", r.categoryHandler.ListCategories)
	r.mux.HandleFunc("POST /api/categories", r.categoryHandler.CreateCategory)
	r.mux.HandleFunc("PUT /api/categories/{id}", r.categoryHandler.RenameCategory)
	r.mux.HandleFunc("DELETE /api/categories/{id}", r.categoryHandler.DeleteCategory)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so every answer carries its headers.
	var handler http.Handler = r.mux
	if r.services != nil {
		handler = middleware.LoadersMiddleware(r.services)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
