package middleware

import (
	"net/http"

	"github.com/moysha/servicecatalog/internal/application/loaders"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
)

// LoadersMiddleware attaches fresh per-request dataloaders, so batching
// and memoization never leak between requests.
func LoadersMiddleware(services repositories.ServiceRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(services))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
