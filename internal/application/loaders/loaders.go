package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the per-request dataloaders
type Loaders struct {
	ServiceLoader *dataloader.Loader[string, *entities.Service]
}

// NewLoaders creates a fresh set of loaders. Build one per request: results
// are memoized for the lifetime of the loader.
func NewLoaders(serviceRepo repositories.ServiceRepository) *Loaders {
	return &Loaders{
		ServiceLoader: dataloader.NewBatchedLoader(
			func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Service] {
				results := make([]*dataloader.Result[*entities.Service], len(keys))
				services, err := serviceRepo.GetByIDs(ctx, keys)

				serviceMap := make(map[string]*entities.Service, len(services))
				if err == nil {
					for _, s := range services {
						serviceMap[s.ID] = s
					}
				}

				for i, key := range keys {
					if err != nil {
						results[i] = &dataloader.Result[*entities.Service]{Error: err}
					} else if s, ok := serviceMap[key]; ok {
						results[i] = &dataloader.Result[*entities.Service]{Data: s}
					} else {
						results[i] = &dataloader.Result[*entities.Service]{Error: apperrors.NewNotFoundErrorf("Service not found: %s", key)}
					}
				}
				return results
			},
			dataloader.WithWait[string, *entities.Service](2*time.Millisecond),
		),
	}
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
