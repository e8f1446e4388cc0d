package resolver

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"personas/internal/profile/models"
	id "personas/pkg/domain"
	"personas/pkg/platform/sentinel"
)

type loadersKey struct{}

// Loaders batch base record and overrides reads within one request.
type Loaders struct {
	BaseRecords *dataloader.Loader[id.UserID, *models.BaseRecord]
	Overrides   *dataloader.Loader[id.ProfileID, *models.ProfileOverrides]
}

// NewLoaders creates request-scoped loaders over store.
func NewLoaders(store Store) *Loaders {
	return &Loaders{
		BaseRecords: dataloader.NewBatchedLoader(baseRecordBatchFn(store),
			dataloader.WithWait[id.UserID, *models.BaseRecord](2*time.Millisecond)),
		Overrides: dataloader.NewBatchedLoader(overridesBatchFn(store),
			dataloader.WithWait[id.ProfileID, *models.ProfileOverrides](2*time.Millisecond)),
	}
}

// WithLoaders attaches loaders to ctx.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

// Middleware gives every request its own Loaders, so batched reads never
// leak cached records across requests.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadersFromContext returns the loaders attached to ctx, or nil.
func LoadersFromContext(ctx context.Context) *Loaders {
	if l, ok := ctx.Value(loadersKey{}).(*Loaders); ok {
		return l
	}
	return nil
}

// baseRecordBatchFn resolves missing records to sentinel.ErrNotFound.
func baseRecordBatchFn(store Store) dataloader.BatchFunc[id.UserID, *models.BaseRecord] {
	return func(ctx context.Context, keys []id.UserID) []*dataloader.Result[*models.BaseRecord] {
		results := make([]*dataloader.Result[*models.BaseRecord], len(keys))
		records, err := store.GetBaseRecords(ctx, keys)
		for i, key := range keys {
			switch rec, ok := records[key]; {
			case err != nil:
				results[i] = &dataloader.Result[*models.BaseRecord]{Error: err}
			case !ok:
				results[i] = &dataloader.Result[*models.BaseRecord]{Error: sentinel.ErrNotFound}
			default:
				results[i] = &dataloader.Result[*models.BaseRecord]{Data: rec}
			}
		}
		return results
	}
}

// overridesBatchFn resolves absent rows to nil data.
func overridesBatchFn(store Store) dataloader.BatchFunc[id.ProfileID, *models.ProfileOverrides] {
	return func(ctx context.Context, keys []id.ProfileID) []*dataloader.Result[*models.ProfileOverrides] {
		results := make([]*dataloader.Result[*models.ProfileOverrides], len(keys))
		overrides, err := store.GetOverridesByProfileIDs(ctx, keys)
		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[*models.ProfileOverrides]{Error: err}
				continue
			}
			results[i] = &dataloader.Result[*models.ProfileOverrides]{Data: overrides[key]}
		}
		return results
	}
}
