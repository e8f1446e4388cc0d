// Package requesttime pins one "now" per request. Expiry checks, validation
// and audit timestamps within a request all read requestcontext.Now.
package requesttime

import (
	"net/http"
	"time"

	"personas/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
