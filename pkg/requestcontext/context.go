// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free
// of net/http lets the visibility and resolver packages depend on it without
// pulling in transport code.
//
//	viewerID := requestcontext.ViewerID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject a fixed clock with requestcontext.WithTime.
package requestcontext

import (
	"context"
	"time"

	id "personas/pkg/domain"
)

type (
	viewerIDKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// ViewerID retrieves the verified viewer id. Returns the nil id if unset.
func ViewerID(ctx context.Context) id.UserID {
	if v, ok := ctx.Value(viewerIDKey{}).(id.UserID); ok {
		return v
	}
	return id.UserID{}
}

// WithViewerID injects the verified viewer id.
func WithViewerID(ctx context.Context, viewerID id.UserID) context.Context {
	return context.WithValue(ctx, viewerIDKey{}, viewerID)
}

// RequestID retrieves the request correlation id.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now().
// Expiry checks use it so a single request sees one consistent instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request-scoped time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
