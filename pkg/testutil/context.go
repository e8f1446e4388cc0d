package testutil

import (
	"net/http"
	"time"

	id "personas/pkg/domain"
	"personas/pkg/requestcontext"
)

// WithViewer attaches viewerID to the request the way the auth middleware
// would. A nil id leaves the request anonymous.
func WithViewer(req *http.Request, viewerID id.UserID) *http.Request {
	if viewerID.IsNil() {
		return req
	}
	return req.WithContext(requestcontext.WithViewerID(req.Context(), viewerID))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
