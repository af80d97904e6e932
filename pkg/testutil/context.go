package testutil

import (
	"net/http"
	"time"

	identitymodels "aos/internal/identity/models"
	"aos/internal/platform/middleware"
	"aos/pkg/requestcontext"
)

// WithCaller attaches an authenticated account to the request, simulating
// what the auth middleware does for real requests.
func WithCaller(req *http.Request, caller *identitymodels.Account) *http.Request {
	return req.WithContext(middleware.WithCaller(req.Context(), caller))
}

// WithFrozenTime pins the request-scoped clock so handlers produce
// deterministic timestamps.
func WithFrozenTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
