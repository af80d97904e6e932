// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the public auth routes and the authenticated feature routers.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assignmenthandler "aos/internal/assignment/handler"
	authhandler "aos/internal/auth/handler"
	cataloghandler "aos/internal/catalog/handler"
	documenthandler "aos/internal/document/handler"
	identityhandler "aos/internal/identity/handler"
	identitymodels "aos/internal/identity/models"
	"aos/internal/platform/metrics"
	"aos/internal/platform/middleware"
)

// Handlers collects the per-feature HTTP handlers the router mounts.
type Handlers struct {
	Auth       *authhandler.Handler
	Identity   *identityhandler.Handler
	Assignment *assignmenthandler.Handler
	Catalog    *cataloghandler.Handler
	Document   *documenthandler.Handler
}

// NewRouter builds the full route tree. Everything under the authenticated
// group requires a valid bearer token; admin-only groups are gated per
// feature.
func NewRouter(h Handlers, authn middleware.Authenticator, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Auth.Register(r)

	adminOnly := middleware.RequireRole(identitymodels.RoleAdmin, logger)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authn, logger))
		h.Identity.Register(r, adminOnly)
		h.Assignment.Register(r)
		h.Catalog.Register(r, adminOnly)
		h.Document.Register(r, adminOnly)
	})

	return r
}
