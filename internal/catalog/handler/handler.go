// Package handler exposes the service catalog over HTTP. Reads are open to
// any authenticated caller; catalog administration is admin-only.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aos/internal/catalog"
	"aos/internal/platform/middleware"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/httputil"
)

// Service is the slice of the catalog the handler needs.
type Service interface {
	CreateService(ctx context.Context, input catalog.CreateInput) (*catalog.Entity, error)
	UpdateService(ctx context.Context, serviceID id.ServiceID, input catalog.UpdateInput) (*catalog.Entity, error)
	SetActive(ctx context.Context, serviceID id.ServiceID, active bool) (*catalog.Entity, error)
	GetService(ctx context.Context, serviceID id.ServiceID) (*catalog.Entity, error)
	GetServiceFields(ctx context.Context, serviceID id.ServiceID) ([]catalog.Field, error)
	ListServices(ctx context.Context) ([]*catalog.Entity, error)
	ListActiveServices(ctx context.Context) ([]*catalog.Entity, error)
}

type Handler struct {
	logger  *slog.Logger
	catalog Service
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, catalog: svc}
}

// Register mounts the catalog routes onto an authenticated router.
func (h *Handler) Register(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/services", h.handleCreate)
		r.Patch("/services/{serviceID}", h.handleUpdate)
		r.Post("/services/{serviceID}/active", h.handleSetActive)
		r.Get("/services/all", h.handleListAll)
	})

	r.Get("/services", h.handleListActive)
	r.Get("/services/types", h.handleListTypes)
	r.Get("/services/{serviceID}", h.handleGet)
	r.Get("/services/{serviceID}/fields", h.handleGetFields)
}

type serviceResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Icon        string          `json:"icon,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Features    []string        `json:"features,omitempty"`
	Active      bool            `json:"active"`
	Payload     catalog.Payload `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toServiceResponse(entity *catalog.Entity) serviceResponse {
	return serviceResponse{
		ID:          int64(entity.ID),
		Name:        entity.Name,
		Kind:        string(entity.Kind),
		Icon:        entity.Info.Icon,
		Title:       entity.Info.Title,
		Description: entity.Info.Description,
		Features:    entity.Info.Features,
		Active:      entity.Active,
		Payload:     entity.Payload,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

type createServiceRequest struct {
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Icon        string          `json:"icon"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	Active      bool            `json:"active"`
	Payload     json.RawMessage `json:"payload"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	payload, err := catalog.ParsePayload(catalog.Kind(req.Kind), req.Payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entity, err := h.catalog.CreateService(ctx, catalog.CreateInput{
		Name: req.Name,
		Info: catalog.Info{
			Icon:        req.Icon,
			Title:       req.Title,
			Description: req.Description,
			Features:    req.Features,
		},
		Payload: payload,
		Active:  req.Active,
	})
	if err != nil {
		h.warn(ctx, "service creation rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toServiceResponse(entity))
}

type updateServiceRequest struct {
	Name        *string  `json:"name"`
	Icon        *string  `json:"icon"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Features    []string `json:"features"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serviceID, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	var req updateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entity, err := h.catalog.UpdateService(ctx, serviceID, catalog.UpdateInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Title:       req.Title,
		Description: req.Description,
		Features:    req.Features,
	})
	if err != nil {
		h.warn(ctx, "service update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toServiceResponse(entity))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serviceID, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entity, err := h.catalog.SetActive(ctx, serviceID, req.Active)
	if err != nil {
		h.warn(ctx, "service toggle rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toServiceResponse(entity))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	entity, err := h.catalog.GetService(r.Context(), serviceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toServiceResponse(entity))
}

type fieldResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) handleGetFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	serviceID, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	fields, err := h.catalog.GetServiceFields(ctx, serviceID)
	if err != nil {
		h.warn(ctx, "service field extraction failed", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]fieldResponse, 0, len(fields))
	for _, f := range fields {
		out = append(out, fieldResponse{Key: f.Key, Value: f.Value})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.catalog.ListActiveServices)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.catalog.ListServices)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*catalog.Entity, error)) {
	entities, err := list(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]serviceResponse, 0, len(entities))
	for _, entity := range entities {
		out = append(out, toServiceResponse(entity))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListTypes(w http.ResponseWriter, _ *http.Request) {
	kinds := catalog.AvailableKinds()
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) serviceID(w http.ResponseWriter, r *http.Request) (id.ServiceID, bool) {
	serviceID, err := id.ParseServiceID(chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid service id"))
		return 0, false
	}
	return serviceID, true
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}
