// Package handler exposes standalone public documents over HTTP. Publishing
// is admin-only; listing and download require authentication.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aos/internal/document"
	"aos/internal/platform/middleware"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/httputil"
)

const maxUploadBytes = 32 << 20

// Service is the slice of the document service the handler needs.
type Service interface {
	Store(ctx context.Context, upload document.Upload) (*document.Document, error)
	Retrieve(ctx context.Context, docID id.DocumentID) (*document.Retrieved, error)
	Describe(ctx context.Context, docID id.DocumentID) (*document.Document, error)
	ListPublic(ctx context.Context) ([]*document.Document, error)
}

type Handler struct {
	logger    *slog.Logger
	documents Service
}

func New(documents Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, documents: documents}
}

// Register mounts the public document routes onto an authenticated router.
func (h *Handler) Register(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/documents/public", h.handlePublish)
	})

	r.Get("/documents/public", h.handleListPublic)
	r.Get("/documents/public/{documentID}", h.handleDownload)
}

type documentResponse struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func toDocumentResponse(doc *document.Document) documentResponse {
	return documentResponse{
		ID:          int64(doc.ID),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Title:       doc.Title,
		Description: doc.Description,
		UploadedAt:  doc.UploadedAt,
	}
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing file"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to read uploaded file"))
		return
	}

	doc, err := h.documents.Store(ctx, document.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Raw:         raw,
		Type:        document.TypePublic,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "document publish rejected",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListPublic(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	// Only documents published as public are downloadable through this route.
	doc, err := h.documents.Describe(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if doc.Type != document.TypePublic {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "document not found"))
		return
	}

	retrieved, err := h.documents.Retrieve(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", retrieved.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+retrieved.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(retrieved.Raw)
}
