// Package handler exposes the request and complaint lifecycle over HTTP.
// Submissions accept multipart form data so justificative files arrive in the
// same call as the request body.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"aos/internal/assignment/models"
	"aos/internal/assignment/service"
	"aos/internal/document"
	identitymodels "aos/internal/identity/models"
	"aos/internal/platform/middleware"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/httputil"
)

// Forms larger than this are rejected outright.
const maxUploadBytes = 32 << 20

// Service is the slice of the assignment engine the handler needs.
type Service interface {
	SubmitRequest(ctx context.Context, ownerID id.AccountID, serviceID id.ServiceID, description string, justificatifs []service.Attachment) (*models.Request, error)
	SubmitComplaint(ctx context.Context, ownerID id.AccountID, description string) (*models.Complaint, error)
	AssignRequest(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, candidate *id.AccountID) (*models.Request, error)
	AssignComplaint(ctx context.Context, caller *identitymodels.Account, complaintID id.ComplaintID, candidate *id.AccountID) (*models.Complaint, error)
	UpdateRequest(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, update service.RequestUpdate) (*models.Request, error)
	UpdateComplaint(ctx context.Context, caller *identitymodels.Account, complaintID id.ComplaintID, update service.ComplaintUpdate) (*models.Complaint, error)
	GetRequest(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	ListRequests(ctx context.Context) ([]*models.Request, error)
	ListRequestsOwnedBy(ctx context.Context, accountID id.AccountID) ([]*models.Request, error)
	ListRequestsAssignedTo(ctx context.Context, accountID id.AccountID) ([]*models.Request, error)
	GetComplaint(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	ListComplaints(ctx context.Context) ([]*models.Complaint, error)
	ListComplaintsAssignedTo(ctx context.Context, accountID id.AccountID) ([]*models.Complaint, error)
	DownloadDocument(ctx context.Context, caller *identitymodels.Account, requestID id.RequestID, docID id.DocumentID) (*document.Retrieved, error)
}

type Handler struct {
	logger *slog.Logger
	engine Service
}

func New(engine Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, engine: engine}
}

// Register mounts the request and complaint routes onto an authenticated
// router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.handleSubmitRequest)
	r.Get("/requests", h.handleListRequests)
	r.Get("/requests/mine", h.handleListOwnRequests)
	r.Get("/requests/assigned", h.handleListAssignedRequests)
	r.Get("/requests/{requestID}", h.handleGetRequest)
	r.Post("/requests/{requestID}/assign", h.handleAssignRequest)
	r.Patch("/requests/{requestID}", h.handleUpdateRequest)
	r.Get("/requests/{requestID}/documents/{documentID}", h.handleDownloadDocument)

	r.Post("/complaints", h.handleSubmitComplaint)
	r.Get("/complaints", h.handleListComplaints)
	r.Get("/complaints/assigned", h.handleListAssignedComplaints)
	r.Get("/complaints/{complaintID}", h.handleGetComplaint)
	r.Post("/complaints/{complaintID}/assign", h.handleAssignComplaint)
	r.Patch("/complaints/{complaintID}", h.handleUpdateComplaint)
}

type requestResponse struct {
	ID            int64     `json:"id"`
	Description   string    `json:"description"`
	Comment       string    `json:"comment,omitempty"`
	Status        string    `json:"status"`
	OwnerID       int64     `json:"owner_id"`
	ServiceID     int64     `json:"service_id"`
	AssignedTo    *int64    `json:"assigned_to,omitempty"`
	Justificatifs []int64   `json:"justificatifs,omitempty"`
	ResponseDocID *int64    `json:"response_document_id,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toRequestResponse(req *models.Request) requestResponse {
	out := requestResponse{
		ID:          int64(req.ID),
		Description: req.Description,
		Comment:     req.Comment,
		Status:      string(req.Status),
		OwnerID:     int64(req.OwnerID),
		ServiceID:   int64(req.ServiceID),
		SubmittedAt: req.SubmittedAt,
		UpdatedAt:   req.UpdatedAt,
	}
	if req.AssignedTo != nil {
		v := int64(*req.AssignedTo)
		out.AssignedTo = &v
	}
	if req.ResponseDocID != nil {
		v := int64(*req.ResponseDocID)
		out.ResponseDocID = &v
	}
	for _, docID := range req.Justificatifs {
		out.Justificatifs = append(out.Justificatifs, int64(docID))
	}
	return out
}

type complaintResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Comment     string    `json:"comment,omitempty"`
	Status      string    `json:"status"`
	OwnerID     int64     `json:"owner_id"`
	AssignedTo  *int64    `json:"assigned_to,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toComplaintResponse(c *models.Complaint) complaintResponse {
	out := complaintResponse{
		ID:          int64(c.ID),
		Description: c.Description,
		Comment:     c.Comment,
		Status:      string(c.Status),
		OwnerID:     int64(c.OwnerID),
		SubmittedAt: c.SubmittedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.AssignedTo != nil {
		v := int64(*c.AssignedTo)
		out.AssignedTo = &v
	}
	return out
}

func (h *Handler) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}
	serviceID, err := id.ParseServiceID(r.FormValue("service_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid service id"))
		return
	}
	description := r.FormValue("description")

	var justificatifs []service.Attachment
	if r.MultipartForm != nil {
		justificatifs, err = readAttachments(r.MultipartForm.File["justificatifs"])
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	req, err := h.engine.SubmitRequest(ctx, caller.ID, serviceID, description, justificatifs)
	if err != nil {
		h.warn(ctx, "request submission rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(req))
}

type submitComplaintRequest struct {
	Description string `json:"description"`
}

func (h *Handler) handleSubmitComplaint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req submitComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.engine.SubmitComplaint(ctx, caller.ID, req.Description)
	if err != nil {
		h.warn(ctx, "complaint submission rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toComplaintResponse(c))
}

type assignRequest struct {
	// AssigneeID nil returns the item to the pending pool.
	AssigneeID *int64 `json:"assignee_id"`
}

func (h *Handler) handleAssignRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	item, err := h.engine.AssignRequest(ctx, caller, requestID, toAccountID(req.AssigneeID))
	if err != nil {
		h.warn(ctx, "request assignment rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(item))
}

func (h *Handler) handleAssignComplaint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	complaintID, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	item, err := h.engine.AssignComplaint(ctx, caller, complaintID, toAccountID(req.AssigneeID))
	if err != nil {
		h.warn(ctx, "complaint assignment rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toComplaintResponse(item))
}

func (h *Handler) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}

	update, err := parseRequestUpdate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.engine.UpdateRequest(ctx, caller, requestID, update)
	if err != nil {
		h.warn(ctx, "request update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(item))
}

type updateComplaintRequest struct {
	Status  *string `json:"status"`
	Comment *string `json:"comment"`
}

func (h *Handler) handleUpdateComplaint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	complaintID, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	var req updateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	item, err := h.engine.UpdateComplaint(ctx, caller, complaintID, service.ComplaintUpdate{
		Status:  req.Status,
		Comment: req.Comment,
	})
	if err != nil {
		h.warn(ctx, "complaint update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toComplaintResponse(item))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, err := h.engine.GetRequest(r.Context(), requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.engine.ListRequests(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeRequestList(w, requests)
}

func (h *Handler) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	requests, err := h.engine.ListRequestsOwnedBy(r.Context(), caller.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeRequestList(w, requests)
}

func (h *Handler) handleListAssignedRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	requests, err := h.engine.ListRequestsAssignedTo(r.Context(), caller.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeRequestList(w, requests)
}

func (h *Handler) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID, ok := h.complaintID(w, r)
	if !ok {
		return
	}
	c, err := h.engine.GetComplaint(r.Context(), complaintID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toComplaintResponse(c))
}

func (h *Handler) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.engine.ListComplaints(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeComplaintList(w, complaints)
}

func (h *Handler) handleListAssignedComplaints(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	complaints, err := h.engine.ListComplaintsAssignedTo(r.Context(), caller.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeComplaintList(w, complaints)
}

func (h *Handler) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	retrieved, err := h.engine.DownloadDocument(ctx, caller, requestID, docID)
	if err != nil {
		h.warn(ctx, "document download rejected", err)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", retrieved.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+retrieved.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(retrieved.Raw)
}

// parseRequestUpdate accepts either a JSON body or a multipart form carrying
// response attachments.
func parseRequestUpdate(r *http.Request) (service.RequestUpdate, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return service.RequestUpdate{}, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form")
		}
		var update service.RequestUpdate
		if v := r.FormValue("status"); v != "" {
			update.Status = &v
		}
		if _, ok := r.MultipartForm.Value["comment"]; ok {
			v := r.FormValue("comment")
			update.Comment = &v
		}
		attachments, err := readAttachments(r.MultipartForm.File["attachments"])
		if err != nil {
			return service.RequestUpdate{}, err
		}
		update.Attachments = attachments
		return update, nil
	}

	var body struct {
		Status  *string `json:"status"`
		Comment *string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return service.RequestUpdate{}, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return service.RequestUpdate{Status: body.Status, Comment: body.Comment}, nil
}

func readAttachments(headers []*multipart.FileHeader) ([]service.Attachment, error) {
	var out []service.Attachment
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to open uploaded file")
		}
		raw, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeIOFailure, "failed to read uploaded file")
		}
		out = append(out, service.Attachment{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Raw:         raw,
		})
	}
	return out, nil
}

func writeRequestList(w http.ResponseWriter, requests []*models.Request) {
	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func writeComplaintList(w http.ResponseWriter, complaints []*models.Complaint) {
	out := make([]complaintResponse, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, toComplaintResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*identitymodels.Account, bool) {
	caller := middleware.GetCaller(r.Context())
	if caller == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return nil, false
	}
	return caller, true
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (id.RequestID, bool) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request id"))
		return 0, false
	}
	return requestID, true
}

func (h *Handler) complaintID(w http.ResponseWriter, r *http.Request) (id.ComplaintID, bool) {
	complaintID, err := id.ParseComplaintID(chi.URLParam(r, "complaintID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid complaint id"))
		return 0, false
	}
	return complaintID, true
}

func toAccountID(v *int64) *id.AccountID {
	if v == nil {
		return nil
	}
	accountID := id.AccountID(*v)
	return &accountID
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}
