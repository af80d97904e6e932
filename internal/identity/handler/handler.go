// Package handler exposes account management over HTTP. Mutating routes are
// admin-only; reads require authentication.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aos/internal/identity/models"
	"aos/internal/identity/service"
	"aos/internal/platform/middleware"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/httputil"
)

// Service is the slice of the identity registry the handler needs.
type Service interface {
	RegisterAccount(ctx context.Context, profile service.RegistrationProfile, roleName string) (*service.RegistrationResult, error)
	TransitionRole(ctx context.Context, accountID id.AccountID, newRoleName string) error
	ResetPassword(ctx context.Context, accountID id.AccountID) (string, error)
	ChangePassword(ctx context.Context, accountID id.AccountID, current, next string) error
	SetEnabled(ctx context.Context, accountID id.AccountID, enabled bool) error
	UpdateProfile(ctx context.Context, accountID id.AccountID, update service.ProfileUpdate) (*models.Account, error)
	GetAccount(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	ListSupportAccounts(ctx context.Context) ([]*models.Account, error)
}

// Cascade deletes an account together with its owned and assigned items.
type Cascade interface {
	DeleteAccountCascade(ctx context.Context, accountID id.AccountID) error
}

type Handler struct {
	logger   *slog.Logger
	registry Service
	cascade  Cascade
}

func New(registry Service, cascade Cascade, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, registry: registry, cascade: cascade}
}

// Register mounts the account routes onto an authenticated router.
func (h *Handler) Register(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/accounts", h.handleRegister)
		r.Post("/accounts/{accountID}/role", h.handleTransitionRole)
		r.Post("/accounts/{accountID}/password-reset", h.handleResetPassword)
		r.Post("/accounts/{accountID}/enabled", h.handleSetEnabled)
		r.Delete("/accounts/{accountID}", h.handleDelete)
	})

	r.Get("/accounts", h.handleList)
	r.Get("/accounts/support", h.handleListSupport)
	r.Get("/accounts/{accountID}", h.handleGet)
	r.Patch("/accounts/{accountID}", h.handleUpdateProfile)
	r.Post("/accounts/password", h.handleChangePassword)
}

type accountResponse struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	NationalID     string    `json:"national_id,omitempty"`
	EmployeeNumber string    `json:"employee_number,omitempty"`
	Department     string    `json:"department,omitempty"`
	Roles          []string  `json:"roles"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAccountResponse(a *models.Account) accountResponse {
	roles := make([]string, 0, len(a.Roles))
	for _, role := range a.Roles {
		roles = append(roles, string(role))
	}
	return accountResponse{
		ID:             int64(a.ID),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Phone:          a.Phone,
		NationalID:     a.NationalID,
		EmployeeNumber: a.EmployeeNumber,
		Department:     a.Department,
		Roles:          roles,
		Enabled:        a.Enabled,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type registerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	NationalID     string `json:"national_id"`
	EmployeeNumber string `json:"employee_number"`
	Department     string `json:"department"`
	Role           string `json:"role"`
}

type registerResponse struct {
	Account           accountResponse `json:"account"`
	TemporaryPassword string          `json:"temporary_password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.registry.RegisterAccount(ctx, service.RegistrationProfile{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		NationalID:     req.NationalID,
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
	}, req.Role)
	if err != nil {
		h.warn(ctx, "account registration rejected", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		Account:           toAccountResponse(result.Account),
		TemporaryPassword: result.TemporaryPassword,
	})
}

type transitionRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleTransitionRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	var req transitionRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.TransitionRole(ctx, accountID, req.Role); err != nil {
		h.warn(ctx, "role transition rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	tempPassword, err := h.registry.ResetPassword(ctx, accountID)
	if err != nil {
		h.warn(ctx, "password reset rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resetPasswordResponse{TemporaryPassword: tempPassword})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller := middleware.GetCaller(ctx)
	if caller == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.ChangePassword(ctx, caller.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.warn(ctx, "password change rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.registry.SetEnabled(ctx, accountID, req.Enabled); err != nil {
		h.warn(ctx, "account toggle rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateProfileRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	NationalID     *string `json:"national_id"`
	EmployeeNumber *string `json:"employee_number"`
	Department     *string `json:"department"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	caller := middleware.GetCaller(ctx)
	if caller == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	// Accounts may edit themselves; admins may edit anyone.
	if caller.ID != accountID && !caller.HasRole(models.RoleAdmin) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "caller may not edit this account"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	account, err := h.registry.UpdateProfile(ctx, accountID, service.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		NationalID:     req.NationalID,
		EmployeeNumber: req.EmployeeNumber,
		Department:     req.Department,
	})
	if err != nil {
		h.warn(ctx, "profile update rejected", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	account, err := h.registry.GetAccount(ctx, accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeAccountList(w, r, h.registry.ListAccounts)
}

func (h *Handler) handleListSupport(w http.ResponseWriter, r *http.Request) {
	h.writeAccountList(w, r, h.registry.ListSupportAccounts)
}

func (h *Handler) writeAccountList(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]*models.Account, error)) {
	accounts, err := list(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountResponse(account))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	if err := h.cascade.DeleteAccountCascade(ctx, accountID); err != nil {
		h.warn(ctx, "account deletion rejected", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid account id"))
		return 0, false
	}
	return accountID, true
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}
