// Package handler exposes login and logout over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authservice "aos/internal/auth/service"
	"aos/internal/platform/middleware"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/httputil"
)

// Service is the slice of the authenticator the handler needs.
type Service interface {
	Login(ctx context.Context, email, password string) (*authservice.Session, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	logger *slog.Logger
	auth   Service
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, auth: auth}
}

// Register mounts the auth routes. Login is deliberately outside RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token              string    `json:"token"`
	ExpiresAt          time.Time `json:"expires_at"`
	AccountID          int64     `json:"account_id"`
	Role               string    `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login attempt failed",
			"client_ip", middleware.GetClientIP(ctx),
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:              session.Token,
		ExpiresAt:          session.ExpiresAt,
		AccountID:          int64(session.Account.ID),
		Role:               string(session.Account.PrimaryRole()),
		MustChangePassword: session.MustChangePassword,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing bearer token"))
		return
	}
	if err := h.auth.Logout(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
