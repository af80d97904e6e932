package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	identitymodels "aos/internal/identity/models"
	"aos/pkg/requestcontext"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identitymodels.Account, error)
}

type contextKeyCaller struct{}

// GetCaller retrieves the authenticated account from the context. Nil when
// the request did not pass RequireAuth.
func GetCaller(ctx context.Context) *identitymodels.Account {
	caller, _ := ctx.Value(contextKeyCaller{}).(*identitymodels.Account)
	return caller
}

// WithCaller injects an account as the authenticated caller. Handler tests
// use it to skip the auth middleware.
func WithCaller(ctx context.Context, caller *identitymodels.Account) context.Context {
	ctx = context.WithValue(ctx, contextKeyCaller{}, caller)
	return requestcontext.WithAccountID(ctx, caller.ID)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved account in the context for handlers.
func RequireAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access, missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			caller, err := authn.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, contextKeyCaller{}, caller)
			ctx = requestcontext.WithAccountID(ctx, caller.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the caller holding a role. Must sit after
// RequireAuth in the chain.
func RequireRole(role identitymodels.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := GetCaller(ctx)
			if caller == nil || !caller.HasRole(role) {
				logger.WarnContext(ctx, "forbidden access",
					"required_role", string(role),
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
