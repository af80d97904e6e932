package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assignmentservice "aos/internal/assignment/service"
	complaintstore "aos/internal/assignment/store/complaint"
	requeststore "aos/internal/assignment/store/request"
	"aos/internal/document"
	"aos/internal/identity/models"
	"aos/internal/identity/service"
	accountstore "aos/internal/identity/store/account"
	"aos/internal/platform/middleware"
	"aos/pkg/testutil"
)

type handlerFixture struct {
	router   chi.Router
	registry *service.Registry
	accounts *accountstore.InMemoryStore
	admin    *models.Account
	user     *models.Account
}

type noopHasher struct{}

func (noopHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (noopHasher) Verify(hash, plaintext string) bool    { return hash == "hashed:"+plaintext }

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := accountstore.New()
	registry := service.NewRegistry(accounts, noopHasher{}, logger)

	documents := document.NewService(document.NewInMemoryStore(), logger)
	engine := assignmentservice.NewEngine(
		requeststore.New(), complaintstore.New(), accounts, documents, logger)

	router := chi.NewRouter()
	New(registry, engine, logger).Register(router, middleware.RequireRole(models.RoleAdmin, logger))

	f := &handlerFixture{router: router, registry: registry, accounts: accounts}

	ctx := context.Background()
	adminResult, err := registry.RegisterAccount(ctx, service.RegistrationProfile{
		FirstName: "Ad", LastName: "Min", Email: "admin@example.com",
	}, "ADMIN")
	require.NoError(t, err)
	f.admin = adminResult.Account

	userResult, err := registry.RegisterAccount(ctx, service.RegistrationProfile{
		FirstName: "Us", LastName: "Er", Email: "user@example.com",
	}, "USER")
	require.NoError(t, err)
	f.user = userResult.Account

	return f
}

func TestHandleRegister(t *testing.T) {
	t.Run("admin creates an account and receives the temporary password", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"first_name": "New",
			"last_name":  "Member",
			"email":      "member@example.com",
			"role":       "SUPPORT",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.admin))

		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[registerResponse](t, rr)
		assert.Equal(t, "member@example.com", resp.Account.Email)
		assert.Contains(t, resp.Account.Roles, "SUPPORT")
		assert.Len(t, resp.TemporaryPassword, 12)
	})

	t.Run("non-admin callers get 403", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"first_name": "New", "last_name": "Member",
			"email": "member@example.com", "role": "USER",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.user))

		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("duplicate email maps to 409 duplicate_identity", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"first_name": "Copy", "last_name": "Cat",
			"email": "user@example.com", "role": "USER",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.admin))

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "duplicate_identity")
	})

	t.Run("unknown role maps to 400 unknown_role", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts", map[string]string{
			"first_name": "X", "last_name": "Y",
			"email": "x@example.com", "role": "SUPERVISOR",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.admin))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unknown_role")
	})
}

func TestHandleList(t *testing.T) {
	f := newHandlerFixture(t)

	req := testutil.NewRequest(t, http.MethodGet, "/accounts")
	rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.user))

	testutil.AssertStatusOK(t, rr)
	resp := testutil.UnmarshalResponse[[]accountResponse](t, rr)
	require.Len(t, *resp, 2)
}

func TestHandleUpdateProfile(t *testing.T) {
	t.Run("accounts edit themselves", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/accounts/2", map[string]string{
			"department": "Housing",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.user))

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "department", "Housing")
	})

	t.Run("editing another account requires admin", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/accounts/1", map[string]string{
			"department": "Hijacked",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.user))

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("admins edit anyone", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPatch, "/accounts/2", map[string]string{
			"first_name": "Renamed",
		})
		rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.admin))

		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "first_name", "Renamed")
	})
}

func TestHandleChangePassword(t *testing.T) {
	f := newHandlerFixture(t)

	// Reset first so the test knows the current plaintext.
	resetReq := testutil.NewJSONRequest(t, http.MethodPost, "/accounts/2/password-reset", nil)
	rr := testutil.DoRequest(f.router, testutil.WithCaller(resetReq, f.admin))
	testutil.AssertStatusOK(t, rr)
	reset := testutil.UnmarshalResponse[resetPasswordResponse](t, rr)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/accounts/password", map[string]string{
		"current_password": reset.TemporaryPassword,
		"new_password":     "fresh-secret",
	})
	rr = testutil.DoRequest(f.router, testutil.WithCaller(req, f.user))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	wrong := testutil.NewJSONRequest(t, http.MethodPost, "/accounts/password", map[string]string{
		"current_password": "stale",
		"new_password":     "whatever",
	})
	rr = testutil.DoRequest(f.router, testutil.WithCaller(wrong, f.user))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestHandleDelete(t *testing.T) {
	f := newHandlerFixture(t)

	req := testutil.NewRequest(t, http.MethodDelete, "/accounts/2")
	rr := testutil.DoRequest(f.router, testutil.WithCaller(req, f.admin))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	get := testutil.NewRequest(t, http.MethodGet, "/accounts/2")
	rr = testutil.DoRequest(f.router, testutil.WithCaller(get, f.admin))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}
