package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aos/internal/identity/models"
	accountstore "aos/internal/identity/store/account"
	dErrors "aos/pkg/domain-errors"
)

// plainHasher avoids bcrypt cost in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(hash, plaintext string) bool    { return hash == "hashed:"+plaintext }

func newTestRegistry(t *testing.T) (*Registry, *accountstore.InMemoryStore) {
	t.Helper()
	store := accountstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(store, plainHasher{}, logger), store
}

func profile(email string) RegistrationProfile {
	return RegistrationProfile{
		FirstName: "Amine",
		LastName:  "B",
		Email:     email,
	}
}

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("admin registration creates admin and agent specialization rows", func(t *testing.T) {
		registry, store := newTestRegistry(t)

		result, err := registry.RegisterAccount(ctx, profile("admin@example.com"), "ADMIN")
		require.NoError(t, err)
		require.NotNil(t, result.Account)

		specs, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)
		roles := make([]models.Role, 0, len(specs))
		for _, spec := range specs {
			roles = append(roles, spec.Role)
		}
		assert.ElementsMatch(t, []models.Role{models.RoleAdmin, models.RoleAgent}, roles)
	})

	t.Run("support registration creates support and agent specialization rows", func(t *testing.T) {
		registry, store := newTestRegistry(t)

		result, err := registry.RegisterAccount(ctx, profile("support@example.com"), "SUPPORT")
		require.NoError(t, err)

		specs, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)
		require.Len(t, specs, 2)
	})

	t.Run("user registration creates no specialization rows", func(t *testing.T) {
		registry, store := newTestRegistry(t)

		result, err := registry.RegisterAccount(ctx, profile("user@example.com"), "USER")
		require.NoError(t, err)

		specs, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.Empty(t, specs)
	})

	t.Run("temporary password is 12 chars from the allowed alphabet", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		result, err := registry.RegisterAccount(ctx, profile("pw@example.com"), "USER")
		require.NoError(t, err)
		require.Len(t, result.TemporaryPassword, 12)
		for _, c := range result.TemporaryPassword {
			assert.True(t, strings.ContainsRune(tempPasswordAlphabet, c),
				"unexpected character %q in temporary password", c)
		}
		assert.True(t, result.Account.UsingTemporaryPassword)
	})

	t.Run("role names are case-insensitive", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		result, err := registry.RegisterAccount(ctx, profile("case@example.com"), "agent")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAgent, result.Account.PrimaryRole())
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		_, err := registry.RegisterAccount(ctx, profile("x@example.com"), "SUPERVISOR")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownRole))
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		_, err := registry.RegisterAccount(ctx, profile("not-an-email"), "USER")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("duplicate email is rejected with DuplicateIdentity", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		_, err := registry.RegisterAccount(ctx, profile("dup@example.com"), "USER")
		require.NoError(t, err)

		_, err = registry.RegisterAccount(ctx, profile("dup@example.com"), "USER")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
	})
}

func TestTransitionRole(t *testing.T) {
	ctx := context.Background()

	t.Run("support to admin swaps specialization rows", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("t1@example.com"), "SUPPORT")
		require.NoError(t, err)

		require.NoError(t, registry.TransitionRole(ctx, result.Account.ID, "ADMIN"))

		account, err := store.FindByID(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.Role{models.RoleAdmin}, account.Roles)

		specs, err := store.ListSpecializations(ctx, account.ID)
		require.NoError(t, err)
		roles := make([]models.Role, 0, len(specs))
		for _, spec := range specs {
			roles = append(roles, spec.Role)
		}
		assert.ElementsMatch(t, []models.Role{models.RoleAdmin, models.RoleAgent}, roles)
	})

	t.Run("admin to user removes all specialization rows", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("t2@example.com"), "ADMIN")
		require.NoError(t, err)

		require.NoError(t, registry.TransitionRole(ctx, result.Account.ID, "USER"))

		specs, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.Empty(t, specs)
	})

	t.Run("same-role transition is a no-op keeping row IDs", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("t3@example.com"), "SUPPORT")
		require.NoError(t, err)

		before, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)

		require.NoError(t, registry.TransitionRole(ctx, result.Account.ID, "SUPPORT"))

		after, err := store.ListSpecializations(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("unknown account yields NotFound", func(t *testing.T) {
		registry, _ := newTestRegistry(t)

		err := registry.TransitionRole(ctx, 404, "ADMIN")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown role yields UnknownRole", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("t4@example.com"), "USER")
		require.NoError(t, err)

		err = registry.TransitionRole(ctx, result.Account.ID, "WIZARD")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownRole))
	})
}

func TestPasswordLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("reset returns a fresh temporary password", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("r@example.com"), "USER")
		require.NoError(t, err)

		tempPassword, err := registry.ResetPassword(ctx, result.Account.ID)
		require.NoError(t, err)
		require.Len(t, tempPassword, 12)
		assert.NotEqual(t, result.TemporaryPassword, tempPassword)

		account, err := store.FindByID(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.True(t, account.UsingTemporaryPassword)
	})

	t.Run("change verifies the current password", func(t *testing.T) {
		registry, store := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("c@example.com"), "USER")
		require.NoError(t, err)

		err = registry.ChangePassword(ctx, result.Account.ID, "wrong", "next-secret")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

		require.NoError(t, registry.ChangePassword(ctx, result.Account.ID, result.TemporaryPassword, "next-secret"))

		account, err := store.FindByID(ctx, result.Account.ID)
		require.NoError(t, err)
		assert.False(t, account.UsingTemporaryPassword)
	})
}

func TestSetEnabled(t *testing.T) {
	ctx := context.Background()
	registry, store := newTestRegistry(t)

	result, err := registry.RegisterAccount(ctx, profile("toggle@example.com"), "USER")
	require.NoError(t, err)

	require.NoError(t, registry.SetEnabled(ctx, result.Account.ID, false))
	account, err := store.FindByID(ctx, result.Account.ID)
	require.NoError(t, err)
	assert.False(t, account.Enabled)

	require.NoError(t, registry.SetEnabled(ctx, result.Account.ID, true))
	account, err = store.FindByID(ctx, result.Account.ID)
	require.NoError(t, err)
	assert.True(t, account.Enabled)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		result, err := registry.RegisterAccount(ctx, profile("p@example.com"), "USER")
		require.NoError(t, err)

		dept := "Housing"
		account, err := registry.UpdateProfile(ctx, result.Account.ID, ProfileUpdate{Department: &dept})
		require.NoError(t, err)
		assert.Equal(t, "Housing", account.Department)
		assert.Equal(t, "p@example.com", account.Email)
	})

	t.Run("email collision yields DuplicateIdentity", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		_, err := registry.RegisterAccount(ctx, profile("a@example.com"), "USER")
		require.NoError(t, err)
		second, err := registry.RegisterAccount(ctx, profile("b@example.com"), "USER")
		require.NoError(t, err)

		taken := "a@example.com"
		_, err = registry.UpdateProfile(ctx, second.Account.ID, ProfileUpdate{Email: &taken})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicateIdentity))
	})
}
