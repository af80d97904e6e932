package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"

	identitymetrics "aos/internal/identity/metrics"
	"aos/internal/identity/models"
	accountstore "aos/internal/identity/store/account"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
	"aos/pkg/requestcontext"
)

// Registry orchestrates the account lifecycle: registration, role
// transitions, password resets, and the enabled flag. It is the only writer of
// account and specialization rows.
type Registry struct {
	accounts accountstore.Store
	hasher   Hasher
	tx       tx.Runner
	logger   *slog.Logger
	metrics  *identitymetrics.Metrics
	auditor  *audit.Publisher
}

// Option configures optional Registry collaborators.
type Option func(*Registry)

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(r *Registry) { r.auditor = p }
}

func WithTxRunner(runner tx.Runner) Option {
	return func(r *Registry) { r.tx = runner }
}

// NewRegistry builds the identity registry. The default tx runner serializes
// in memory; postgres deployments pass a SQLRunner.
func NewRegistry(accounts accountstore.Store, hasher Hasher, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		accounts: accounts,
		hasher:   hasher,
		tx:       &tx.MemoryRunner{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegistrationProfile carries the caller-provided identity fields.
type RegistrationProfile struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	NationalID     string
	EmployeeNumber string
	Department     string
}

// RegistrationResult returns the created account and its temporary password.
// The plaintext password exists only in this value; it is never persisted.
type RegistrationResult struct {
	Account           *models.Account
	TemporaryPassword string
}

// RegisterAccount creates an account with a freshly generated temporary
// password and the specialization rows the role implies.
func (r *Registry) RegisterAccount(ctx context.Context, profile RegistrationProfile, roleName string) (*RegistrationResult, error) {
	role, ok := models.ParseRole(strings.ToUpper(strings.TrimSpace(roleName)))
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeUnknownRole, "unknown role %q", roleName)
	}
	email := strings.TrimSpace(profile.Email)
	if !govalidator.IsEmail(email) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid email %q", email)
	}

	tempPassword, err := generateTemporaryPassword()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate temporary password")
	}
	hash, err := r.hasher.Hash(tempPassword)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash temporary password")
	}

	now := requestcontext.Now(ctx)
	account := &models.Account{
		FirstName:              profile.FirstName,
		LastName:               profile.LastName,
		Email:                  email,
		Phone:                  profile.Phone,
		NationalID:             profile.NationalID,
		EmployeeNumber:         profile.EmployeeNumber,
		Department:             profile.Department,
		PasswordHash:           hash,
		Enabled:                true,
		Locked:                 false,
		UsingTemporaryPassword: true,
		Roles:                  []models.Role{role},
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err = r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := r.accounts.Create(txCtx, account); err != nil {
			if errors.Is(err, sentinel.ErrDuplicate) {
				return dErrors.Wrap(err, dErrors.CodeDuplicateIdentity, "email, national id, or employee number already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}
		if specs := models.SpecializationsFor(role); len(specs) > 0 {
			if err := r.accounts.CreateSpecializations(txCtx, account.ID, specs); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create specialization rows")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.metrics.IncrementRegistered()
	r.emit(ctx, audit.EventAccountRegistered, account.ID, map[string]string{
		"email": account.Email,
		"role":  string(role),
	})
	r.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID, "role", string(role))

	return &RegistrationResult{Account: account, TemporaryPassword: tempPassword}, nil
}

// TransitionRole replaces the account's role set with {newRole}, deleting the
// old role's specialization rows (including the shadow AGENT row for
// ADMIN/SUPPORT) and creating the ones the new role implies. Transitioning to
// the role the account already holds is a no-op: specialization rows are left
// untouched and keep their IDs.
func (r *Registry) TransitionRole(ctx context.Context, accountID id.AccountID, newRoleName string) error {
	newRole, ok := models.ParseRole(strings.ToUpper(strings.TrimSpace(newRoleName)))
	if !ok {
		return dErrors.Newf(dErrors.CodeUnknownRole, "unknown role %q", newRoleName)
	}

	err := r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		account, err := r.accounts.FindByID(txCtx, accountID)
		if err != nil {
			return wrapAccountErr(err)
		}
		oldRole := account.PrimaryRole()
		if oldRole == newRole && account.HasRole(newRole) {
			return nil
		}

		if specs := models.SpecializationsFor(oldRole); len(specs) > 0 {
			if err := r.accounts.DeleteSpecializations(txCtx, accountID, specs); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete old specialization rows")
			}
		}
		account.Roles = []models.Role{newRole}
		account.UpdatedAt = requestcontext.Now(txCtx)
		if err := r.accounts.Update(txCtx, account); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account roles")
		}
		if specs := models.SpecializationsFor(newRole); len(specs) > 0 {
			if err := r.accounts.CreateSpecializations(txCtx, accountID, specs); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create specialization rows")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.metrics.IncrementRoleTransitions()
	r.emit(ctx, audit.EventRoleTransitioned, accountID, map[string]string{"role": string(newRole)})
	return nil
}

// ResetPassword regenerates the temporary password, marks the account as using
// one, and returns the plaintext exactly once.
func (r *Registry) ResetPassword(ctx context.Context, accountID id.AccountID) (string, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", wrapAccountErr(err)
	}

	tempPassword, err := generateTemporaryPassword()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate temporary password")
	}
	hash, err := r.hasher.Hash(tempPassword)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash temporary password")
	}

	account.PasswordHash = hash
	account.UsingTemporaryPassword = true
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := r.accounts.Update(ctx, account); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to store new password")
	}

	r.metrics.IncrementPasswordResets()
	r.emit(ctx, audit.EventPasswordReset, accountID, nil)
	return tempPassword, nil
}

// ChangePassword verifies the current password and replaces it, clearing the
// temporary-password flag.
func (r *Registry) ChangePassword(ctx context.Context, accountID id.AccountID, current, next string) error {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return wrapAccountErr(err)
	}
	if !r.hasher.Verify(account.PasswordHash, current) {
		return dErrors.New(dErrors.CodeUnauthorized, "current password does not match")
	}
	hash, err := r.hasher.Hash(next)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	account.PasswordHash = hash
	account.UsingTemporaryPassword = false
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := r.accounts.Update(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store new password")
	}
	return nil
}

// SetEnabled flips the enabled flag. No cascading effects.
func (r *Registry) SetEnabled(ctx context.Context, accountID id.AccountID, enabled bool) error {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return wrapAccountErr(err)
	}
	account.Enabled = enabled
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := r.accounts.Update(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}
	r.emit(ctx, audit.EventAccountToggled, accountID, map[string]string{
		"enabled": boolString(enabled),
	})
	return nil
}

// ProfileUpdate carries optional profile fields; nil pointers are untouched.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	NationalID     *string
	EmployeeNumber *string
	Department     *string
}

// UpdateProfile applies a partial profile update with the same uniqueness
// rules as registration.
func (r *Registry) UpdateProfile(ctx context.Context, accountID id.AccountID, update ProfileUpdate) (*models.Account, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, wrapAccountErr(err)
	}

	if update.FirstName != nil {
		account.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		account.LastName = *update.LastName
	}
	if update.Email != nil {
		if !govalidator.IsEmail(*update.Email) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid email %q", *update.Email)
		}
		account.Email = *update.Email
	}
	if update.Phone != nil {
		account.Phone = *update.Phone
	}
	if update.NationalID != nil {
		account.NationalID = *update.NationalID
	}
	if update.EmployeeNumber != nil {
		account.EmployeeNumber = *update.EmployeeNumber
	}
	if update.Department != nil {
		account.Department = *update.Department
	}
	account.UpdatedAt = requestcontext.Now(ctx)

	if err := r.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, dErrors.Wrap(err, dErrors.CodeDuplicateIdentity, "email, national id, or employee number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}

	r.emit(ctx, audit.EventAccountUpdated, accountID, nil)
	return account, nil
}

// GetAccount fetches an account by ID.
func (r *Registry) GetAccount(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, wrapAccountErr(err)
	}
	return account, nil
}

// ListAccounts returns all accounts ordered by ID.
func (r *Registry) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := r.accounts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// ListSupportAccounts returns the roster of accounts eligible to resolve
// items.
func (r *Registry) ListSupportAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := r.accounts.ListByRole(ctx, models.RoleSupport)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list support accounts")
	}
	return accounts, nil
}

func (r *Registry) emit(ctx context.Context, action audit.EventType, accountID id.AccountID, attrs map[string]string) {
	if r.auditor == nil {
		return
	}
	r.auditor.Emit(ctx, audit.Event{AccountID: accountID, Action: action, Attrs: attrs})
}

func wrapAccountErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "account lookup failed")
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
