// Package service implements login, logout and bearer-token authentication on
// top of the identity accounts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aos/internal/auth/metrics"
	"aos/internal/auth/store/revocation"
	"aos/internal/auth/token"
	identitymodels "aos/internal/identity/models"
	"aos/internal/identity/service"
	"aos/internal/identity/store/account"
	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/audit"
	"aos/pkg/platform/sentinel"
	"aos/pkg/requestcontext"
)

// Authenticator verifies credentials and manages token lifecycle.
type Authenticator struct {
	accounts account.Store
	hasher   service.Hasher
	tokens   *token.Service
	trl      revocation.TokenRevocationList
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  *audit.Publisher
}

// Option configures the Authenticator.
type Option func(*Authenticator)

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authenticator) { a.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(a *Authenticator) { a.auditor = p }
}

func NewAuthenticator(
	accounts account.Store,
	hasher service.Hasher,
	tokens *token.Service,
	trl revocation.TokenRevocationList,
	logger *slog.Logger,
	opts ...Option,
) *Authenticator {
	a := &Authenticator{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		trl:      trl,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Session is a successful login result. MustChangePassword is set when the
// account still uses a temporary password.
type Session struct {
	Token              string
	ExpiresAt          time.Time
	Account            *identitymodels.Account
	MustChangePassword bool
}

// Login verifies email/password and issues an access token. All credential
// failures collapse into the same Unauthorized error so callers cannot probe
// which emails exist.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := a.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, a.rejectLogin(ctx, email, "unknown email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "account lookup failed")
	}
	if !acc.Enabled || acc.Locked {
		return nil, a.rejectLogin(ctx, email, "account disabled")
	}
	if !a.hasher.Verify(acc.PasswordHash, password) {
		return nil, a.rejectLogin(ctx, email, "wrong password")
	}

	now := requestcontext.Now(ctx)
	signed, claims, err := a.tokens.Issue(acc.ID, string(acc.PrimaryRole()), now)
	if err != nil {
		return nil, err
	}

	a.metrics.IncrementLogins()
	if a.auditor != nil {
		a.auditor.Emit(ctx, audit.Event{
			AccountID: acc.ID,
			Action:    audit.EventLoginSucceeded,
			Attrs:     map[string]string{"email": acc.Email},
		})
	}
	a.logger.InfoContext(ctx, "login succeeded", "account_id", acc.ID)

	return &Session{
		Token:              signed,
		ExpiresAt:          claims.ExpiresAt.Time,
		Account:            acc,
		MustChangePassword: acc.UsingTemporaryPassword,
	}, nil
}

// Logout revokes the presented token for its remaining lifetime. An already
// invalid token is not an error; there is nothing left to revoke.
func (a *Authenticator) Logout(ctx context.Context, tokenString string) error {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := a.trl.RevokeToken(ctx, claims.ID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	a.metrics.IncrementLogouts()
	if a.auditor != nil {
		accountID, _ := id.ParseAccountID(claims.AccountID)
		a.auditor.Emit(ctx, audit.Event{
			AccountID: accountID,
			Action:    audit.EventLogout,
			Attrs:     map[string]string{"jti": claims.ID},
		})
	}
	a.logger.InfoContext(ctx, "logout", "jti", claims.ID)
	return nil
}

// Authenticate resolves a bearer token to a live account. Revoked tokens and
// disabled accounts are rejected even when the signature is valid.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*identitymodels.Account, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := a.trl.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "revocation check failed")
	}
	if revoked {
		a.metrics.IncrementRevokedRejections()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
	}

	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	acc, err := a.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "account lookup failed")
	}
	if !acc.Enabled || acc.Locked {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is disabled")
	}
	return acc, nil
}

func (a *Authenticator) rejectLogin(ctx context.Context, email, reason string) error {
	a.metrics.IncrementLoginFailures()
	a.logger.WarnContext(ctx, "login rejected", "email", email, "reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}
