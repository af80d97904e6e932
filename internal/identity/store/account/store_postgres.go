package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"aos/internal/identity/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
)

// PostgresStore persists accounts, role memberships, and specialization rows
// in PostgreSQL. When a transaction is present in the context (pkg/platform/tx)
// all statements run inside it, which is how the identity service keeps role
// transitions all-or-nothing.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	q := s.q(ctx)
	err := q.QueryRowContext(ctx, `
		INSERT INTO accounts (first_name, last_name, email, phone, national_id, employee_number,
			department, password_hash, enabled, locked, using_temporary_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		account.FirstName, account.LastName, account.Email, account.Phone,
		account.NationalID, account.EmployeeNumber, account.Department,
		account.PasswordHash, account.Enabled, account.Locked,
		account.UsingTemporaryPassword, account.CreatedAt, account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account identity taken: %w", sentinel.ErrDuplicate)
		}
		return fmt.Errorf("create account: %w", err)
	}
	if err := s.replaceRoles(ctx, account.ID, account.Roles); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) replaceRoles(ctx context.Context, accountID id.AccountID, roles []models.Role) error {
	q := s.q(ctx)
	if _, err := q.ExecContext(ctx, `DELETE FROM account_roles WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("clear account roles: %w", err)
	}
	for _, role := range roles {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO account_roles (account_id, role)
			VALUES ($1, $2)`, accountID, string(role)); err != nil {
			return fmt.Errorf("add account role: %w", err)
		}
	}
	return nil
}

const accountColumns = `id, first_name, last_name, email, phone, national_id, employee_number,
	department, password_hash, enabled, locked, using_temporary_password, created_at, updated_at`

func (s *PostgresStore) scanAccount(ctx context.Context, row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(&account.ID, &account.FirstName, &account.LastName, &account.Email,
		&account.Phone, &account.NationalID, &account.EmployeeNumber, &account.Department,
		&account.PasswordHash, &account.Enabled, &account.Locked,
		&account.UsingTemporaryPassword, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	if err := s.loadRoles(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *PostgresStore) loadRoles(ctx context.Context, account *models.Account) error {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT role FROM account_roles WHERE account_id = $1 ORDER BY role`, account.ID)
	if err != nil {
		return fmt.Errorf("load account roles: %w", err)
	}
	defer rows.Close()
	account.Roles = nil
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return fmt.Errorf("scan account role: %w", err)
		}
		account.Roles = append(account.Roles, models.Role(role))
	}
	return rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return s.scanAccount(ctx, row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
	return s.scanAccount(ctx, row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Account, error) {
	return s.list(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
}

func (s *PostgresStore) ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error) {
	return s.list(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE id IN (SELECT account_id FROM account_roles WHERE role = $1)
		ORDER BY id`, string(role))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.FirstName, &account.LastName, &account.Email,
			&account.Phone, &account.NationalID, &account.EmployeeNumber, &account.Department,
			&account.PasswordHash, &account.Enabled, &account.Locked,
			&account.UsingTemporaryPassword, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if err := s.loadRoles(ctx, account); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (s *PostgresStore) Update(ctx context.Context, account *models.Account) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE accounts
		SET first_name = $2, last_name = $3, email = $4, phone = $5, national_id = $6,
			employee_number = $7, department = $8, password_hash = $9, enabled = $10,
			locked = $11, using_temporary_password = $12, updated_at = $13
		WHERE id = $1`,
		account.ID, account.FirstName, account.LastName, account.Email, account.Phone,
		account.NationalID, account.EmployeeNumber, account.Department,
		account.PasswordHash, account.Enabled, account.Locked,
		account.UsingTemporaryPassword, account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account identity taken: %w", sentinel.ErrDuplicate)
		}
		return fmt.Errorf("update account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s: %w", account.ID, sentinel.ErrNotFound)
	}
	return s.replaceRoles(ctx, account.ID, account.Roles)
}

func (s *PostgresStore) Delete(ctx context.Context, accountID id.AccountID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %s: %w", accountID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateSpecializations(ctx context.Context, accountID id.AccountID, roles []models.Role) error {
	q := s.q(ctx)
	for _, role := range roles {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO account_specializations (account_id, role, created_at)
			VALUES ($1, $2, now())`, accountID, string(role)); err != nil {
			return fmt.Errorf("create specialization: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) DeleteSpecializations(ctx context.Context, accountID id.AccountID, roles []models.Role) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM account_specializations
		WHERE account_id = $1 AND role = ANY($2)`, accountID, pq.Array(rolesToStrings(roles)))
	if err != nil {
		return fmt.Errorf("delete specializations: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSpecializations(ctx context.Context, accountID id.AccountID) ([]models.Specialization, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, account_id, role, created_at
		FROM account_specializations
		WHERE account_id = $1
		ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	defer rows.Close()
	var specs []models.Specialization
	for rows.Next() {
		var spec models.Specialization
		var role string
		if err := rows.Scan(&spec.ID, &spec.AccountID, &role, &spec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan specialization: %w", err)
		}
		spec.Role = models.Role(role)
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}
