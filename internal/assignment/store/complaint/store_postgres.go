package complaint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
)

// PostgresStore persists complaints in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed complaint store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

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

func (s *PostgresStore) Create(ctx context.Context, c *models.Complaint) error {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO complaints (description, comment, status, owner_id, assigned_to, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.Description, c.Comment, string(c.Status), c.OwnerID,
		nullAccountID(c.AssignedTo), c.SubmittedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

const complaintColumns = `id, description, comment, status, owner_id, assigned_to, submitted_at, updated_at`

func scanComplaint(scan func(dest ...any) error) (*models.Complaint, error) {
	var c models.Complaint
	var status string
	var assignedTo sql.NullInt64
	if err := scan(&c.ID, &c.Description, &c.Comment, &status, &c.OwnerID,
		&assignedTo, &c.SubmittedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.ComplaintStatus(status)
	if assignedTo.Valid {
		assignee := id.AccountID(assignedTo.Int64)
		c.AssignedTo = &assignee
	}
	return &c, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, complaintID)
	c, err := scanComplaint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complaint %s: %w", complaintID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Complaint, error) {
	return s.list(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY id`)
}

func (s *PostgresStore) ListByAssignee(ctx context.Context, assigneeID id.AccountID) ([]*models.Complaint, error) {
	return s.list(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE assigned_to = $1 ORDER BY id`, assigneeID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Complaint, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()
	var complaints []*models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (s *PostgresStore) CountByOwner(ctx context.Context, ownerID id.AccountID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT count(*) FROM complaints WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Complaint) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE complaints
		SET description = $2, comment = $3, status = $4, assigned_to = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Description, c.Comment, string(c.Status),
		nullAccountID(c.AssignedTo), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("complaint %s: %w", c.ID, sentinel.ErrNotFound)
	}
	return nil
}

func nullAccountID(accountID *id.AccountID) sql.NullInt64 {
	if accountID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*accountID), Valid: true}
}
