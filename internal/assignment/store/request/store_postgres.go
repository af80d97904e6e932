package request

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

// PostgresStore persists requests in PostgreSQL. Justificatif and response
// document links live on the documents table (request_id + doc_type), so the
// store reloads them after scanning the request row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
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

func (s *PostgresStore) Create(ctx context.Context, req *models.Request) error {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO requests (description, comment, status, owner_id, service_id, assigned_to, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		req.Description, req.Comment, string(req.Status), req.OwnerID, req.ServiceID,
		nullAccountID(req.AssignedTo), req.SubmittedAt, req.UpdatedAt,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

const requestColumns = `id, description, comment, status, owner_id, service_id, assigned_to, response_doc_id, submitted_at, updated_at`

func scanRequest(scan func(dest ...any) error) (*models.Request, error) {
	var req models.Request
	var status string
	var assignedTo, responseDoc sql.NullInt64
	if err := scan(&req.ID, &req.Description, &req.Comment, &status, &req.OwnerID,
		&req.ServiceID, &assignedTo, &responseDoc, &req.SubmittedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	if assignedTo.Valid {
		assignee := id.AccountID(assignedTo.Int64)
		req.AssignedTo = &assignee
	}
	if responseDoc.Valid {
		docID := id.DocumentID(responseDoc.Int64)
		req.ResponseDocID = &docID
	}
	return &req, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, requestID)
	req, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	if err := s.loadJustificatifs(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *PostgresStore) loadJustificatifs(ctx context.Context, req *models.Request) error {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id FROM documents
		WHERE request_id = $1 AND doc_type = 'justificatif'
		ORDER BY id`, req.ID)
	if err != nil {
		return fmt.Errorf("load justificatifs: %w", err)
	}
	defer rows.Close()
	req.Justificatifs = nil
	for rows.Next() {
		var docID id.DocumentID
		if err := rows.Scan(&docID); err != nil {
			return fmt.Errorf("scan justificatif: %w", err)
		}
		req.Justificatifs = append(req.Justificatifs, docID)
	}
	return rows.Err()
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Request, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM requests ORDER BY id`)
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.AccountID) ([]*models.Request, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM requests WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (s *PostgresStore) ListByAssignee(ctx context.Context, assigneeID id.AccountID) ([]*models.Request, error) {
	return s.list(ctx, `SELECT `+requestColumns+` FROM requests WHERE assigned_to = $1 ORDER BY id`, assigneeID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Request, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()
	var requests []*models.Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, req := range requests {
		if err := s.loadJustificatifs(ctx, req); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *PostgresStore) Update(ctx context.Context, req *models.Request) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE requests
		SET description = $2, comment = $3, status = $4, assigned_to = $5,
			response_doc_id = $6, updated_at = $7
		WHERE id = $1`,
		req.ID, req.Description, req.Comment, string(req.Status),
		nullAccountID(req.AssignedTo), nullDocumentID(req.ResponseDocID), req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s: %w", req.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, requestID id.RequestID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
	}
	return nil
}

func nullAccountID(accountID *id.AccountID) sql.NullInt64 {
	if accountID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*accountID), Valid: true}
}

func nullDocumentID(docID *id.DocumentID) sql.NullInt64 {
	if docID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*docID), Valid: true}
}
