package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
)

// PostgresStore persists documents in PostgreSQL. Statements join a
// transaction carried in the context (pkg/platform/tx) when one is present.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed document store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
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

func (s *PostgresStore) Create(ctx context.Context, doc *Document) error {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO documents (file_name, content_type, content, doc_type, request_id, title, description, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		doc.FileName, doc.ContentType, doc.Content, string(doc.Type),
		nullRequestID(doc.RequestID), doc.Title, doc.Description, doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

const documentColumns = `id, file_name, content_type, content, doc_type, request_id, title, description, uploaded_at`

func scanDocument(scan func(dest ...any) error) (*Document, error) {
	var doc Document
	var docType string
	var requestID sql.NullInt64
	if err := scan(&doc.ID, &doc.FileName, &doc.ContentType, &doc.Content, &docType,
		&requestID, &doc.Title, &doc.Description, &doc.UploadedAt); err != nil {
		return nil, err
	}
	doc.Type = Type(docType)
	if requestID.Valid {
		rid := id.RequestID(requestID.Int64)
		doc.RequestID = &rid
	}
	return &doc, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*Document, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, docID)
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListByRequest(ctx context.Context, requestID id.RequestID) ([]*Document, error) {
	return s.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE request_id = $1 ORDER BY id`, requestID)
}

func (s *PostgresStore) ListPublic(ctx context.Context) ([]*Document, error) {
	return s.list(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_type = $1 ORDER BY uploaded_at DESC`, string(TypePublic))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Document, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, docID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteByRequest(ctx context.Context, requestID id.RequestID) error {
	if _, err := s.q(ctx).ExecContext(ctx, `DELETE FROM documents WHERE request_id = $1`, requestID); err != nil {
		return fmt.Errorf("delete request documents: %w", err)
	}
	return nil
}

func nullRequestID(requestID *id.RequestID) sql.NullInt64 {
	if requestID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*requestID), Valid: true}
}
