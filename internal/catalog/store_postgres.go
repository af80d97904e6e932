package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
	"aos/pkg/platform/tx"
)

// PostgresStore persists catalog entries in the services table. The typed
// payload is stored as jsonb beside the kind discriminator.
type PostgresStore struct {
	db *sql.DB
}

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

const serviceColumns = `id, name, kind, icon, title, description, features, active, payload, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, entity *Entity) error {
	payload, err := encodePayload(entity.Payload)
	if err != nil {
		return err
	}
	err = s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO services (name, kind, icon, title, description, features, active, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		entity.Name, string(entity.Kind), entity.Info.Icon, entity.Info.Title,
		entity.Info.Description, pq.Array(entity.Info.Features), entity.Active,
		payload, entity.CreatedAt, entity.UpdatedAt,
	).Scan(&entity.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service name %q: %w", entity.Name, sentinel.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, serviceID id.ServiceID) (*Entity, error) {
	row := s.q(ctx).QueryRowContext(ctx, `
		SELECT `+serviceColumns+` FROM services WHERE id = $1`, serviceID)
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("service %d: %w", serviceID, sentinel.ErrNotFound)
		}
		return nil, err
	}
	return entity, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entity, error) {
	return s.listWhere(ctx, ``)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]*Entity, error) {
	return s.listWhere(ctx, ` WHERE active`)
}

func (s *PostgresStore) listWhere(ctx context.Context, where string) ([]*Entity, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT `+serviceColumns+` FROM services`+where+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var out []*Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, entity *Entity) error {
	payload, err := encodePayload(entity.Payload)
	if err != nil {
		return err
	}
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE services
		SET name = $2, kind = $3, icon = $4, title = $5, description = $6,
		    features = $7, active = $8, payload = $9, updated_at = $10
		WHERE id = $1`,
		entity.ID, entity.Name, string(entity.Kind), entity.Info.Icon,
		entity.Info.Title, entity.Info.Description, pq.Array(entity.Info.Features),
		entity.Active, payload, entity.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("service name %q: %w", entity.Name, sentinel.ErrDuplicate)
		}
		return fmt.Errorf("failed to update service: %w", err)
	}
	return requireRow(res, entity.ID)
}

func (s *PostgresStore) Delete(ctx context.Context, serviceID id.ServiceID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM services WHERE id = $1`, serviceID)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return requireRow(res, serviceID)
}

func requireRow(res sql.Result, serviceID id.ServiceID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("service %d: %w", serviceID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*Entity, error) {
	var (
		entity  Entity
		kind    string
		payload []byte
	)
	err := row.Scan(&entity.ID, &entity.Name, &kind, &entity.Info.Icon,
		&entity.Info.Title, &entity.Info.Description, pq.Array(&entity.Info.Features),
		&entity.Active, &payload, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entity.Kind = Kind(kind)
	entity.Payload, err = decodePayload(entity.Kind, payload)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
