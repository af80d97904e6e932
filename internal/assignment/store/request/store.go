package request

import (
	"context"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
)

// Error contract: wrapped sentinel.ErrNotFound for unknown IDs, wrapped
// infrastructure errors otherwise. The assignment engine is the only writer.
type Store interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	List(ctx context.Context) ([]*models.Request, error)
	ListByOwner(ctx context.Context, ownerID id.AccountID) ([]*models.Request, error)
	ListByAssignee(ctx context.Context, assigneeID id.AccountID) ([]*models.Request, error)
	Update(ctx context.Context, req *models.Request) error
	Delete(ctx context.Context, requestID id.RequestID) error
}
