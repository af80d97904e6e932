package complaint

import (
	"context"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
)

// Error contract: wrapped sentinel.ErrNotFound for unknown IDs, wrapped
// infrastructure errors otherwise.
type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, complaintID id.ComplaintID) (*models.Complaint, error)
	List(ctx context.Context) ([]*models.Complaint, error)
	ListByAssignee(ctx context.Context, assigneeID id.AccountID) ([]*models.Complaint, error)
	CountByOwner(ctx context.Context, ownerID id.AccountID) (int, error)
	Update(ctx context.Context, c *models.Complaint) error
}
