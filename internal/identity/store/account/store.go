package account

import (
	"context"

	"aos/internal/identity/models"
	id "aos/pkg/domain"
)

// Error contract:
// - ErrNotFound (wrapped) when the requested account does not exist
// - ErrDuplicate (wrapped) when email, national ID, or employee number is taken
// - wrapped infrastructure errors otherwise
//
// Specialization rows are the per-role shadow records; the identity service is
// the only writer and keeps them in lockstep with the role slice.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, accountID id.AccountID) error

	CreateSpecializations(ctx context.Context, accountID id.AccountID, roles []models.Role) error
	DeleteSpecializations(ctx context.Context, accountID id.AccountID, roles []models.Role) error
	ListSpecializations(ctx context.Context, accountID id.AccountID) ([]models.Specialization, error)
}
