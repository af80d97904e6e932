package catalog

import (
	"context"

	id "aos/pkg/domain"
)

// Store persists catalog entries.
type Store interface {
	Create(ctx context.Context, entity *Entity) error
	FindByID(ctx context.Context, serviceID id.ServiceID) (*Entity, error)
	List(ctx context.Context) ([]*Entity, error)
	ListActive(ctx context.Context) ([]*Entity, error)
	Update(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, serviceID id.ServiceID) error
}
