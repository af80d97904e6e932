package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "aos/pkg/domain"
	dErrors "aos/pkg/domain-errors"
	"aos/pkg/platform/sentinel"
	"aos/pkg/requestcontext"
)

// Service manages the catalog of social services offered to members.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateInput describes a new catalog entry. The payload fixes the entry's
// kind; it cannot change afterwards.
type CreateInput struct {
	Name    string
	Info    Info
	Payload Payload
	Active  bool
}

func (s *Service) CreateService(ctx context.Context, input CreateInput) (*Entity, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "service name is required")
	}
	if input.Payload == nil {
		return nil, dErrors.New(dErrors.CodeUnsupportedService, "service payload is required")
	}

	now := requestcontext.Now(ctx)
	entity := &Entity{
		Name:      strings.TrimSpace(input.Name),
		Kind:      input.Payload.kind(),
		Info:      input.Info,
		Active:    input.Active,
		Payload:   input.Payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, entity); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "service name already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create service")
	}

	s.logger.InfoContext(ctx, "service created",
		"service_id", entity.ID, "name", entity.Name, "kind", string(entity.Kind))
	return entity, nil
}

// UpdateInput carries optional metadata changes. Nil fields are untouched.
// The kind and payload of an entry are immutable through this path.
type UpdateInput struct {
	Name        *string
	Icon        *string
	Title       *string
	Description *string
	Features    []string
}

func (s *Service) UpdateService(ctx context.Context, serviceID id.ServiceID, input UpdateInput) (*Entity, error) {
	entity, err := s.get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "service name is required")
		}
		entity.Name = strings.TrimSpace(*input.Name)
	}
	if input.Icon != nil {
		entity.Info.Icon = *input.Icon
	}
	if input.Title != nil {
		entity.Info.Title = *input.Title
	}
	if input.Description != nil {
		entity.Info.Description = *input.Description
	}
	if input.Features != nil {
		entity.Info.Features = input.Features
	}
	entity.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, entity); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "service name already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update service")
	}

	s.logger.InfoContext(ctx, "service updated", "service_id", entity.ID)
	return entity, nil
}

// SetActive toggles whether the service is offered to members.
func (s *Service) SetActive(ctx context.Context, serviceID id.ServiceID, active bool) (*Entity, error) {
	entity, err := s.get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if entity.Active == active {
		return entity, nil
	}

	entity.Active = active
	entity.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle service")
	}

	s.logger.InfoContext(ctx, "service toggled", "service_id", entity.ID, "active", active)
	return entity, nil
}

func (s *Service) GetService(ctx context.Context, serviceID id.ServiceID) (*Entity, error) {
	return s.get(ctx, serviceID)
}

// GetServiceFields returns a service's payload flattened for display.
func (s *Service) GetServiceFields(ctx context.Context, serviceID id.ServiceID) ([]Field, error) {
	entity, err := s.get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return ExtractFields(entity)
}

func (s *Service) ListServices(ctx context.Context) ([]*Entity, error) {
	entities, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list services")
	}
	return entities, nil
}

func (s *Service) ListActiveServices(ctx context.Context) ([]*Entity, error) {
	entities, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active services")
	}
	return entities, nil
}

func (s *Service) get(ctx context.Context, serviceID id.ServiceID) (*Entity, error) {
	entity, err := s.store.FindByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "service not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "service lookup failed")
	}
	return entity, nil
}
