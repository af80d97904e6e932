package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

// InMemoryStore keeps catalog entries in a map. Used in tests and local runs.
type InMemoryStore struct {
	mu       sync.RWMutex
	entities map[id.ServiceID]*Entity
	nextID   id.ServiceID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entities: make(map[id.ServiceID]*Entity), nextID: 1}
}

func (s *InMemoryStore) Create(_ context.Context, entity *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entities {
		if strings.EqualFold(existing.Name, entity.Name) {
			return fmt.Errorf("service name %q: %w", entity.Name, sentinel.ErrDuplicate)
		}
	}

	entity.ID = s.nextID
	s.nextID++
	s.entities[entity.ID] = cloneEntity(entity)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, serviceID id.ServiceID) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[serviceID]
	if !ok {
		return nil, fmt.Errorf("service %d: %w", serviceID, sentinel.ErrNotFound)
	}
	return cloneEntity(entity), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*Entity) bool { return true }), nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(e *Entity) bool { return e.Active }), nil
}

func (s *InMemoryStore) Update(_ context.Context, entity *Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[entity.ID]; !ok {
		return fmt.Errorf("service %d: %w", entity.ID, sentinel.ErrNotFound)
	}
	for _, existing := range s.entities {
		if existing.ID != entity.ID && strings.EqualFold(existing.Name, entity.Name) {
			return fmt.Errorf("service name %q: %w", entity.Name, sentinel.ErrDuplicate)
		}
	}
	s.entities[entity.ID] = cloneEntity(entity)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, serviceID id.ServiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[serviceID]; !ok {
		return fmt.Errorf("service %d: %w", serviceID, sentinel.ErrNotFound)
	}
	delete(s.entities, serviceID)
	return nil
}

func (s *InMemoryStore) filter(keep func(*Entity) bool) []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if keep(entity) {
			out = append(out, cloneEntity(entity))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneEntity(entity *Entity) *Entity {
	cp := *entity
	cp.Info.Features = append([]string(nil), entity.Info.Features...)
	return &cp
}
