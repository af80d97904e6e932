package complaint

import (
	"context"
	"fmt"
	"sync"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

// InMemoryStore keeps complaints in memory for tests and development.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	complaints map[id.ComplaintID]*models.Complaint
}

// New constructs an empty in-memory complaint store.
func New() *InMemoryStore {
	return &InMemoryStore{complaints: make(map[id.ComplaintID]*models.Complaint)}
}

func clone(c *models.Complaint) *models.Complaint {
	copied := *c
	if c.AssignedTo != nil {
		assignee := *c.AssignedTo
		copied.AssignedTo = &assignee
	}
	return &copied
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = id.ComplaintID(s.nextID)
	s.complaints[c.ID] = clone(c)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, complaintID id.ComplaintID) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[complaintID]
	if !ok {
		return nil, fmt.Errorf("complaint %s: %w", complaintID, sentinel.ErrNotFound)
	}
	return clone(c), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*models.Complaint) bool { return true }), nil
}

func (s *InMemoryStore) ListByAssignee(_ context.Context, assigneeID id.AccountID) ([]*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(c *models.Complaint) bool {
		return c.AssignedTo != nil && *c.AssignedTo == assigneeID
	}), nil
}

func (s *InMemoryStore) CountByOwner(_ context.Context, ownerID id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.complaints {
		if c.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) filter(keep func(*models.Complaint) bool) []*models.Complaint {
	var out []*models.Complaint
	for i := int64(1); i <= s.nextID; i++ {
		if c, ok := s.complaints[id.ComplaintID(i)]; ok && keep(c) {
			out = append(out, clone(c))
		}
	}
	return out
}

func (s *InMemoryStore) Update(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[c.ID]; !ok {
		return fmt.Errorf("complaint %s: %w", c.ID, sentinel.ErrNotFound)
	}
	s.complaints[c.ID] = clone(c)
	return nil
}
