package request

import (
	"context"
	"fmt"
	"sync"

	"aos/internal/assignment/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

// InMemoryStore keeps requests in memory for tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[id.RequestID]*models.Request
}

// New constructs an empty in-memory request store.
func New() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.RequestID]*models.Request)}
}

func clone(req *models.Request) *models.Request {
	copied := *req
	if req.AssignedTo != nil {
		assignee := *req.AssignedTo
		copied.AssignedTo = &assignee
	}
	if req.ResponseDocID != nil {
		docID := *req.ResponseDocID
		copied.ResponseDocID = &docID
	}
	copied.Justificatifs = append([]id.DocumentID(nil), req.Justificatifs...)
	return &copied
}

func (s *InMemoryStore) Create(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	req.ID = id.RequestID(s.nextID)
	s.requests[req.ID] = clone(req)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
	}
	return clone(req), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(*models.Request) bool { return true }), nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.AccountID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(req *models.Request) bool { return req.OwnerID == ownerID }), nil
}

func (s *InMemoryStore) ListByAssignee(_ context.Context, assigneeID id.AccountID) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(req *models.Request) bool {
		return req.AssignedTo != nil && *req.AssignedTo == assigneeID
	}), nil
}

func (s *InMemoryStore) filter(keep func(*models.Request) bool) []*models.Request {
	var out []*models.Request
	for i := int64(1); i <= s.nextID; i++ {
		if req, ok := s.requests[id.RequestID(i)]; ok && keep(req) {
			out = append(out, clone(req))
		}
	}
	return out
}

func (s *InMemoryStore) Update(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return fmt.Errorf("request %s: %w", req.ID, sentinel.ErrNotFound)
	}
	s.requests[req.ID] = clone(req)
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
	}
	delete(s.requests, requestID)
	return nil
}
