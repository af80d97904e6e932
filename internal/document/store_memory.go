package document

import (
	"context"
	"fmt"
	"sync"

	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in memory for tests and development.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[id.DocumentID]*Document
}

// NewInMemoryStore constructs an empty in-memory document store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[id.DocumentID]*Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	doc.ID = id.DocumentID(s.nextID)
	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	copied := *doc
	return &copied, nil
}

func (s *InMemoryStore) ListByRequest(_ context.Context, requestID id.RequestID) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*Document
	for i := int64(1); i <= s.nextID; i++ {
		doc, ok := s.docs[id.DocumentID(i)]
		if ok && doc.RequestID != nil && *doc.RequestID == requestID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}

func (s *InMemoryStore) ListPublic(_ context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []*Document
	for i := int64(1); i <= s.nextID; i++ {
		if doc, ok := s.docs[id.DocumentID(i)]; ok && doc.Type == TypePublic {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	return docs, nil
}

func (s *InMemoryStore) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; !ok {
		return fmt.Errorf("document %s: %w", docID, sentinel.ErrNotFound)
	}
	delete(s.docs, docID)
	return nil
}

func (s *InMemoryStore) DeleteByRequest(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, doc := range s.docs {
		if doc.RequestID != nil && *doc.RequestID == requestID {
			delete(s.docs, docID)
		}
	}
	return nil
}
