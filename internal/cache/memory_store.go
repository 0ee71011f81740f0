package cache

import (
	"context"
	"sort"
	"sync"

	"docqa/internal/model"
)

// MemoryDocumentStore is a process-local session store.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string]model.Document)}
}

// Get returns a copy so callers never alias the stored document.
func (s *MemoryDocumentStore) Get(_ context.Context, sessionID string) (*model.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[sessionID]
	if !ok {
		return nil, false, nil
	}
	doc.Chunks = append([]string(nil), doc.Chunks...)
	return &doc, true, nil
}

func (s *MemoryDocumentStore) Put(_ context.Context, doc *model.Document) error {
	stored := *doc
	stored.Chunks = append([]string(nil), doc.Chunks...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.SessionID] = stored
	return nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, sessionID)
	return nil
}

func (s *MemoryDocumentStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
