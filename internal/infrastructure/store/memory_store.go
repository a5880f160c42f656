package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory DocumentStore used in tests and local runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Document // collection -> id -> document
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Document),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, nil
	}
	out := copyDocument(doc)
	return &out, nil
}

// Find returns matches ordered by id so results are stable.
func (s *MemoryStore) Find(_ context.Context, collection, key, value string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.data[collection] {
		if doc.Keys[key] == value {
			out = append(out, copyDocument(doc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, doc Document, expectedVersion int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.data[doc.Collection][doc.ID]
	switch {
	case !exists && expectedVersion != 0:
		return 0, fmt.Errorf("%w: %s/%s does not exist", ErrVersionConflict, doc.Collection, doc.ID)
	case exists && current.Version != expectedVersion:
		return 0, fmt.Errorf("%w: %s/%s is at version %d, expected %d",
			ErrVersionConflict, doc.Collection, doc.ID, current.Version, expectedVersion)
	}

	if s.data[doc.Collection] == nil {
		s.data[doc.Collection] = make(map[string]Document)
	}
	stored := copyDocument(doc)
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = s.now().UTC()
	s.data[doc.Collection][doc.ID] = stored
	return stored.Version, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[collection] != nil {
		delete(s.data[collection], id)
	}
	return nil
}

// Len reports how many documents collection holds.
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[collection])
}

func copyDocument(doc Document) Document {
	out := doc
	out.State = append([]byte(nil), doc.State...)
	out.Keys = cloneKeys(doc.Keys)
	return out
}
