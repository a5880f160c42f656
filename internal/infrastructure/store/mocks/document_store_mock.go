package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-fulfillment/internal/infrastructure/store"
)

// MockDocumentStore records calls and delegates to a MemoryStore. Set PutErr
// to make every Put fail, or FailPutOn to fail only puts to one collection.
type MockDocumentStore struct {
	mu    sync.Mutex
	inner *store.MemoryStore

	PutErr    error
	FailPutOn string

	GetCalls    []GetCall
	FindCalls   []FindCall
	PutCalls    []PutCall
	DeleteCalls []GetCall
}

// GetCall records parameters passed to Get and Delete
type GetCall struct {
	Collection string
	ID         string
}

// FindCall records parameters passed to Find
type FindCall struct {
	Collection string
	Key        string
	Value      string
}

// PutCall records parameters passed to Put
type PutCall struct {
	Collection      string
	ID              string
	ExpectedVersion int
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{inner: store.NewMemoryStore()}
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, GetCall{Collection: collection, ID: id})
	m.mu.Unlock()
	return m.inner.Get(ctx, collection, id)
}

func (m *MockDocumentStore) Find(ctx context.Context, collection, key, value string) ([]store.Document, error) {
	m.mu.Lock()
	m.FindCalls = append(m.FindCalls, FindCall{Collection: collection, Key: key, Value: value})
	m.mu.Unlock()
	return m.inner.Find(ctx, collection, key, value)
}

func (m *MockDocumentStore) Put(ctx context.Context, doc store.Document, expectedVersion int) (int, error) {
	m.mu.Lock()
	m.PutCalls = append(m.PutCalls, PutCall{Collection: doc.Collection, ID: doc.ID, ExpectedVersion: expectedVersion})
	err := m.PutErr
	if m.FailPutOn != "" && m.FailPutOn != doc.Collection {
		err = nil
	}
	m.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return m.inner.Put(ctx, doc, expectedVersion)
}

func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, GetCall{Collection: collection, ID: id})
	m.mu.Unlock()
	return m.inner.Delete(ctx, collection, id)
}

// Len reports how many documents collection holds.
func (m *MockDocumentStore) Len(collection string) int {
	return m.inner.Len(collection)
}

// PutCollections lists the collections written to, in call order.
func (m *MockDocumentStore) PutCollections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.PutCalls))
	for i, c := range m.PutCalls {
		out[i] = c.Collection
	}
	return out
}

// Reset clears the recorded calls.
func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = nil
	m.FindCalls = nil
	m.PutCalls = nil
	m.DeleteCalls = nil
}
