package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Entry is a decoded document state with the version it was stored at.
type Entry[S any] struct {
	State   S
	Version int
}

// Collection is a typed JSON view over one collection of a DocumentStore.
type Collection[S any] struct {
	store DocumentStore
	name  string
}

func NewCollection[S any](st DocumentStore, name string) Collection[S] {
	return Collection[S]{store: st, name: name}
}

func (c Collection[S]) Name() string {
	return c.name
}

func (c Collection[S]) Get(ctx context.Context, id string) (Entry[S], bool, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil || doc == nil {
		return Entry[S]{}, false, err
	}
	e, err := c.decode(*doc)
	if err != nil {
		return Entry[S]{}, false, err
	}
	return e, true, nil
}

func (c Collection[S]) Find(ctx context.Context, key, value string) ([]Entry[S], error) {
	docs, err := c.store.Find(ctx, c.name, key, value)
	if err != nil {
		return nil, err
	}
	out := make([]Entry[S], 0, len(docs))
	for _, doc := range docs {
		e, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// First returns the first match of Find, for keys that are unique.
func (c Collection[S]) First(ctx context.Context, key, value string) (Entry[S], bool, error) {
	entries, err := c.Find(ctx, key, value)
	if err != nil || len(entries) == 0 {
		return Entry[S]{}, false, err
	}
	return entries[0], true, nil
}

func (c Collection[S]) Put(ctx context.Context, id string, state S, keys map[string]string, expectedVersion int) (int, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("marshal %s/%s: %w", c.name, id, err)
	}
	return c.store.Put(ctx, Document{
		Collection: c.name,
		ID:         id,
		State:      raw,
		Keys:       keys,
	}, expectedVersion)
}

func (c Collection[S]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.name, id)
}

func (c Collection[S]) decode(doc Document) (Entry[S], error) {
	var s S
	if err := json.Unmarshal(doc.State, &s); err != nil {
		return Entry[S]{}, fmt.Errorf("unmarshal %s/%s: %w", c.name, doc.ID, err)
	}
	return Entry[S]{State: s, Version: doc.Version}, nil
}
