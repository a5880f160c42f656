// Package store persists aggregate snapshots as versioned JSON documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrVersionConflict = errors.New("document version conflict")

// Document is one persisted aggregate. Keys holds the secondary lookup
// values (account id, sku, status, ...) that Find can filter on.
type Document struct {
	Collection string            `json:"collection"`
	ID         string            `json:"id"`
	Version    int               `json:"version"`
	State      json.RawMessage   `json:"state"`
	Keys       map[string]string `json:"keys,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// DocumentStore is implemented by the memory, Postgres, DynamoDB and Redis
// backends.
type DocumentStore interface {
	// Get returns nil, nil when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Find returns every document in collection whose key equals value.
	Find(ctx context.Context, collection, key, value string) ([]Document, error)

	// Put writes doc when the stored version equals expectedVersion and
	// returns the new version. An expectedVersion of 0 means the document
	// must not exist yet. A mismatch fails with ErrVersionConflict.
	Put(ctx context.Context, doc Document, expectedVersion int) (int, error)

	Delete(ctx context.Context, collection, id string) error
}

func cloneKeys(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
