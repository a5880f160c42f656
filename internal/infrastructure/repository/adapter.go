// Package repository implements the domain repository ports on top of a
// store.DocumentStore.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
)

// Secondary lookup keys written alongside each document.
const (
	keyAccount  = "account_id"
	keyOrder    = "order_id"
	keyStatus   = "status"
	keyProduct  = "product_id"
	keySKU      = "sku"
	keyCategory = "category_id"
	keySlug     = "slug"
	keyCode     = "code"
	keyEmail    = "email"
	keyActive   = "active"
)

type snapshot[S any] interface {
	State() S
	Version() int
}

// adapter maps one aggregate type onto a typed collection.
type adapter[S any, A snapshot[S]] struct {
	docs        store.Collection[S]
	reconstruct func(S, int) A
	id          func(S) string
	keys        func(S) map[string]string
}

func (a adapter[S, A]) byID(ctx context.Context, id string) (A, bool, error) {
	var zero A
	e, ok, err := a.docs.Get(ctx, id)
	if err != nil {
		return zero, false, fmt.Errorf("load %s %s: %w", a.docs.Name(), id, err)
	}
	if !ok {
		return zero, false, nil
	}
	return a.reconstruct(e.State, e.Version), true, nil
}

func (a adapter[S, A]) first(ctx context.Context, key, value string) (A, bool, error) {
	var zero A
	e, ok, err := a.docs.First(ctx, key, value)
	if err != nil {
		return zero, false, fmt.Errorf("load %s by %s: %w", a.docs.Name(), key, err)
	}
	if !ok {
		return zero, false, nil
	}
	return a.reconstruct(e.State, e.Version), true, nil
}

func (a adapter[S, A]) find(ctx context.Context, key, value string) ([]A, error) {
	entries, err := a.docs.Find(ctx, key, value)
	if err != nil {
		return nil, fmt.Errorf("list %s by %s: %w", a.docs.Name(), key, err)
	}
	out := make([]A, 0, len(entries))
	for _, e := range entries {
		out = append(out, a.reconstruct(e.State, e.Version))
	}
	return out, nil
}

// save writes the aggregate at its loaded version and returns it
// reconstructed at the new version with no pending events.
func (a adapter[S, A]) save(ctx context.Context, agg A) (A, error) {
	var zero A
	s := agg.State()
	id := a.id(s)
	var keys map[string]string
	if a.keys != nil {
		keys = a.keys(s)
	}
	v, err := a.docs.Put(ctx, id, s, keys, agg.Version())
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return zero, fmt.Errorf("save %s %s: %w: %w", a.docs.Name(), id, aggregate.ErrConcurrentModification, err)
		}
		return zero, fmt.Errorf("save %s %s: %w", a.docs.Name(), id, err)
	}
	return a.reconstruct(s, v), nil
}

func (a adapter[S, A]) delete(ctx context.Context, id string) error {
	if err := a.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", a.docs.Name(), id, err)
	}
	return nil
}
