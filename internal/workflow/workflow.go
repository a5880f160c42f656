// Package workflow composes typed steps into use-case pipelines. A pipeline
// runs its steps left to right and stops at the first error.
package workflow

import (
	"context"
	"errors"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

var (
	ErrNotOwner  = errors.New("resource belongs to another account")
	ErrAdminOnly = errors.New("operation requires an admin account")
)

// Step is one stage of a pipeline.
type Step[In, Out any] func(ctx context.Context, in In) (Out, error)

func Then[A, B, C any](first Step[A, B], second Step[B, C]) Step[A, C] {
	return func(ctx context.Context, in A) (C, error) {
		mid, err := first(ctx, in)
		if err != nil {
			var zero C
			return zero, err
		}
		return second(ctx, mid)
	}
}

func Chain3[A, B, C, D any](s1 Step[A, B], s2 Step[B, C], s3 Step[C, D]) Step[A, D] {
	return Then(Then(s1, s2), s3)
}

func Chain4[A, B, C, D, E any](s1 Step[A, B], s2 Step[B, C], s3 Step[C, D], s4 Step[D, E]) Step[A, E] {
	return Then(Chain3(s1, s2, s3), s4)
}

func Chain5[A, B, C, D, E, F any](s1 Step[A, B], s2 Step[B, C], s3 Step[C, D], s4 Step[D, E], s5 Step[E, F]) Step[A, F] {
	return Then(Chain4(s1, s2, s3, s4), s5)
}

// FindOrCreate returns what find yields, running create only when find
// reports nothing. created reports which branch produced the value.
func FindOrCreate[T any](
	ctx context.Context,
	find func(context.Context) (T, bool, error),
	create func(context.Context) (T, error),
) (value T, created bool, err error) {
	value, found, err := find(ctx)
	if err != nil {
		return value, false, err
	}
	if found {
		return value, false, nil
	}
	value, err = create(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return value, true, nil
}

// Result is what a successful run hands back: the completed aggregate and
// the events emitted during the run in emission order.
type Result[T any] struct {
	Value  T
	Events []aggregate.Event
}

// EventSource is satisfied by every aggregate through its embedded Root.
type EventSource interface {
	Events() []aggregate.Event
}

// Collect concatenates the pending events of sources in argument order.
func Collect(sources ...EventSource) []aggregate.Event {
	var out []aggregate.Event
	for _, s := range sources {
		out = append(out, s.Events()...)
	}
	return out
}

// Found turns a repository lookup into a step outcome. A miss becomes a
// not-found failure carrying notFound.
func Found[T any](v T, ok bool, err error, notFound error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		var zero T
		return zero, apperr.NotFound(notFound)
	}
	return v, nil
}

// Rule classifies a failed domain mutation.
func Rule(err error) error {
	return apperr.Rule(err)
}

// Persisted classifies a failed save. Version mismatches become conflicts;
// anything else stays unexpected.
func Persisted(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, aggregate.ErrConcurrentModification) {
		return apperr.Conflict(err)
	}
	return err
}

// Persist saves agg and hands back the saved value with the events agg
// carried. An aggregate without pending events is returned as is.
func Persist[A EventSource](ctx context.Context, save func(context.Context, A) (A, error), agg A) (Result[A], error) {
	events := agg.Events()
	if len(events) == 0 {
		return Result[A]{Value: agg}, nil
	}
	saved, err := save(ctx, agg)
	if err != nil {
		return Result[A]{}, Persisted(err)
	}
	return Result[A]{Value: saved, Events: events}, nil
}

// Actor is the account a use case runs for.
type Actor struct {
	AccountID shared.AccountID
	Role      string
}

func (a Actor) IsAdmin() bool {
	return a.Role == account.RoleAdmin
}

type owned interface {
	BelongsTo(shared.AccountID) bool
}

// Authorize fails with ErrNotOwner unless the actor owns target or is an
// admin.
func Authorize(actor Actor, target owned) error {
	if actor.IsAdmin() || target.BelongsTo(actor.AccountID) {
		return nil
	}
	return apperr.Forbidden(ErrNotOwner)
}

// RequireAdmin fails with ErrAdminOnly unless the actor is an admin.
func RequireAdmin(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return apperr.Forbidden(ErrAdminOnly)
}

// EventsOf concatenates the pending events of aggs in slice order.
func EventsOf[A EventSource](aggs []A) []aggregate.Event {
	var out []aggregate.Event
	for _, a := range aggs {
		out = append(out, a.Events()...)
	}
	return out
}

// SaveAll saves aggs in slice order and stops at the first failure. Earlier
// saves stay committed.
func SaveAll[A EventSource](ctx context.Context, save func(context.Context, A) (A, error), aggs []A) ([]A, error) {
	out := make([]A, 0, len(aggs))
	for _, a := range aggs {
		saved, err := save(ctx, a)
		if err != nil {
			return out, Persisted(err)
		}
		out = append(out, saved)
	}
	return out, nil
}
