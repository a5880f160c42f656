package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThen_RunsLeftToRight(t *testing.T) {
	var trace []string
	double := Step[int, int](func(_ context.Context, n int) (int, error) {
		trace = append(trace, "double")
		return n * 2, nil
	})
	format := Step[int, string](func(_ context.Context, n int) (string, error) {
		trace = append(trace, "format")
		return strconv.Itoa(n), nil
	})

	out, err := Then(double, format)(context.Background(), 21)

	require.NoError(t, err)
	assert.Equal(t, "42", out)
	assert.Equal(t, []string{"double", "format"}, trace)
}

func TestChain5_ShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	inc := Step[int, int](func(_ context.Context, n int) (int, error) {
		calls++
		return n + 1, nil
	})
	fail := Step[int, int](func(_ context.Context, n int) (int, error) {
		calls++
		return 0, boom
	})

	_, err := Chain5(inc, inc, fail, inc, inc)(context.Background(), 0)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestChain4(t *testing.T) {
	add := func(k int) Step[int, int] {
		return func(_ context.Context, n int) (int, error) { return n*10 + k, nil }
	}
	out, err := Chain4(add(1), add(2), add(3), add(4))(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1234, out)
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()
	createCalls := 0
	create := func(context.Context) (string, error) {
		createCalls++
		return "new", nil
	}

	v, created, err := FindOrCreate(ctx, func(context.Context) (string, bool, error) {
		return "existing", true, nil
	}, create)
	require.NoError(t, err)
	assert.Equal(t, "existing", v)
	assert.False(t, created)
	assert.Zero(t, createCalls)

	v, created, err = FindOrCreate(ctx, func(context.Context) (string, bool, error) {
		return "", false, nil
	}, create)
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.True(t, created)

	lookupErr := errors.New("db down")
	_, _, err = FindOrCreate(ctx, func(context.Context) (string, bool, error) {
		return "", false, lookupErr
	}, create)
	assert.ErrorIs(t, err, lookupErr)
	assert.Equal(t, 1, createCalls)
}

type fakeSource []aggregate.Event

func (f fakeSource) Events() []aggregate.Event { return f }

func TestCollect_KeepsOrder(t *testing.T) {
	a := fakeSource{{EventType: "A1"}, {EventType: "A2"}}
	b := fakeSource{{EventType: "B1"}}

	got := Collect(a, b)

	require.Len(t, got, 3)
	assert.Equal(t, "A1", got[0].EventType)
	assert.Equal(t, "B1", got[2].EventType)
}

func TestFound(t *testing.T) {
	missing := errors.New("thing not found")

	_, err := Found("", false, nil, missing)
	assert.ErrorIs(t, err, missing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	v, err := Found("x", true, nil, missing)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	cause := errors.New("timeout")
	_, err = Found("", false, cause, missing)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(err))
}

func TestPersisted(t *testing.T) {
	conflict := fmt.Errorf("save order: %w", aggregate.ErrConcurrentModification)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(Persisted(conflict)))
	assert.ErrorIs(t, Persisted(conflict), aggregate.ErrConcurrentModification)

	other := errors.New("disk full")
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(Persisted(other)))
	assert.NoError(t, Persisted(nil))
}

type fakeAgg struct {
	events []aggregate.Event
	saved  bool
}

func (f fakeAgg) Events() []aggregate.Event { return f.events }

func TestPersist(t *testing.T) {
	ctx := context.Background()
	saves := 0
	save := func(_ context.Context, a fakeAgg) (fakeAgg, error) {
		saves++
		return fakeAgg{saved: true}, nil
	}

	res, err := Persist(ctx, save, fakeAgg{events: []aggregate.Event{{EventType: "X"}}})
	require.NoError(t, err)
	assert.True(t, res.Value.saved)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "X", res.Events[0].EventType)

	res, err = Persist(ctx, save, fakeAgg{})
	require.NoError(t, err)
	assert.False(t, res.Value.saved, "nothing to save")
	assert.Equal(t, 1, saves)
}

func TestPersist_ClassifiesConflict(t *testing.T) {
	save := func(context.Context, fakeAgg) (fakeAgg, error) {
		return fakeAgg{}, aggregate.ErrConcurrentModification
	}

	_, err := Persist(context.Background(), save, fakeAgg{events: []aggregate.Event{{EventType: "X"}}})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

type ownedBy shared.AccountID

func (o ownedBy) BelongsTo(a shared.AccountID) bool { return shared.AccountID(o) == a }

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(Actor{AccountID: "acct-1"}, ownedBy("acct-1")))
	assert.NoError(t, Authorize(Actor{AccountID: "acct-9", Role: account.RoleAdmin}, ownedBy("acct-1")))

	err := Authorize(Actor{AccountID: "acct-2", Role: account.RoleCustomer}, ownedBy("acct-1"))
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Actor{AccountID: "acct-9", Role: account.RoleAdmin}))

	err := RequireAdmin(Actor{AccountID: "acct-1", Role: account.RoleCustomer})
	assert.ErrorIs(t, err, ErrAdminOnly)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestSaveAll_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var seen []string
	save := func(_ context.Context, a fakeAgg) (fakeAgg, error) {
		seen = append(seen, a.events[0].EventType)
		if a.events[0].EventType == "B" {
			return fakeAgg{}, boom
		}
		return fakeAgg{saved: true}, nil
	}
	aggs := []fakeAgg{
		{events: []aggregate.Event{{EventType: "A"}}},
		{events: []aggregate.Event{{EventType: "B"}}},
		{events: []aggregate.Event{{EventType: "C"}}},
	}

	saved, err := SaveAll(context.Background(), save, aggs)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, saved, 1)
	assert.Equal(t, []string{"A", "B"}, seen)
	assert.Len(t, EventsOf(aggs), 3)
}
