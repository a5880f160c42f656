package cartflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	deps  Deps
	repos *repository.Set
	store *mocks.MockDocumentStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := mocks.NewMockDocumentStore()
	repos := repository.NewSet(st)
	f := fixture{
		deps: Deps{
			Carts:    repos.Carts,
			Products: repos.Products,
			Factory:  factory.New(&shared.SequenceIDs{Prefix: "id"}, shared.FixedClock{T: now}),
		},
		repos: repos,
		store: st,
	}
	return f
}

func (f fixture) product(t *testing.T, sku string, price int64) product.Product {
	t.Helper()
	p, err := f.deps.Factory.NewProduct(sku, "Item "+sku, "", decimal.NewFromInt(price))
	require.NoError(t, err)
	p, err = f.repos.Products.Save(context.Background(), p)
	require.NoError(t, err)
	return p
}

// =============================================================================
// GetOrCreateCart
// =============================================================================

func TestGetOrCreateCart_CreatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewGetOrCreateCart(f.deps)

	first, err := w.Execute(ctx, "acct-1")
	require.NoError(t, err)
	second, err := w.Execute(ctx, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, first.Value.ID(), second.Value.ID())
	assert.True(t, second.Value.IsEmpty())
	assert.Empty(t, first.Events)
	assert.Len(t, f.store.PutCalls, 1)
}

// barrierCarts holds every FindByAccount caller until n of them have looked,
// so all of them see "no cart" before any saves.
type barrierCarts struct {
	cart.Repository
	looked sync.WaitGroup
}

func newBarrierCarts(inner cart.Repository, n int) *barrierCarts {
	b := &barrierCarts{Repository: inner}
	b.looked.Add(n)
	return b
}

func (b *barrierCarts) FindByAccount(ctx context.Context, accountID shared.AccountID) (cart.Cart, bool, error) {
	c, ok, err := b.Repository.FindByAccount(ctx, accountID)
	b.looked.Done()
	b.looked.Wait()
	return c, ok, err
}

func race(n int, run func() error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = run()
		}(i)
	}
	wg.Wait()
	return errs
}

func TestGetOrCreateCart_ConcurrentFirstUseCreatesOneCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := f.deps
	deps.Carts = newBarrierCarts(f.repos.Carts, 2)
	w := NewGetOrCreateCart(deps)

	errs := race(2, func() error {
		_, err := w.Execute(ctx, "acct-1")
		return err
	})

	var conflicts int
	for _, err := range errs {
		if err != nil {
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 1, f.store.Len(repository.CollectionCarts))

	c, ok, err := f.repos.Carts.FindByAccount(ctx, "acct-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, shared.CartIDFor("acct-1"), c.ID())
}

func TestAddItemToCart_ConcurrentFirstAddKeepsOneCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "mug-1", 1000)
	deps := f.deps
	deps.Carts = newBarrierCarts(f.repos.Carts, 2)
	w := NewAddItemToCart(deps)

	errs := race(2, func() error {
		_, err := w.Execute(ctx, AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 1})
		return err
	})

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, aggregate.ErrConcurrentModification)
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, f.store.Len(repository.CollectionCarts))
}

// =============================================================================
// AddItemToCart
// =============================================================================

func TestAddItemToCart_NewCart(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "mug-1", 1200)

	res, err := NewAddItemToCart(f.deps).Execute(context.Background(), AddItemInput{
		AccountID: "acct-1", ProductID: p.ID(), Quantity: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Value.Version())
	assert.True(t, decimal.NewFromInt(2400).Equal(res.Value.Total()))
	require.Len(t, res.Events, 1)
	assert.Equal(t, cart.EventItemAdded, res.Events[0].EventType)
}

func TestAddItemToCart_MergesSameProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "mug-1", 1000)
	w := NewAddItemToCart(f.deps)

	_, err := w.Execute(ctx, AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 1})
	require.NoError(t, err)
	res, err := w.Execute(ctx, AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 3})
	require.NoError(t, err)

	items := res.Value.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, cart.EventItemQuantityChanged, res.Events[0].EventType)
}

func TestAddItemToCart_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := NewAddItemToCart(f.deps).Execute(context.Background(), AddItemInput{
		AccountID: "acct-1", ProductID: "missing", Quantity: 1,
	})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, f.store.PutCalls)
}

func TestAddItemToCart_InactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "mug-1", 1000)
	_, err := f.repos.Products.Save(ctx, p.Deactivate(now))
	require.NoError(t, err)
	f.store.Reset()

	_, err = NewAddItemToCart(f.deps).Execute(ctx, AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 1})

	assert.ErrorIs(t, err, product.ErrInactive)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
	assert.Empty(t, f.store.PutCalls)
}

func TestAddItemToCart_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "mug-1", 1000)

	_, err := NewAddItemToCart(f.deps).Execute(context.Background(), AddItemInput{AccountID: "acct-1", ProductID: p.ID()})

	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}

func TestAddItemToCart_SaveConflict(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "mug-1", 1000)
	f.store.FailPutOn = repository.CollectionCarts
	f.store.PutErr = store.ErrVersionConflict

	_, err := NewAddItemToCart(f.deps).Execute(context.Background(), AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 1})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

// =============================================================================
// Remove / update / clear
// =============================================================================

func seededCart(t *testing.T, f fixture) product.Product {
	t.Helper()
	p := f.product(t, "mug-1", 1000)
	_, err := NewAddItemToCart(f.deps).Execute(context.Background(), AddItemInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 2})
	require.NoError(t, err)
	f.store.Reset()
	return p
}

func TestRemoveCartItem(t *testing.T) {
	f := newFixture(t)
	p := seededCart(t, f)

	res, err := NewRemoveCartItem(f.deps).Execute(context.Background(), RemoveItemInput{AccountID: "acct-1", ProductID: p.ID()})

	require.NoError(t, err)
	assert.True(t, res.Value.IsEmpty())
	assert.Equal(t, cart.EventItemRemoved, res.Events[0].EventType)
}

func TestRemoveCartItem_AbsentProductSavesNothing(t *testing.T) {
	f := newFixture(t)
	seededCart(t, f)

	res, err := NewRemoveCartItem(f.deps).Execute(context.Background(), RemoveItemInput{AccountID: "acct-1", ProductID: "other"})

	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Empty(t, f.store.PutCalls)
}

func TestRemoveCartItem_NoCart(t *testing.T) {
	f := newFixture(t)

	_, err := NewRemoveCartItem(f.deps).Execute(context.Background(), RemoveItemInput{AccountID: "acct-1", ProductID: "p"})

	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateCartItemQuantity(t *testing.T) {
	f := newFixture(t)
	p := seededCart(t, f)
	w := NewUpdateCartItemQuantity(f.deps)

	res, err := w.Execute(context.Background(), UpdateQuantityInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Value.Items()[0].Quantity)

	res, err = w.Execute(context.Background(), UpdateQuantityInput{AccountID: "acct-1", ProductID: p.ID(), Quantity: 0})
	require.NoError(t, err)
	assert.True(t, res.Value.IsEmpty())
	assert.Equal(t, cart.EventItemRemoved, res.Events[0].EventType)
}

func TestClearCart(t *testing.T) {
	f := newFixture(t)
	seededCart(t, f)
	w := NewClearCart(f.deps)

	res, err := w.Execute(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.True(t, res.Value.IsEmpty())
	require.Len(t, res.Events, 1)
	assert.Equal(t, cart.EventCartCleared, res.Events[0].EventType)

	res, err = w.Execute(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, res.Events, "clearing an empty cart emits nothing")
	assert.Len(t, f.store.PutCalls, 1)
}
