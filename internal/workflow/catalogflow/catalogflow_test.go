package catalogflow

import (
	"context"
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)

type fixture struct {
	deps  Deps
	repos *repository.Set
	store *mocks.MockDocumentStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st := mocks.NewMockDocumentStore()
	repos := repository.NewSet(st)
	return fixture{
		deps: Deps{
			Products:   repos.Products,
			Inventory:  repos.Inventory,
			Categories: repos.Categories,
			Promotions: repos.Promotions,
			Factory:    factory.New(&shared.SequenceIDs{Prefix: "id"}, shared.FixedClock{T: now}),
		},
		repos: repos,
		store: st,
	}
}

func mug() ProductInput {
	return ProductInput{SKU: "mug-01", Name: "Mug", Price: decimal.NewFromInt(1200), InitialStock: 5}
}

func (f fixture) category(t *testing.T, name string) category.Category {
	t.Helper()
	res, err := NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	f.store.Reset()
	return res.Value
}

// =============================================================================
// CreateProduct
// =============================================================================

func TestCreateProduct_InitialisesInventory(t *testing.T) {
	f := newFixture(t)

	res, err := NewCreateProduct(f.deps).Execute(context.Background(), mug())

	require.NoError(t, err)
	p, inv := res.Value.Product, res.Value.Inventory
	assert.Equal(t, "MUG-01", p.SKU())
	assert.Equal(t, p.ID(), inv.ProductID())
	assert.Equal(t, 5, inv.Available())
	require.Len(t, res.Events, 2)
	assert.Equal(t, product.EventProductCreated, res.Events[0].EventType)
	assert.Equal(t, inventory.EventInventoryCreated, res.Events[1].EventType)
	assert.Equal(t, []string{repository.CollectionProducts, repository.CollectionInventory}, f.store.PutCollections())

	stored, ok, err := f.repos.Inventory.FindByProduct(context.Background(), p.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, stored.Available())
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := NewCreateProduct(f.deps).Execute(ctx, mug())
	require.NoError(t, err)
	f.store.Reset()

	in := mug()
	in.SKU = " MUG-01 "
	_, err = NewCreateProduct(f.deps).Execute(ctx, in)

	assert.ErrorIs(t, err, product.ErrDuplicateSKU)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, f.store.PutCalls)
}

func TestCreateProduct_WithCategory(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Kitchen")
	in := mug()
	in.CategoryID = c.ID()

	res, err := NewCreateProduct(f.deps).Execute(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, c.ID(), res.Value.Product.State().CategoryID)
	require.Len(t, res.Events, 3)
	assert.Equal(t, product.EventProductCategoryAssigned, res.Events[1].EventType)
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	in := mug()
	in.CategoryID = "nope"

	_, err := NewCreateProduct(f.deps).Execute(context.Background(), in)

	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateProduct_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		want   error
	}{
		{"zero price", func(in *ProductInput) { in.Price = decimal.Zero }, product.ErrInvalidPrice},
		{"blank name", func(in *ProductInput) { in.Name = " " }, product.ErrInvalidName},
		{"negative stock", func(in *ProductInput) { in.InitialStock = -1 }, inventory.ErrNegativeInitialStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := mug()
			tt.mutate(&in)

			_, err := NewCreateProduct(f.deps).Execute(context.Background(), in)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
			assert.Empty(t, f.store.PutCalls)
		})
	}
}

func TestCreateProduct_InventorySaveFailsAfterProduct(t *testing.T) {
	f := newFixture(t)
	f.store.FailPutOn = repository.CollectionInventory
	f.store.PutErr = store.ErrVersionConflict

	_, err := NewCreateProduct(f.deps).Execute(context.Background(), mug())

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, ok, err := f.repos.Products.FindBySKU(context.Background(), "MUG-01")
	require.NoError(t, err)
	assert.True(t, ok, "product stays saved")
}

// =============================================================================
// CreateCategory
// =============================================================================

func TestCreateCategory_GeneratesSlug(t *testing.T) {
	f := newFixture(t)

	res, err := NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: "Home & Kitchen"})

	require.NoError(t, err)
	assert.Equal(t, "home-kitchen", res.Value.Slug())
	assert.Equal(t, []string{repository.CollectionCategories}, f.store.PutCollections())
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	f := newFixture(t)
	f.category(t, "Kitchen")

	_, err := NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: "Other", Slug: "kitchen"})

	assert.ErrorIs(t, err, category.ErrDuplicateSlug)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateCategory_Parent(t *testing.T) {
	f := newFixture(t)
	parent := f.category(t, "Kitchen")

	res, err := NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: "Mugs", ParentID: parent.ID()})
	require.NoError(t, err)
	assert.Equal(t, parent.ID(), res.Value.State().ParentID)

	_, err = NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: "Cups", ParentID: "nope"})
	assert.ErrorIs(t, err, category.ErrCategoryNotFound)
}

func TestCreateCategory_InvalidSlug(t *testing.T) {
	f := newFixture(t)

	_, err := NewCreateCategory(f.deps).Execute(context.Background(), CategoryInput{Name: "Mugs", Slug: "Bad Slug"})

	assert.ErrorIs(t, err, category.ErrInvalidSlug)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}

// =============================================================================
// AdjustInventory
// =============================================================================

func TestAdjustInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := NewCreateProduct(f.deps).Execute(ctx, mug())
	require.NoError(t, err)
	pid := created.Value.Product.ID()
	w := NewAdjustInventory(f.deps)

	res, err := w.Execute(ctx, AdjustInput{ProductID: pid, Delta: 3, Reason: "restock"})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Value.Available())

	res, err = w.Execute(ctx, AdjustInput{ProductID: pid, Delta: -8, Reason: "write-off"})
	require.NoError(t, err)
	assert.Zero(t, res.Value.Available())
	require.Len(t, res.Events, 2)
	assert.Equal(t, inventory.EventStockDepleted, res.Events[1].EventType)

	_, err = w.Execute(ctx, AdjustInput{ProductID: pid, Delta: -1})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}

func TestAdjustInventory_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := NewAdjustInventory(f.deps).Execute(context.Background(), AdjustInput{ProductID: "nope", Delta: 1})

	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// =============================================================================
// CreatePromotion
// =============================================================================

func summer() PromotionInput {
	return PromotionInput{
		Code:     "summer10",
		Kind:     promotion.DiscountPercentage,
		Value:    decimal.NewFromInt(10),
		StartsAt: now,
		EndsAt:   now.AddDate(0, 1, 0),
	}
}

func TestCreatePromotion(t *testing.T) {
	f := newFixture(t)

	res, err := NewCreatePromotion(f.deps).Execute(context.Background(), summer())

	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", res.Value.Code())
	assert.Equal(t, []string{repository.CollectionPromotions}, f.store.PutCollections())
}

func TestCreatePromotion_DuplicateCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := NewCreatePromotion(f.deps).Execute(ctx, summer())
	require.NoError(t, err)

	_, err = NewCreatePromotion(f.deps).Execute(ctx, summer())

	assert.ErrorIs(t, err, promotion.ErrDuplicateCode)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreatePromotion_InvalidPeriod(t *testing.T) {
	f := newFixture(t)
	in := summer()
	in.EndsAt = in.StartsAt

	_, err := NewCreatePromotion(f.deps).Execute(context.Background(), in)

	assert.ErrorIs(t, err, promotion.ErrInvalidPeriod)
	assert.Equal(t, apperr.KindDomainRule, apperr.KindOf(err))
}
