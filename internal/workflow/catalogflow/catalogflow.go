// Package catalogflow maintains products, their stock, categories and
// promotions.
package catalogflow

import (
	"context"
	"time"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/shopspring/decimal"
)

type Deps struct {
	Products   product.Repository
	Inventory  inventory.Repository
	Categories category.Repository
	Promotions promotion.Repository
	Factory    *factory.Factory
}

func requireCategory(ctx context.Context, repo category.Repository, id shared.CategoryID) error {
	if id == "" {
		return nil
	}
	_, ok, err := repo.FindByID(ctx, id)
	_, err = workflow.Found(struct{}{}, ok, err, category.ErrCategoryNotFound)
	return err
}

// =============================================================================
// CreateProduct
// =============================================================================

type ProductInput struct {
	SKU          string
	Name         string
	Description  string
	Price        decimal.Decimal
	CategoryID   shared.CategoryID
	InitialStock int
}

// ProductStock is a product together with its inventory.
type ProductStock struct {
	Product   product.Product
	Inventory inventory.Inventory
}

type CreateProduct struct {
	deps Deps
	run  workflow.Step[ProductInput, workflow.Result[ProductStock]]
}

func NewCreateProduct(d Deps) *CreateProduct {
	w := &CreateProduct{deps: d}
	w.run = workflow.Chain3(w.validate, w.mutate, w.persist)
	return w
}

// Execute creates the product and its inventory. The product is saved first.
func (w *CreateProduct) Execute(ctx context.Context, in ProductInput) (workflow.Result[ProductStock], error) {
	return w.run(ctx, in)
}

func (w *CreateProduct) validate(ctx context.Context, in ProductInput) (ProductInput, error) {
	_, taken, err := w.deps.Products.FindBySKU(ctx, product.NormalizeSKU(in.SKU))
	if err != nil {
		return ProductInput{}, err
	}
	if taken {
		return ProductInput{}, apperr.Conflict(product.ErrDuplicateSKU)
	}
	if err := requireCategory(ctx, w.deps.Categories, in.CategoryID); err != nil {
		return ProductInput{}, err
	}
	return in, nil
}

func (w *CreateProduct) mutate(_ context.Context, in ProductInput) (ProductStock, error) {
	p, err := w.deps.Factory.NewProduct(in.SKU, in.Name, in.Description, in.Price)
	if err != nil {
		return ProductStock{}, workflow.Rule(err)
	}
	if in.CategoryID != "" {
		if p, err = p.AssignCategory(in.CategoryID, w.deps.Factory.Now()); err != nil {
			return ProductStock{}, workflow.Rule(err)
		}
	}
	inv, err := w.deps.Factory.NewInventory(p.ID(), in.InitialStock)
	if err != nil {
		return ProductStock{}, workflow.Rule(err)
	}
	return ProductStock{Product: p, Inventory: inv}, nil
}

func (w *CreateProduct) persist(ctx context.Context, ps ProductStock) (workflow.Result[ProductStock], error) {
	events := workflow.Collect(ps.Product, ps.Inventory)
	p, err := w.deps.Products.Save(ctx, ps.Product)
	if err != nil {
		return workflow.Result[ProductStock]{}, workflow.Persisted(err)
	}
	inv, err := w.deps.Inventory.Save(ctx, ps.Inventory)
	if err != nil {
		return workflow.Result[ProductStock]{}, workflow.Persisted(err)
	}
	return workflow.Result[ProductStock]{Value: ProductStock{Product: p, Inventory: inv}, Events: events}, nil
}

// =============================================================================
// CreateCategory
// =============================================================================

type CategoryInput struct {
	Name string
	// Slug is generated from Name when blank.
	Slug        string
	Description string
	ParentID    shared.CategoryID
	SortOrder   int
}

type CreateCategory struct {
	deps Deps
	run  workflow.Step[CategoryInput, workflow.Result[category.Category]]
}

func NewCreateCategory(d Deps) *CreateCategory {
	w := &CreateCategory{deps: d}
	w.run = workflow.Chain4(w.parse, w.validate, w.mutate, w.persist)
	return w
}

func (w *CreateCategory) Execute(ctx context.Context, in CategoryInput) (workflow.Result[category.Category], error) {
	return w.run(ctx, in)
}

func (w *CreateCategory) parse(_ context.Context, in CategoryInput) (CategoryInput, error) {
	if in.Slug == "" {
		in.Slug = category.GenerateSlug(in.Name)
	}
	return in, nil
}

func (w *CreateCategory) validate(ctx context.Context, in CategoryInput) (CategoryInput, error) {
	_, taken, err := w.deps.Categories.FindBySlug(ctx, in.Slug)
	if err != nil {
		return CategoryInput{}, err
	}
	if taken {
		return CategoryInput{}, apperr.Conflict(category.ErrDuplicateSlug)
	}
	if err := requireCategory(ctx, w.deps.Categories, in.ParentID); err != nil {
		return CategoryInput{}, err
	}
	return in, nil
}

func (w *CreateCategory) mutate(_ context.Context, in CategoryInput) (category.Category, error) {
	c, err := w.deps.Factory.NewCategory(in.Name, in.Slug, in.Description, in.ParentID, in.SortOrder)
	return c, workflow.Rule(err)
}

func (w *CreateCategory) persist(ctx context.Context, c category.Category) (workflow.Result[category.Category], error) {
	return workflow.Persist(ctx, w.deps.Categories.Save, c)
}

// =============================================================================
// AdjustInventory
// =============================================================================

type AdjustInput struct {
	ProductID shared.ProductID
	Delta     int
	Reason    string
}

type adjustFound struct {
	in        AdjustInput
	inventory inventory.Inventory
}

type AdjustInventory struct {
	deps Deps
	run  workflow.Step[AdjustInput, workflow.Result[inventory.Inventory]]
}

func NewAdjustInventory(d Deps) *AdjustInventory {
	w := &AdjustInventory{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute adds Delta, which may be negative, to the product's available
// stock.
func (w *AdjustInventory) Execute(ctx context.Context, in AdjustInput) (workflow.Result[inventory.Inventory], error) {
	return w.run(ctx, in)
}

func (w *AdjustInventory) find(ctx context.Context, in AdjustInput) (adjustFound, error) {
	inv, ok, err := w.deps.Inventory.FindByProduct(ctx, in.ProductID)
	inv, err = workflow.Found(inv, ok, err, inventory.ErrInventoryNotFound)
	if err != nil {
		return adjustFound{}, err
	}
	return adjustFound{in: in, inventory: inv}, nil
}

func (w *AdjustInventory) mutate(_ context.Context, f adjustFound) (inventory.Inventory, error) {
	inv, err := f.inventory.AdjustQuantity(f.in.Delta, f.in.Reason, w.deps.Factory.Now())
	return inv, workflow.Rule(err)
}

func (w *AdjustInventory) persist(ctx context.Context, inv inventory.Inventory) (workflow.Result[inventory.Inventory], error) {
	return workflow.Persist(ctx, w.deps.Inventory.Save, inv)
}

// =============================================================================
// CreatePromotion
// =============================================================================

type PromotionInput struct {
	Code        string
	Description string
	Kind        promotion.DiscountType
	Value       decimal.Decimal
	StartsAt    time.Time
	EndsAt      time.Time
}

type CreatePromotion struct {
	deps Deps
	run  workflow.Step[PromotionInput, workflow.Result[promotion.Promotion]]
}

func NewCreatePromotion(d Deps) *CreatePromotion {
	w := &CreatePromotion{deps: d}
	w.run = workflow.Chain3(w.validate, w.mutate, w.persist)
	return w
}

func (w *CreatePromotion) Execute(ctx context.Context, in PromotionInput) (workflow.Result[promotion.Promotion], error) {
	return w.run(ctx, in)
}

func (w *CreatePromotion) validate(ctx context.Context, in PromotionInput) (PromotionInput, error) {
	_, taken, err := w.deps.Promotions.FindByCode(ctx, promotion.NormalizeCode(in.Code))
	if err != nil {
		return PromotionInput{}, err
	}
	if taken {
		return PromotionInput{}, apperr.Conflict(promotion.ErrDuplicateCode)
	}
	return in, nil
}

func (w *CreatePromotion) mutate(_ context.Context, in PromotionInput) (promotion.Promotion, error) {
	p, err := w.deps.Factory.NewPromotion(in.Code, in.Description, in.Kind, in.Value, in.StartsAt, in.EndsAt)
	return p, workflow.Rule(err)
}

func (w *CreatePromotion) persist(ctx context.Context, p promotion.Promotion) (workflow.Result[promotion.Promotion], error) {
	return workflow.Persist(ctx, w.deps.Promotions.Save, p)
}
