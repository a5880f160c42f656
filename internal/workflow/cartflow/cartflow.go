// Package cartflow holds the shopping cart use cases.
package cartflow

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
)

type Deps struct {
	Carts    cart.Repository
	Products product.Repository
	Factory  *factory.Factory
}

// loadOrNew returns the account's cart, or a new unsaved one.
func loadOrNew(ctx context.Context, d Deps, accountID shared.AccountID) (cart.Cart, error) {
	c, _, err := workflow.FindOrCreate(ctx,
		func(ctx context.Context) (cart.Cart, bool, error) {
			return d.Carts.FindByAccount(ctx, accountID)
		},
		func(context.Context) (cart.Cart, error) {
			c, err := d.Factory.NewCart(accountID)
			return c, workflow.Rule(err)
		},
	)
	return c, err
}

func loadExisting(ctx context.Context, d Deps, accountID shared.AccountID) (cart.Cart, error) {
	c, ok, err := d.Carts.FindByAccount(ctx, accountID)
	return workflow.Found(c, ok, err, cart.ErrCartNotFound)
}

// =============================================================================
// GetOrCreateCart
// =============================================================================

type GetOrCreateCart struct {
	deps Deps
}

func NewGetOrCreateCart(d Deps) *GetOrCreateCart {
	return &GetOrCreateCart{deps: d}
}

// Execute returns the account's cart, creating and saving an empty one on
// first use.
func (w *GetOrCreateCart) Execute(ctx context.Context, accountID shared.AccountID) (workflow.Result[cart.Cart], error) {
	c, _, err := workflow.FindOrCreate(ctx,
		func(ctx context.Context) (cart.Cart, bool, error) {
			return w.deps.Carts.FindByAccount(ctx, accountID)
		},
		func(ctx context.Context) (cart.Cart, error) {
			c, err := w.deps.Factory.NewCart(accountID)
			if err != nil {
				return cart.Cart{}, workflow.Rule(err)
			}
			saved, err := w.deps.Carts.Save(ctx, c)
			return saved, workflow.Persisted(err)
		},
	)
	if err != nil {
		return workflow.Result[cart.Cart]{}, err
	}
	return workflow.Result[cart.Cart]{Value: c}, nil
}

// =============================================================================
// AddItemToCart
// =============================================================================

type AddItemInput struct {
	AccountID shared.AccountID
	ProductID shared.ProductID
	Quantity  int
}

type addItemFound struct {
	in      AddItemInput
	product product.Product
}

type addItemValidated struct {
	addItemFound
}

type addItemLoaded struct {
	addItemValidated
	cart cart.Cart
}

type addItemMutated struct {
	cart cart.Cart
}

type AddItemToCart struct {
	deps Deps
	run  workflow.Step[AddItemInput, workflow.Result[cart.Cart]]
}

func NewAddItemToCart(d Deps) *AddItemToCart {
	w := &AddItemToCart{deps: d}
	w.run = workflow.Chain5(w.findProduct, w.validate, w.loadCart, w.mutate, w.persist)
	return w
}

// Execute adds the product at its current catalog price. A product already
// in the cart has its quantity increased.
func (w *AddItemToCart) Execute(ctx context.Context, in AddItemInput) (workflow.Result[cart.Cart], error) {
	return w.run(ctx, in)
}

func (w *AddItemToCart) findProduct(ctx context.Context, in AddItemInput) (addItemFound, error) {
	p, ok, err := w.deps.Products.FindByID(ctx, in.ProductID)
	p, err = workflow.Found(p, ok, err, product.ErrProductNotFound)
	if err != nil {
		return addItemFound{}, err
	}
	return addItemFound{in: in, product: p}, nil
}

func (w *AddItemToCart) validate(_ context.Context, f addItemFound) (addItemValidated, error) {
	if !f.product.IsActive() {
		return addItemValidated{}, workflow.Rule(product.ErrInactive)
	}
	return addItemValidated{f}, nil
}

func (w *AddItemToCart) loadCart(ctx context.Context, v addItemValidated) (addItemLoaded, error) {
	c, err := loadOrNew(ctx, w.deps, v.in.AccountID)
	if err != nil {
		return addItemLoaded{}, err
	}
	return addItemLoaded{addItemValidated: v, cart: c}, nil
}

func (w *AddItemToCart) mutate(_ context.Context, l addItemLoaded) (addItemMutated, error) {
	c, err := l.cart.AddItem(l.product.ID(), l.product.Name(), l.product.Price(), l.in.Quantity, w.deps.Factory.Now())
	if err != nil {
		return addItemMutated{}, workflow.Rule(err)
	}
	return addItemMutated{cart: c}, nil
}

func (w *AddItemToCart) persist(ctx context.Context, m addItemMutated) (workflow.Result[cart.Cart], error) {
	return workflow.Persist(ctx, w.deps.Carts.Save, m.cart)
}

// =============================================================================
// RemoveCartItem / UpdateCartItemQuantity / ClearCart
// =============================================================================

type RemoveItemInput struct {
	AccountID shared.AccountID
	ProductID shared.ProductID
}

type removeItemFound struct {
	in   RemoveItemInput
	cart cart.Cart
}

type cartMutated struct {
	cart cart.Cart
}

type RemoveCartItem struct {
	deps Deps
	run  workflow.Step[RemoveItemInput, workflow.Result[cart.Cart]]
}

func NewRemoveCartItem(d Deps) *RemoveCartItem {
	w := &RemoveCartItem{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute removes the product's line. Removing an absent product saves
// nothing and emits nothing.
func (w *RemoveCartItem) Execute(ctx context.Context, in RemoveItemInput) (workflow.Result[cart.Cart], error) {
	return w.run(ctx, in)
}

func (w *RemoveCartItem) find(ctx context.Context, in RemoveItemInput) (removeItemFound, error) {
	c, err := loadExisting(ctx, w.deps, in.AccountID)
	if err != nil {
		return removeItemFound{}, err
	}
	return removeItemFound{in: in, cart: c}, nil
}

func (w *RemoveCartItem) mutate(_ context.Context, f removeItemFound) (cartMutated, error) {
	c, err := f.cart.RemoveItem(f.in.ProductID, w.deps.Factory.Now())
	if err != nil {
		return cartMutated{}, workflow.Rule(err)
	}
	return cartMutated{cart: c}, nil
}

func (w *RemoveCartItem) persist(ctx context.Context, m cartMutated) (workflow.Result[cart.Cart], error) {
	return workflow.Persist(ctx, w.deps.Carts.Save, m.cart)
}

type UpdateQuantityInput struct {
	AccountID shared.AccountID
	ProductID shared.ProductID
	Quantity  int
}

type updateQuantityFound struct {
	in   UpdateQuantityInput
	cart cart.Cart
}

type UpdateCartItemQuantity struct {
	deps Deps
	run  workflow.Step[UpdateQuantityInput, workflow.Result[cart.Cart]]
}

func NewUpdateCartItemQuantity(d Deps) *UpdateCartItemQuantity {
	w := &UpdateCartItemQuantity{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

// Execute sets the line's quantity. Zero or less removes the line.
func (w *UpdateCartItemQuantity) Execute(ctx context.Context, in UpdateQuantityInput) (workflow.Result[cart.Cart], error) {
	return w.run(ctx, in)
}

func (w *UpdateCartItemQuantity) find(ctx context.Context, in UpdateQuantityInput) (updateQuantityFound, error) {
	c, err := loadExisting(ctx, w.deps, in.AccountID)
	if err != nil {
		return updateQuantityFound{}, err
	}
	return updateQuantityFound{in: in, cart: c}, nil
}

func (w *UpdateCartItemQuantity) mutate(_ context.Context, f updateQuantityFound) (cartMutated, error) {
	c, err := f.cart.UpdateItemQuantity(f.in.ProductID, f.in.Quantity, w.deps.Factory.Now())
	if err != nil {
		return cartMutated{}, workflow.Rule(err)
	}
	return cartMutated{cart: c}, nil
}

func (w *UpdateCartItemQuantity) persist(ctx context.Context, m cartMutated) (workflow.Result[cart.Cart], error) {
	return workflow.Persist(ctx, w.deps.Carts.Save, m.cart)
}

type ClearCart struct {
	deps Deps
	run  workflow.Step[shared.AccountID, workflow.Result[cart.Cart]]
}

func NewClearCart(d Deps) *ClearCart {
	w := &ClearCart{deps: d}
	w.run = workflow.Chain3(w.find, w.mutate, w.persist)
	return w
}

func (w *ClearCart) Execute(ctx context.Context, accountID shared.AccountID) (workflow.Result[cart.Cart], error) {
	return w.run(ctx, accountID)
}

func (w *ClearCart) find(ctx context.Context, accountID shared.AccountID) (cart.Cart, error) {
	return loadExisting(ctx, w.deps, accountID)
}

func (w *ClearCart) mutate(_ context.Context, c cart.Cart) (cartMutated, error) {
	cleared, err := c.Clear(w.deps.Factory.Now())
	if err != nil {
		return cartMutated{}, workflow.Rule(err)
	}
	return cartMutated{cart: cleared}, nil
}

func (w *ClearCart) persist(ctx context.Context, m cartMutated) (workflow.Result[cart.Cart], error) {
	return workflow.Persist(ctx, w.deps.Carts.Save, m.cart)
}
