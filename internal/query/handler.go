// Package query serves read models straight from the repositories.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/example/ec-fulfillment/internal/readmodel"
	"github.com/example/ec-fulfillment/internal/workflow"
)

var ErrUnknownStatus = errors.New("unknown order status")

type Handler struct {
	repos *repository.Set
	clock shared.Clock
	log   *logger.Logger
}

func NewHandler(repos *repository.Set, clock shared.Clock, log *logger.Logger) *Handler {
	return &Handler{repos: repos, clock: clock, log: log}
}

// fail logs unexpected read failures. Classified errors pass through quietly.
func (h *Handler) fail(op string, err error) error {
	err = apperr.Wrap(op, err)
	if apperr.KindOf(err) == apperr.KindUnexpected {
		h.log.Error("query failed", "op", op, "error", err)
	}
	return err
}

// =============================================================================
// Catalog
// =============================================================================

func (h *Handler) GetProduct(ctx context.Context, id shared.ProductID) (readmodel.ProductReadModel, error) {
	p, ok, err := h.repos.Products.FindByID(ctx, id)
	p, err = workflow.Found(p, ok, err, product.ErrProductNotFound)
	if err != nil {
		return readmodel.ProductReadModel{}, h.fail("GetProduct", err)
	}
	return h.withStock(ctx, p)
}

// ListProducts returns the active products, optionally of one category,
// ordered by name.
func (h *Handler) ListProducts(ctx context.Context, categoryID shared.CategoryID) ([]readmodel.ProductReadModel, error) {
	var (
		products []product.Product
		err      error
	)
	if categoryID != "" {
		products, err = h.repos.Products.FindByCategory(ctx, categoryID)
	} else {
		products, err = h.repos.Products.ListActive(ctx)
	}
	if err != nil {
		return nil, h.fail("ListProducts", err)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name() < products[j].Name() })

	out := make([]readmodel.ProductReadModel, 0, len(products))
	for _, p := range products {
		if !p.IsActive() {
			continue
		}
		m, err := h.withStock(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *Handler) withStock(ctx context.Context, p product.Product) (readmodel.ProductReadModel, error) {
	inv, ok, err := h.repos.Inventory.FindByProduct(ctx, p.ID())
	if err != nil {
		return readmodel.ProductReadModel{}, h.fail("GetProduct", err)
	}
	if !ok {
		return readmodel.Product(p, nil), nil
	}
	return readmodel.Product(p, &inv), nil
}

func (h *Handler) GetInventory(ctx context.Context, productID shared.ProductID) (readmodel.InventoryReadModel, error) {
	inv, ok, err := h.repos.Inventory.FindByProduct(ctx, productID)
	inv, err = workflow.Found(inv, ok, err, inventory.ErrInventoryNotFound)
	if err != nil {
		return readmodel.InventoryReadModel{}, h.fail("GetInventory", err)
	}
	return readmodel.Inventory(inv), nil
}

// ListCategories returns the active categories ordered by sort order, then
// name.
func (h *Handler) ListCategories(ctx context.Context) ([]readmodel.CategoryReadModel, error) {
	cats, err := h.repos.Categories.ListActive(ctx)
	if err != nil {
		return nil, h.fail("ListCategories", err)
	}
	out := make([]readmodel.CategoryReadModel, 0, len(cats))
	for _, c := range cats {
		out = append(out, readmodel.Category(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (h *Handler) GetCategoryBySlug(ctx context.Context, slug string) (readmodel.CategoryReadModel, error) {
	c, ok, err := h.repos.Categories.FindBySlug(ctx, slug)
	c, err = workflow.Found(c, ok, err, category.ErrCategoryNotFound)
	if err != nil {
		return readmodel.CategoryReadModel{}, h.fail("GetCategory", err)
	}
	return readmodel.Category(c), nil
}

func (h *Handler) GetPromotion(ctx context.Context, code string) (readmodel.PromotionReadModel, error) {
	p, ok, err := h.repos.Promotions.FindByCode(ctx, promotion.NormalizeCode(code))
	p, err = workflow.Found(p, ok, err, promotion.ErrPromotionNotFound)
	if err != nil {
		return readmodel.PromotionReadModel{}, h.fail("GetPromotion", err)
	}
	return readmodel.Promotion(p, h.clock.Now()), nil
}

// =============================================================================
// Cart and orders
// =============================================================================

// GetCart returns an empty cart when the account has none yet.
func (h *Handler) GetCart(ctx context.Context, accountID shared.AccountID) (readmodel.CartReadModel, error) {
	c, ok, err := h.repos.Carts.FindByAccount(ctx, accountID)
	if err != nil {
		return readmodel.CartReadModel{}, h.fail("GetCart", err)
	}
	if !ok {
		return readmodel.EmptyCart(accountID), nil
	}
	return readmodel.Cart(c), nil
}

func (h *Handler) GetOrder(ctx context.Context, actor workflow.Actor, id shared.OrderID) (readmodel.OrderReadModel, error) {
	o, err := h.ownedOrder(ctx, actor, id)
	if err != nil {
		return readmodel.OrderReadModel{}, h.fail("GetOrder", err)
	}
	payments, err := h.repos.Payments.FindByOrder(ctx, id)
	if err != nil {
		return readmodel.OrderReadModel{}, h.fail("GetOrder", err)
	}
	shipments, err := h.repos.Shipments.FindByOrder(ctx, id)
	if err != nil {
		return readmodel.OrderReadModel{}, h.fail("GetOrder", err)
	}
	return readmodel.Order(o, payments, shipments), nil
}

// ListOrders returns the actor's orders, newest first.
func (h *Handler) ListOrders(ctx context.Context, actor workflow.Actor) ([]readmodel.OrderSummary, error) {
	orders, err := h.repos.Orders.FindByAccount(ctx, actor.AccountID)
	if err != nil {
		return nil, h.fail("ListOrders", err)
	}
	return summaries(orders), nil
}

// ListOrdersByStatus is for admins. An unknown status fails as a rule
// violation.
func (h *Handler) ListOrdersByStatus(ctx context.Context, status string) ([]readmodel.OrderSummary, error) {
	s := order.Status(strings.ToUpper(status))
	if !s.Valid() {
		return nil, apperr.Rule(fmt.Errorf("%w: %q", ErrUnknownStatus, status))
	}
	orders, err := h.repos.Orders.FindByStatus(ctx, s)
	if err != nil {
		return nil, h.fail("ListOrdersByStatus", err)
	}
	return summaries(orders), nil
}

func summaries(orders []order.Order) []readmodel.OrderSummary {
	out := make([]readmodel.OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, readmodel.Summary(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (h *Handler) ownedOrder(ctx context.Context, actor workflow.Actor, id shared.OrderID) (order.Order, error) {
	o, ok, err := h.repos.Orders.FindByID(ctx, id)
	o, err = workflow.Found(o, ok, err, order.ErrOrderNotFound)
	if err != nil {
		return order.Order{}, err
	}
	if err := workflow.Authorize(actor, o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (h *Handler) GetPayment(ctx context.Context, actor workflow.Actor, id shared.PaymentID) (readmodel.PaymentReadModel, error) {
	p, ok, err := h.repos.Payments.FindByID(ctx, id)
	p, err = workflow.Found(p, ok, err, payment.ErrPaymentNotFound)
	if err == nil {
		err = workflow.Authorize(actor, p)
	}
	if err != nil {
		return readmodel.PaymentReadModel{}, h.fail("GetPayment", err)
	}
	return readmodel.Payment(p), nil
}

// GetShipment checks ownership through the shipment's order.
func (h *Handler) GetShipment(ctx context.Context, actor workflow.Actor, id shared.ShipmentID) (readmodel.ShipmentReadModel, error) {
	sh, ok, err := h.repos.Shipments.FindByID(ctx, id)
	sh, err = workflow.Found(sh, ok, err, shipment.ErrShipmentNotFound)
	if err == nil {
		_, err = h.ownedOrder(ctx, actor, sh.OrderID())
	}
	if err != nil {
		return readmodel.ShipmentReadModel{}, h.fail("GetShipment", err)
	}
	return readmodel.Shipment(sh), nil
}

// =============================================================================
// Accounts
// =============================================================================

func (h *Handler) GetAccount(ctx context.Context, id shared.AccountID) (readmodel.AccountReadModel, error) {
	a, ok, err := h.repos.Accounts.FindByID(ctx, id)
	a, err = workflow.Found(a, ok, err, account.ErrAccountNotFound)
	if err != nil {
		return readmodel.AccountReadModel{}, h.fail("GetAccount", err)
	}
	return readmodel.Account(a), nil
}

func (h *Handler) GetProfile(ctx context.Context, accountID shared.AccountID) (readmodel.ProfileReadModel, error) {
	p, ok, err := h.repos.Profiles.FindByAccount(ctx, accountID)
	p, err = workflow.Found(p, ok, err, profile.ErrProfileNotFound)
	if err != nil {
		return readmodel.ProfileReadModel{}, h.fail("GetProfile", err)
	}
	return readmodel.Profile(p), nil
}
