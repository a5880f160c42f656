package repository

import (
	"context"
	"strconv"

	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
)

// Collection names.
const (
	CollectionCarts      = "carts"
	CollectionOrders     = "orders"
	CollectionPayments   = "payments"
	CollectionShipments  = "shipments"
	CollectionInventory  = "inventory"
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionPromotions = "promotions"
	CollectionAccounts   = "accounts"
	CollectionProfiles   = "profiles"
)

// Set bundles one repository per aggregate over a shared store.
type Set struct {
	Carts      *CartRepository
	Orders     *OrderRepository
	Payments   *PaymentRepository
	Shipments  *ShipmentRepository
	Inventory  *InventoryRepository
	Products   *ProductRepository
	Categories *CategoryRepository
	Promotions *PromotionRepository
	Accounts   *AccountRepository
	Profiles   *ProfileRepository
	Sessions   *SessionRepository
}

func NewSet(st store.DocumentStore) *Set {
	return &Set{
		Carts:      NewCartRepository(st),
		Orders:     NewOrderRepository(st),
		Payments:   NewPaymentRepository(st),
		Shipments:  NewShipmentRepository(st),
		Inventory:  NewInventoryRepository(st),
		Products:   NewProductRepository(st),
		Categories: NewCategoryRepository(st),
		Promotions: NewPromotionRepository(st),
		Accounts:   NewAccountRepository(st),
		Profiles:   NewProfileRepository(st),
		Sessions:   NewSessionRepository(st),
	}
}

// =============================================================================
// Cart
// =============================================================================

type CartRepository struct {
	a adapter[cart.State, cart.Cart]
}

var _ cart.Repository = (*CartRepository)(nil)

func NewCartRepository(st store.DocumentStore) *CartRepository {
	return &CartRepository{a: adapter[cart.State, cart.Cart]{
		docs:        store.NewCollection[cart.State](st, CollectionCarts),
		reconstruct: cart.Reconstruct,
		id:          func(s cart.State) string { return string(s.ID) },
		keys: func(s cart.State) map[string]string {
			return map[string]string{keyAccount: string(s.AccountID)}
		},
	}}
}

func (r *CartRepository) FindByID(ctx context.Context, id shared.CartID) (cart.Cart, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *CartRepository) FindByAccount(ctx context.Context, accountID shared.AccountID) (cart.Cart, bool, error) {
	return r.a.first(ctx, keyAccount, string(accountID))
}

func (r *CartRepository) Save(ctx context.Context, c cart.Cart) (cart.Cart, error) {
	return r.a.save(ctx, c)
}

func (r *CartRepository) Delete(ctx context.Context, id shared.CartID) error {
	return r.a.delete(ctx, string(id))
}

// =============================================================================
// Order
// =============================================================================

type OrderRepository struct {
	a adapter[order.State, order.Order]
}

var _ order.Repository = (*OrderRepository)(nil)

func NewOrderRepository(st store.DocumentStore) *OrderRepository {
	return &OrderRepository{a: adapter[order.State, order.Order]{
		docs:        store.NewCollection[order.State](st, CollectionOrders),
		reconstruct: order.Reconstruct,
		id:          func(s order.State) string { return string(s.ID) },
		keys: func(s order.State) map[string]string {
			return map[string]string{keyAccount: string(s.AccountID), keyStatus: string(s.Status)}
		},
	}}
}

func (r *OrderRepository) FindByID(ctx context.Context, id shared.OrderID) (order.Order, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *OrderRepository) FindByAccount(ctx context.Context, accountID shared.AccountID) ([]order.Order, error) {
	return r.a.find(ctx, keyAccount, string(accountID))
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return r.a.find(ctx, keyStatus, string(status))
}

func (r *OrderRepository) Save(ctx context.Context, o order.Order) (order.Order, error) {
	return r.a.save(ctx, o)
}

// =============================================================================
// Payment
// =============================================================================

type PaymentRepository struct {
	a adapter[payment.State, payment.Payment]
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(st store.DocumentStore) *PaymentRepository {
	return &PaymentRepository{a: adapter[payment.State, payment.Payment]{
		docs:        store.NewCollection[payment.State](st, CollectionPayments),
		reconstruct: payment.Reconstruct,
		id:          func(s payment.State) string { return string(s.ID) },
		keys: func(s payment.State) map[string]string {
			return map[string]string{keyOrder: string(s.OrderID), keyStatus: string(s.Status)}
		},
	}}
}

func (r *PaymentRepository) FindByID(ctx context.Context, id shared.PaymentID) (payment.Payment, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID shared.OrderID) ([]payment.Payment, error) {
	return r.a.find(ctx, keyOrder, string(orderID))
}

func (r *PaymentRepository) FindByStatus(ctx context.Context, status payment.Status) ([]payment.Payment, error) {
	return r.a.find(ctx, keyStatus, string(status))
}

func (r *PaymentRepository) Save(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	return r.a.save(ctx, p)
}

// =============================================================================
// Shipment
// =============================================================================

type ShipmentRepository struct {
	a adapter[shipment.State, shipment.Shipment]
}

var _ shipment.Repository = (*ShipmentRepository)(nil)

func NewShipmentRepository(st store.DocumentStore) *ShipmentRepository {
	return &ShipmentRepository{a: adapter[shipment.State, shipment.Shipment]{
		docs:        store.NewCollection[shipment.State](st, CollectionShipments),
		reconstruct: shipment.Reconstruct,
		id:          func(s shipment.State) string { return string(s.ID) },
		keys: func(s shipment.State) map[string]string {
			return map[string]string{keyOrder: string(s.OrderID), keyStatus: string(s.Status)}
		},
	}}
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id shared.ShipmentID) (shipment.Shipment, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *ShipmentRepository) FindByOrder(ctx context.Context, orderID shared.OrderID) ([]shipment.Shipment, error) {
	return r.a.find(ctx, keyOrder, string(orderID))
}

func (r *ShipmentRepository) FindByStatus(ctx context.Context, status shipment.Status) ([]shipment.Shipment, error) {
	return r.a.find(ctx, keyStatus, string(status))
}

func (r *ShipmentRepository) Save(ctx context.Context, sh shipment.Shipment) (shipment.Shipment, error) {
	return r.a.save(ctx, sh)
}

// =============================================================================
// Inventory
// =============================================================================

type InventoryRepository struct {
	a adapter[inventory.State, inventory.Inventory]
}

var _ inventory.Repository = (*InventoryRepository)(nil)

func NewInventoryRepository(st store.DocumentStore) *InventoryRepository {
	return &InventoryRepository{a: adapter[inventory.State, inventory.Inventory]{
		docs:        store.NewCollection[inventory.State](st, CollectionInventory),
		reconstruct: inventory.Reconstruct,
		id:          func(s inventory.State) string { return string(s.ID) },
		keys: func(s inventory.State) map[string]string {
			return map[string]string{keyProduct: string(s.ProductID)}
		},
	}}
}

func (r *InventoryRepository) FindByID(ctx context.Context, id shared.InventoryID) (inventory.Inventory, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *InventoryRepository) FindByProduct(ctx context.Context, productID shared.ProductID) (inventory.Inventory, bool, error) {
	return r.a.first(ctx, keyProduct, string(productID))
}

func (r *InventoryRepository) Save(ctx context.Context, i inventory.Inventory) (inventory.Inventory, error) {
	return r.a.save(ctx, i)
}

// =============================================================================
// Product
// =============================================================================

type ProductRepository struct {
	a adapter[product.State, product.Product]
}

var _ product.Repository = (*ProductRepository)(nil)

func NewProductRepository(st store.DocumentStore) *ProductRepository {
	return &ProductRepository{a: adapter[product.State, product.Product]{
		docs:        store.NewCollection[product.State](st, CollectionProducts),
		reconstruct: product.Reconstruct,
		id:          func(s product.State) string { return string(s.ID) },
		keys: func(s product.State) map[string]string {
			return map[string]string{keySKU: s.SKU, keyCategory: string(s.CategoryID), keyActive: strconv.FormatBool(s.Active)}
		},
	}}
}

func (r *ProductRepository) FindByID(ctx context.Context, id shared.ProductID) (product.Product, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (product.Product, bool, error) {
	return r.a.first(ctx, keySKU, product.NormalizeSKU(sku))
}

func (r *ProductRepository) FindByCategory(ctx context.Context, categoryID shared.CategoryID) ([]product.Product, error) {
	return r.a.find(ctx, keyCategory, string(categoryID))
}

// ListActive returns the products on sale.
func (r *ProductRepository) ListActive(ctx context.Context) ([]product.Product, error) {
	return r.a.find(ctx, keyActive, "true")
}

func (r *ProductRepository) Save(ctx context.Context, p product.Product) (product.Product, error) {
	return r.a.save(ctx, p)
}

func (r *ProductRepository) Delete(ctx context.Context, id shared.ProductID) error {
	return r.a.delete(ctx, string(id))
}

// =============================================================================
// Category
// =============================================================================

type CategoryRepository struct {
	a adapter[category.State, category.Category]
}

var _ category.Repository = (*CategoryRepository)(nil)

func NewCategoryRepository(st store.DocumentStore) *CategoryRepository {
	return &CategoryRepository{a: adapter[category.State, category.Category]{
		docs:        store.NewCollection[category.State](st, CollectionCategories),
		reconstruct: category.Reconstruct,
		id:          func(s category.State) string { return string(s.ID) },
		keys: func(s category.State) map[string]string {
			return map[string]string{keySlug: s.Slug, keyActive: strconv.FormatBool(s.Active)}
		},
	}}
}

func (r *CategoryRepository) FindByID(ctx context.Context, id shared.CategoryID) (category.Category, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (category.Category, bool, error) {
	return r.a.first(ctx, keySlug, slug)
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]category.Category, error) {
	return r.a.find(ctx, keyActive, "true")
}

func (r *CategoryRepository) Save(ctx context.Context, c category.Category) (category.Category, error) {
	return r.a.save(ctx, c)
}

func (r *CategoryRepository) Delete(ctx context.Context, id shared.CategoryID) error {
	return r.a.delete(ctx, string(id))
}

// =============================================================================
// Promotion
// =============================================================================

type PromotionRepository struct {
	a adapter[promotion.State, promotion.Promotion]
}

var _ promotion.Repository = (*PromotionRepository)(nil)

func NewPromotionRepository(st store.DocumentStore) *PromotionRepository {
	return &PromotionRepository{a: adapter[promotion.State, promotion.Promotion]{
		docs:        store.NewCollection[promotion.State](st, CollectionPromotions),
		reconstruct: promotion.Reconstruct,
		id:          func(s promotion.State) string { return string(s.ID) },
		keys: func(s promotion.State) map[string]string {
			return map[string]string{keyCode: s.Code}
		},
	}}
}

func (r *PromotionRepository) FindByID(ctx context.Context, id shared.PromotionID) (promotion.Promotion, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (promotion.Promotion, bool, error) {
	return r.a.first(ctx, keyCode, promotion.NormalizeCode(code))
}

func (r *PromotionRepository) Save(ctx context.Context, p promotion.Promotion) (promotion.Promotion, error) {
	return r.a.save(ctx, p)
}

func (r *PromotionRepository) Delete(ctx context.Context, id shared.PromotionID) error {
	return r.a.delete(ctx, string(id))
}

// =============================================================================
// Account
// =============================================================================

type AccountRepository struct {
	a adapter[account.State, account.Account]
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(st store.DocumentStore) *AccountRepository {
	return &AccountRepository{a: adapter[account.State, account.Account]{
		docs:        store.NewCollection[account.State](st, CollectionAccounts),
		reconstruct: account.Reconstruct,
		id:          func(s account.State) string { return string(s.ID) },
		keys: func(s account.State) map[string]string {
			return map[string]string{keyEmail: string(s.Email)}
		},
	}}
}

func (r *AccountRepository) FindByID(ctx context.Context, id shared.AccountID) (account.Account, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email shared.Email) (account.Account, bool, error) {
	return r.a.first(ctx, keyEmail, string(email))
}

func (r *AccountRepository) Save(ctx context.Context, a account.Account) (account.Account, error) {
	return r.a.save(ctx, a)
}

// =============================================================================
// Profile
// =============================================================================

type ProfileRepository struct {
	a adapter[profile.State, profile.Profile]
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(st store.DocumentStore) *ProfileRepository {
	return &ProfileRepository{a: adapter[profile.State, profile.Profile]{
		docs:        store.NewCollection[profile.State](st, CollectionProfiles),
		reconstruct: profile.Reconstruct,
		id:          func(s profile.State) string { return string(s.ID) },
		keys: func(s profile.State) map[string]string {
			return map[string]string{keyAccount: string(s.AccountID)}
		},
	}}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id shared.ProfileID) (profile.Profile, bool, error) {
	return r.a.byID(ctx, string(id))
}

func (r *ProfileRepository) FindByAccount(ctx context.Context, accountID shared.AccountID) (profile.Profile, bool, error) {
	return r.a.first(ctx, keyAccount, string(accountID))
}

func (r *ProfileRepository) Save(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return r.a.save(ctx, p)
}
