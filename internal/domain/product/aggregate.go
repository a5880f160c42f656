package product

import (
	"errors"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateType = "Product"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidSKU      = errors.New("sku is required")
	ErrDuplicateSKU    = errors.New("sku already in use")
	ErrInactive        = errors.New("product is not available")
)

type State struct {
	ID          shared.ProductID  `json:"id"`
	SKU         string            `json:"sku"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	CategoryID  shared.CategoryID `json:"category_id,omitempty"`
	Active      bool              `json:"active"`
	shared.AuditInfo
}

type Product struct {
	aggregate.Root
	s State
}

// New creates an active product. SKU uniqueness is checked by the caller.
func New(id shared.ProductID, sku, name, description string, price decimal.Decimal, now time.Time) (Product, error) {
	if err := shared.RequireNonBlank("product_id", string(id)); err != nil {
		return Product{}, err
	}
	sku = NormalizeSKU(sku)
	if sku == "" {
		return Product{}, ErrInvalidSKU
	}
	if strings.TrimSpace(name) == "" {
		return Product{}, ErrInvalidName
	}
	if !price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}
	s := State{
		ID:          id,
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price,
		Active:      true,
		AuditInfo:   shared.NewAuditInfo(now),
	}
	return Product{}.next(s, EventProductCreated, ProductCreated{
		ProductID:   id,
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
	}, now), nil
}

// NormalizeSKU uppercases and trims a SKU.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func Reconstruct(s State, version int) Product {
	return Product{Root: aggregate.Rehydrate(version), s: s}
}

func (p Product) ID() shared.ProductID { return p.s.ID }
func (p Product) SKU() string { return p.s.SKU }
func (p Product) Name() string { return p.s.Name }
func (p Product) Price() decimal.Decimal { return p.s.Price }
func (p Product) IsActive() bool { return p.s.Active }
func (p Product) State() State { return p.s }

func (p Product) Update(name, description string, price decimal.Decimal, now time.Time) (Product, error) {
	if strings.TrimSpace(name) == "" {
		return Product{}, ErrInvalidName
	}
	if !price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}
	s := p.s
	s.Name = name
	s.Description = description
	s.Price = price
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventProductUpdated, ProductUpdated{
		ProductID:   s.ID,
		Name:        name,
		Description: description,
		Price:       price,
		UpdatedAt:   now,
	}, now), nil
}

func (p Product) AssignCategory(categoryID shared.CategoryID, now time.Time) (Product, error) {
	if err := shared.RequireNonBlank("category_id", string(categoryID)); err != nil {
		return Product{}, err
	}
	if p.s.CategoryID == categoryID {
		return p, nil
	}
	s := p.s
	s.CategoryID = categoryID
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventProductCategoryAssigned, ProductCategoryAssigned{
		ProductID:  s.ID,
		CategoryID: categoryID,
		AssignedAt: now,
	}, now), nil
}

// Deactivate takes the product off sale. Deactivating twice is a no-op.
func (p Product) Deactivate(now time.Time) Product {
	if !p.s.Active {
		return p
	}
	s := p.s
	s.Active = false
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventProductDeactivated, ProductDeactivated{ProductID: s.ID, DeactivatedAt: now}, now)
}

func (p Product) next(s State, eventType string, data any, now time.Time) Product {
	return Product{
		Root: p.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}
