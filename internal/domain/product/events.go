package product

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventProductCreated          = "ProductCreated"
	EventProductUpdated          = "ProductUpdated"
	EventProductDeactivated      = "ProductDeactivated"
	EventProductCategoryAssigned = "ProductCategoryAssigned"
)

type ProductCreated struct {
	ProductID   shared.ProductID `json:"product_id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   shared.ProductID `json:"product_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type ProductDeactivated struct {
	ProductID     shared.ProductID `json:"product_id"`
	DeactivatedAt time.Time        `json:"deactivated_at"`
}

type ProductCategoryAssigned struct {
	ProductID  shared.ProductID  `json:"product_id"`
	CategoryID shared.CategoryID `json:"category_id"`
	AssignedAt time.Time         `json:"assigned_at"`
}
