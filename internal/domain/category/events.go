package category

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const (
	EventCategoryCreated     = "CategoryCreated"
	EventCategoryUpdated     = "CategoryUpdated"
	EventCategoryDeactivated = "CategoryDeactivated"
)

type CategoryCreated struct {
	CategoryID  shared.CategoryID `json:"category_id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	ParentID    shared.CategoryID `json:"parent_id,omitempty"`
	SortOrder   int               `json:"sort_order"`
	CreatedAt   time.Time         `json:"created_at"`
}

type CategoryUpdated struct {
	CategoryID  shared.CategoryID `json:"category_id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	ParentID    shared.CategoryID `json:"parent_id,omitempty"`
	SortOrder   int               `json:"sort_order"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CategoryDeactivated struct {
	CategoryID    shared.CategoryID `json:"category_id"`
	DeactivatedAt time.Time         `json:"deactivated_at"`
}
