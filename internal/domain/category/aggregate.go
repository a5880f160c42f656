package category

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
)

const AggregateType = "Category"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidName      = errors.New("name is required")
	ErrInvalidSlug      = errors.New("invalid slug format")
	ErrDuplicateSlug    = errors.New("slug already in use")
	ErrSelfParent       = errors.New("category cannot be its own parent")
)

// slugRegex validates slug format (lowercase letters, numbers, hyphens)
var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
)

type State struct {
	ID          shared.CategoryID `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	ParentID    shared.CategoryID `json:"parent_id,omitempty"`
	SortOrder   int               `json:"sort_order"`
	Active      bool              `json:"active"`
	shared.AuditInfo
}

type Category struct {
	aggregate.Root
	s State
}

// New creates an active category. An empty slug is derived from name.
func New(id shared.CategoryID, name, slug, description string, parentID shared.CategoryID, sortOrder int, now time.Time) (Category, error) {
	if err := shared.RequireNonBlank("category_id", string(id)); err != nil {
		return Category{}, err
	}
	s := State{ID: id, Description: description, SortOrder: sortOrder, Active: true, AuditInfo: shared.NewAuditInfo(now)}
	if err := s.apply(name, slug, parentID); err != nil {
		return Category{}, err
	}
	return Category{}.next(s, EventCategoryCreated, CategoryCreated{
		CategoryID:  id,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: description,
		ParentID:    s.ParentID,
		SortOrder:   sortOrder,
		CreatedAt:   now,
	}, now), nil
}

func Reconstruct(s State, version int) Category {
	return Category{Root: aggregate.Rehydrate(version), s: s}
}

func (c Category) ID() shared.CategoryID { return c.s.ID }
func (c Category) Slug() string { return c.s.Slug }
func (c Category) IsActive() bool { return c.s.Active }
func (c Category) State() State { return c.s }

func (c Category) Update(name, slug, description string, parentID shared.CategoryID, sortOrder int, now time.Time) (Category, error) {
	s := c.s
	if err := s.apply(name, slug, parentID); err != nil {
		return Category{}, err
	}
	s.Description = description
	s.SortOrder = sortOrder
	s.AuditInfo = s.Touch(now)
	return c.next(s, EventCategoryUpdated, CategoryUpdated{
		CategoryID:  s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		Description: description,
		ParentID:    s.ParentID,
		SortOrder:   sortOrder,
		UpdatedAt:   now,
	}, now), nil
}

func (c Category) Deactivate(now time.Time) Category {
	if !c.s.Active {
		return c
	}
	s := c.s
	s.Active = false
	s.AuditInfo = s.Touch(now)
	return c.next(s, EventCategoryDeactivated, CategoryDeactivated{CategoryID: s.ID, DeactivatedAt: now}, now)
}

func (s *State) apply(name, slug string, parentID shared.CategoryID) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if slug == "" {
		slug = GenerateSlug(name)
	}
	if !slugRegex.MatchString(slug) {
		return ErrInvalidSlug
	}
	if parentID != "" && parentID == s.ID {
		return ErrSelfParent
	}
	s.Name = name
	s.Slug = slug
	s.ParentID = parentID
	return nil
}

// GenerateSlug creates a URL-friendly slug from a name
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (c Category) next(s State, eventType string, data any, now time.Time) Category {
	return Category{
		Root: c.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}
