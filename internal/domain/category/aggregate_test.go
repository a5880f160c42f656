package category

import (
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

// ============================================
// Slug Generation Tests
// ============================================

func TestGenerateSlug_Various(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectedSlug string
	}{
		{"simple name", "Electronics", "electronics"},
		{"with spaces", "Home & Garden", "home-garden"},
		{"with underscores", "Sports_Equipment", "sports-equipment"},
		{"multiple spaces", "Men's   Clothing", "mens-clothing"},
		{"with numbers", "Category 123", "category-123"},
		{"special characters", "Books & Movies!", "books-movies"},
		{"leading/trailing spaces", "  Toys  ", "toys"},
		{"unicode characters", "日本語", ""},
		{"mixed unicode and ascii", "カテゴリー Category", "category"},
		{"multiple hyphens", "Multi---Hyphen", "multi-hyphen"},
		{"uppercase", "UPPERCASE", "uppercase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedSlug, GenerateSlug(tt.input))
		})
	}
}

// ============================================
// New / Update Tests
// ============================================

func TestNew_ValidCategory(t *testing.T) {
	c, err := New("cat-1", "Electronics", "electronics", "Electronic devices", "", 1, now)

	require.NoError(t, err)
	s := c.State()
	assert.Equal(t, "Electronics", s.Name)
	assert.Equal(t, "electronics", s.Slug)
	assert.True(t, c.IsActive())
	require.Len(t, c.Events(), 1)
	assert.Equal(t, EventCategoryCreated, c.Events()[0].EventType)
}

func TestNew_AutoGenerateSlug(t *testing.T) {
	c, err := New("cat-1", "Home & Garden", "", "", "", 0, now)

	require.NoError(t, err)
	assert.Equal(t, "home-garden", c.Slug())
}

func TestNew_Validation(t *testing.T) {
	_, err := New("cat-1", "", "x", "", "", 0, now)
	assert.ErrorIs(t, err, ErrInvalidName)

	for _, slug := range []string{"Invalid Slug", "UPPER", "trailing-", "-leading", "double--hyphen"} {
		_, err := New("cat-1", "Name", slug, "", "", 0, now)
		assert.ErrorIs(t, err, ErrInvalidSlug, slug)
	}

	_, err = New("cat-1", "日本語", "", "", "", 0, now)
	assert.ErrorIs(t, err, ErrInvalidSlug)

	_, err = New("cat-1", "Self", "self", "", "cat-1", 0, now)
	assert.ErrorIs(t, err, ErrSelfParent)
}

func TestCategory_Update(t *testing.T) {
	c, err := New("cat-1", "Electronics", "", "", "", 0, now)
	require.NoError(t, err)
	c = Reconstruct(c.State(), 1)

	next, err := c.Update("Consumer Electronics", "", "gadgets", shared.CategoryID("cat-root"), 3, now)

	require.NoError(t, err)
	s := next.State()
	assert.Equal(t, "consumer-electronics", s.Slug)
	assert.Equal(t, shared.CategoryID("cat-root"), s.ParentID)
	assert.Equal(t, 3, s.SortOrder)
	require.Len(t, next.Events(), 1)
	assert.Equal(t, EventCategoryUpdated, next.Events()[0].EventType)
	assert.Equal(t, "electronics", c.Slug())
}

func TestCategory_Deactivate(t *testing.T) {
	c, err := New("cat-1", "Electronics", "", "", "", 0, now)
	require.NoError(t, err)

	off := Reconstruct(c.State(), 1).Deactivate(now)

	assert.False(t, off.IsActive())
	require.Len(t, off.Events(), 1)
	assert.Empty(t, Reconstruct(off.State(), 2).Deactivate(now).Events())
}
