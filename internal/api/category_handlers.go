package api

import (
	"net/http"

	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/readmodel"
	"github.com/gin-gonic/gin"
)

// CategoryNode is a category with its active children.
type CategoryNode struct {
	readmodel.CategoryReadModel
	Children []CategoryNode `json:"children"`
}

// categoryTree nests cats under their parents. Categories whose parent is
// missing or inactive become roots. Sibling order follows cats.
func categoryTree(cats []readmodel.CategoryReadModel) []CategoryNode {
	known := make(map[shared.CategoryID]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}
	children := make(map[shared.CategoryID][]readmodel.CategoryReadModel)
	var roots []readmodel.CategoryReadModel
	for _, c := range cats {
		if c.ParentID == "" || !known[c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	var build func([]readmodel.CategoryReadModel) []CategoryNode
	build = func(level []readmodel.CategoryReadModel) []CategoryNode {
		out := make([]CategoryNode, 0, len(level))
		for _, c := range level {
			out = append(out, CategoryNode{CategoryReadModel: c, Children: build(children[c.ID])})
		}
		return out
	}
	return build(roots)
}

// ListCategories returns a flat list, or the tree with ?tree=true
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.query.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("tree") == "true" {
		c.JSON(http.StatusOK, categoryTree(cats))
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.query.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var cmd command.CreateCategory
	if !bindJSON(c, &cmd) {
		return
	}
	cat, err := h.cmd.CreateCategory(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Category(cat))
}

// Promotion Handlers

func (h *Handlers) GetPromotion(c *gin.Context) {
	p, err := h.query.GetPromotion(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreatePromotion(c *gin.Context) {
	var cmd command.CreatePromotion
	if !bindJSON(c, &cmd) {
		return
	}
	p, err := h.cmd.CreatePromotion(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.query.GetPromotion(c.Request.Context(), p.Code())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}
