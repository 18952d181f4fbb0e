package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/present"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/render"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/pkg/view"
)

type CatalogHandler struct {
	Repo catalog.Repository
}

func NewCatalogHandler(repo catalog.Repository) *CatalogHandler {
	return &CatalogHandler{Repo: repo}
}

// GET /api/categories
func (h *CatalogHandler) Categories(c *gin.Context) {
	cs, err := h.Repo.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"categories": present.Categories(cs)})
}

// GET /api/products?category=&q=&featured=1&page=
func (h *CatalogHandler) Products(c *gin.Context) {
	page, size := pageParams(c, 24)
	featured := c.Query("featured")
	res, err := h.Repo.ListProducts(c.Request.Context(), catalog.ListParams{
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Q:            strings.TrimSpace(c.Query("q")),
		FeaturedOnly: featured == "1" || featured == "true",
		Page:         page,
		PageSize:     size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, view.NewPage(present.ProductCards(res.Items), res.Total, page, size))
}

// GET /api/products/:slug
func (h *CatalogHandler) Product(c *gin.Context) {
	p, err := h.Repo.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.ProductDetail(p))
}

// GET /api/gift-boxes
func (h *CatalogHandler) GiftBoxes(c *gin.Context) {
	gs, err := h.Repo.ListGiftBoxes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, gin.H{"gift_boxes": present.GiftBoxes(gs)})
}

// GET /api/gift-boxes/:slug
func (h *CatalogHandler) GiftBox(c *gin.Context) {
	g, err := h.Repo.GiftBoxBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	render.OK(c, present.GiftBox(g))
}
