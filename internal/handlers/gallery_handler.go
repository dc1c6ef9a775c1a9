package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"mediamatrixhub/internal/services"
	"mediamatrixhub/internal/web"

	"github.com/gin-gonic/gin"
)

// GalleryHandler serves the public category pages.
type GalleryHandler struct {
	*BaseHandler
	galleryService  services.GalleryService
	categoryService services.CategoryService
}

func NewGalleryHandler(base *BaseHandler, gallery services.GalleryService, categories services.CategoryService) *GalleryHandler {
	return &GalleryHandler{
		BaseHandler:     base,
		galleryService:  gallery,
		categoryService: categories,
	}
}

// RegisterRoutes mounts the pages below rg (the /core group).
func (h *GalleryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories/", h.Categories)
	rg.GET("/c/:category_name/", h.Show)
	rg.GET("/c/:category_name/search/", h.Search)
}

func (h *GalleryHandler) Show(c *gin.Context) {
	page, err := h.galleryService.CategoryGallery(h.GetDB(c), c.Param("category_name"))
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageGallery, h.Page(page.Category.Name, gin.H{"Page": page}))
}

func (h *GalleryHandler) Search(c *gin.Context) {
	page, err := h.galleryService.SearchCategory(h.GetDB(c), c.Param("category_name"), strings.TrimSpace(c.Query("q")))
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.HTML(http.StatusOK, web.PageGallery, h.Page(page.Category.Name, gin.H{"Page": page}))
}

func (h *GalleryHandler) Categories(c *gin.Context) {
	base := strings.TrimSuffix(h.URL("core"), "/")
	tree, err := h.categoryService.RenderTreeHTML(h.GetDB(c), base)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	// RenderTreeHTML escapes every name it emits.
	c.HTML(http.StatusOK, web.PageCategories, h.Page("Categorie", gin.H{"Tree": template.HTML(tree)}))
}
