package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetAll lists products, optionally filtered and sorted via query params:
// ?search=, ?category=, ?sort=featured|price-asc|price-desc|name.
func (h *CatalogHandler) GetAll(c *gin.Context) {
	query := service.CatalogQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     service.SortOption(c.DefaultQuery("sort", string(service.SortFeatured))),
	}

	products, err := h.catalogService.Query(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *CatalogHandler) GetByID(c *gin.Context) {
	product, err := h.catalogService.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
