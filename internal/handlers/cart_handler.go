package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type CartHandler struct {
	cartService    *service.CartService
	catalogService *service.CatalogService
}

func NewCartHandler(cartService *service.CartService, catalogService *service.CatalogService) *CartHandler {
	return &CartHandler{cartService: cartService, catalogService: catalogService}
}

func cartResponse(lines []models.CartLine) gin.H {
	return gin.H{
		"items":       lines,
		"total_cents": service.TotalCents(lines),
		"item_count":  service.Count(lines),
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	lines, err := h.cartService.Get(middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(lines))
}

// Add puts one unit of a product into the cart, merging with an existing
// line for the same product.
func (h *CartHandler) Add(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalogService.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	lines, err := h.cartService.Add(middleware.SessionID(c), *product)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(lines))
}

func (h *CartHandler) Remove(c *gin.Context) {
	lines, err := h.cartService.Remove(middleware.SessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(lines))
}

// SetQuantity updates a line's quantity; zero or less removes the line.
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req models.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, err := h.cartService.SetQuantity(middleware.SessionID(c), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(lines))
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(middleware.SessionID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartResponse(nil))
}
