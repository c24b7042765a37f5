package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/config"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
	cfg          *config.Config
}

func NewAdminHandler(adminService *service.AdminService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{adminService: adminService, cfg: cfg}
}

func (h *AdminHandler) AddProduct(c *gin.Context) {
	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.adminService.AddProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	var req models.UpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.Param("id")

	product, err := h.adminService.UpdateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	if err := h.adminService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

func (h *AdminHandler) DecreaseStock(c *gin.Context) {
	var req models.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.DecreaseStock(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stock decreased"})
}

func (h *AdminHandler) RestockProduct(c *gin.Context) {
	var req models.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.RestockProduct(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stock replenished"})
}

// SetStripeConfiguration stores the payment provider credentials. The
// secret key is never echoed back.
func (h *AdminHandler) SetStripeConfiguration(c *gin.Context) {
	var req models.StripeConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.SetStripeConfiguration(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment provider configured"})
}

// GetOverview is the admin landing payload: whether the caller may manage
// the store, and whether hosted payments are configured.
func (h *AdminHandler) GetOverview(c *gin.Context) {
	isAdmin := true
	if err := h.adminService.EnsureAdmin(c.Request.Context()); err != nil {
		if !errors.Is(err, service.ErrForbidden) {
			respondError(c, err)
			return
		}
		isAdmin = false
	}

	c.JSON(http.StatusOK, gin.H{
		"is_admin":          isAdmin,
		"stripe_configured": h.adminService.IsStripeConfigured(c.Request.Context()),
	})
}

// GetDefaultCountries returns the country list the payment setup form is
// prefilled with.
func (h *AdminHandler) GetDefaultCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": h.cfg.DefaultCountries})
}

// GetPaymentStatus answers whether hosted payments are available.
func (h *AdminHandler) GetPaymentStatus(c *gin.Context) {
	configured := h.adminService.IsStripeConfigured(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"stripe_configured": configured})
}

func (h *AdminHandler) AssignRole(c *gin.Context) {
	var req models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.adminService.AssignRole(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role assigned"})
}
