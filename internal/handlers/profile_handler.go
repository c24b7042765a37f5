package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Get returns the caller's profile and role. A missing profile is not an
// error; the client uses it to prompt for first-time setup.
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	principal := middleware.Principal(c)

	profile, err := h.profileService.Profile(ctx, principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"role":    h.profileService.Role(ctx, principal).String(),
	})
}

func (h *ProfileHandler) Save(c *gin.Context) {
	var req models.SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileService.Save(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
