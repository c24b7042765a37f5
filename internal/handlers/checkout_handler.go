package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

type CheckoutHandler struct {
	checkoutService  *service.CheckoutService
	reconcileService *service.ReconcileService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, reconcileService *service.ReconcileService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, reconcileService: reconcileService}
}

// Checkout places the order for the session's cart. The response either
// carries the submitted order id or a redirect URL to the hosted payment
// page.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	result, err := h.checkoutService.Checkout(c.Request.Context(), middleware.SessionID(c), middleware.Principal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkout": result})
}

// PaymentSuccess is the hosted-payment return endpoint. When the session_id
// query parameter is present the payment session is verified first; without
// it the pending order is settled directly.
func (h *CheckoutHandler) PaymentSuccess(c *gin.Context) {
	result, err := h.reconcileService.Reconcile(c.Request.Context(), middleware.SessionID(c), middleware.Principal(c), c.Query("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reconciliation": result})
}

// PaymentFailure is the cancel/failure return endpoint. The cart and its
// snapshot stay intact for a retry.
func (h *CheckoutHandler) PaymentFailure(c *gin.Context) {
	h.reconcileService.Abandon(middleware.SessionID(c), c.Query("session_id"))
	c.JSON(http.StatusOK, gin.H{"status": "payment not completed", "cart_retained": true})
}
