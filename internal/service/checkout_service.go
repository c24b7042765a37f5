package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/config"
	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAuthRequired is returned when checkout is attempted anonymously.
	ErrAuthRequired = errors.New("sign in to place an order")
)

// CheckoutResult tells the caller how the checkout proceeded: either the
// order was submitted directly (OrderID set), or the browser must follow
// RedirectURL to the hosted payment page.
type CheckoutResult struct {
	OrderID     uint64 `json:"order_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Hosted      bool   `json:"hosted"`
}

// CheckoutService drives the two checkout paths. When the payment provider
// is not configured orders are submitted to the backend directly; otherwise
// a hosted payment session is created and the cart is kept until the
// payment return is reconciled.
type CheckoutService struct {
	backend      backend.Backend
	cartService  *CartService
	snapshotRepo repository.SnapshotRepository
	cache        *cache.Cache
	config       *config.Config
}

func NewCheckoutService(
	b backend.Backend,
	cartService *CartService,
	snapshotRepo repository.SnapshotRepository,
	cacheService *cache.Cache,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		backend:      b,
		cartService:  cartService,
		snapshotRepo: snapshotRepo,
		cache:        cacheService,
		config:       cfg,
	}
}

// Checkout places the order for the session's cart. The principal must be an
// authenticated user: the backend rejects anonymous orders anyway, but the
// gate here keeps the cart intact and the error message friendly.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID, principal string) (*CheckoutResult, error) {
	if principal == "" {
		return nil, ErrAuthRequired
	}

	lines, err := s.cartService.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	configured, err := s.backend.IsStripeConfigured(ctx)
	if err != nil {
		// No answer means no hosted payments; fall back to direct
		// submission rather than blocking the order.
		logger.Warn("Could not determine payment configuration, using direct checkout", map[string]interface{}{
			"error": err.Error(),
		})
		configured = false
	}

	if !configured {
		return s.checkoutDirect(ctx, sessionID, principal, lines)
	}
	return s.checkoutHosted(ctx, sessionID, principal, lines)
}

func (s *CheckoutService) checkoutDirect(ctx context.Context, sessionID, principal string, lines []models.CartLine) (*CheckoutResult, error) {
	orderID, err := s.backend.SubmitOrder(ctx, orderLines(lines))
	if err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(sessionID); err != nil {
		logger.Error(err, "Failed to clear cart after order submission", map[string]interface{}{
			"session_id": sessionID,
			"order_id":   orderID,
		})
	}
	if s.cache != nil {
		s.cache.InvalidateOrders(principal)
	}

	logger.Info("Order submitted directly", map[string]interface{}{
		"order_id":  orderID,
		"principal": principal,
	})
	return &CheckoutResult{OrderID: orderID}, nil
}

func (s *CheckoutService) checkoutHosted(ctx context.Context, sessionID, principal string, lines []models.CartLine) (*CheckoutResult, error) {
	// Snapshot before leaving for the payment page: if the session state is
	// lost during the round trip, reconciliation still knows what was bought.
	if err := s.snapshotRepo.Save(sessionID, lines); err != nil {
		return nil, fmt.Errorf("failed to save pending cart: %w", err)
	}

	session, err := s.backend.CreateCheckoutSession(ctx, shoppingItems(lines, s.config.Currency), s.config.PaymentSuccessURL, s.config.PaymentCancelURL)
	if err != nil {
		return nil, err
	}

	logger.Info("Hosted payment session created", map[string]interface{}{
		"stripe_session_id": session.ID,
		"principal":         principal,
	})
	return &CheckoutResult{RedirectURL: session.URL, Hosted: true}, nil
}

// orderLines projects cart lines to the (product id, quantity) pairs the
// backend order ledger expects.
func orderLines(lines []models.CartLine) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, models.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return out
}

// shoppingItems projects cart lines to payment provider line items. The cart
// does not carry descriptions, so the product name doubles as one.
func shoppingItems(lines []models.CartLine, currency string) []models.ShoppingItem {
	out := make([]models.ShoppingItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, models.ShoppingItem{
			ProductName:        line.Name,
			ProductDescription: line.Name,
			PriceInCents:       line.PriceCents,
			Quantity:           line.Quantity,
			Currency:           currency,
		})
	}
	return out
}
