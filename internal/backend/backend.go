package backend

import (
	"context"
	"errors"

	"storefront-backend/internal/authorization"
	"storefront-backend/internal/models"
)

// ErrUnavailable is returned when no backend endpoint is configured or the
// backend cannot be reached. All mutations and most reads fail with it.
var ErrUnavailable = errors.New("backend is not available")

// RemoteError is a rejection reported by the backend itself: the call
// completed but the backend refused it. The message is surfaced to the user
// verbatim, with the generic "Error: " prefix already stripped.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Backend is the remote ledger actor contract. Every call is scoped to the
// caller identity carried on the context (see WithCallerToken); the server
// side resolves the principal from the token.
type Backend interface {
	// Catalog
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	GetProductDetails(ctx context.Context, productID string) (*models.Product, error)
	AddProduct(ctx context.Context, product models.Product) error
	UpdateProduct(ctx context.Context, product models.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	DecreaseStock(ctx context.Context, productID string, quantity int64) error
	RestockProduct(ctx context.Context, productID string, quantity int64) error

	// Identity
	GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error)
	SaveCallerUserProfile(ctx context.Context, profile models.UserProfile) error
	GetUserProfile(ctx context.Context, principal string) (*models.UserProfile, error)
	GetCallerUserRole(ctx context.Context) (authorization.UserRole, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
	AssignCallerUserRole(ctx context.Context, principal string, role authorization.UserRole) error

	// Orders
	SubmitOrder(ctx context.Context, lines []models.OrderLine) (uint64, error)
	GetOrderForCaller(ctx context.Context, orderID uint64) (*models.Order, error)
	GetOrdersForCaller(ctx context.Context) ([]models.Order, error)
	GetOrdersForUser(ctx context.Context, principal string) ([]models.Order, error)

	// Payments
	IsStripeConfigured(ctx context.Context) (bool, error)
	SetStripeConfiguration(ctx context.Context, config models.StripeConfiguration) error
	CreateCheckoutSession(ctx context.Context, items []models.ShoppingItem, successURL, cancelURL string) (*models.PaymentSession, error)
	GetStripeSessionStatus(ctx context.Context, sessionID string) (models.StripeSessionStatus, error)
}

type callerTokenKey struct{}

// WithCallerToken attaches the caller's identity token to the context so the
// client forwards it on every backend call.
func WithCallerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, callerTokenKey{}, token)
}

// CallerToken returns the identity token attached to the context, if any.
func CallerToken(ctx context.Context) string {
	token, _ := ctx.Value(callerTokenKey{}).(string)
	return token
}
