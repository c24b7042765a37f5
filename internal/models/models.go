package models

import "time"

// Product is the canonical catalog entry. It is owned and mutated by the
// remote ledger backend; this process only ever holds a cached copy.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

// CartLine is one entry of a session cart. Display fields are denormalized
// from the product at add time so the cart renders without a catalog fetch.
type CartLine struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	ImageURL   string `json:"image_url"`
	Quantity   int64  `json:"quantity"`
}

// LineTotalCents returns price * quantity for this line.
func (l CartLine) LineTotalCents() int64 {
	return l.PriceCents * l.Quantity
}

// OrderLine is a (product id, quantity) pair of a submitted order.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Order is immutable once created; ids are assigned by the backend.
type Order struct {
	ID        uint64      `json:"id"`
	Principal string      `json:"principal"`
	Timestamp time.Time   `json:"timestamp"`
	Products  []OrderLine `json:"products"`
}

// ShoppingItem is the line-item descriptor sent to the payment provider
// when creating a hosted checkout session.
type ShoppingItem struct {
	ProductName        string `json:"productName"`
	ProductDescription string `json:"productDescription"`
	PriceInCents       int64  `json:"priceInCents"`
	Quantity           int64  `json:"quantity"`
	Currency           string `json:"currency"`
}

// PaymentSession is the opaque descriptor returned by the backend for a
// hosted checkout session.
type PaymentSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionCompleted carries the provider response for a completed payment.
type SessionCompleted struct {
	UserPrincipal string `json:"userPrincipal,omitempty"`
	Response      string `json:"response"`
}

// SessionFailed carries the provider error for a failed payment.
type SessionFailed struct {
	Error string `json:"error"`
}

// StripeSessionStatus is a tagged union: exactly one of Completed or Failed
// is set on a well-formed value.
type StripeSessionStatus struct {
	Completed *SessionCompleted `json:"completed,omitempty"`
	Failed    *SessionFailed    `json:"failed,omitempty"`
}

func (s StripeSessionStatus) IsCompleted() bool {
	return s.Completed != nil
}

func (s StripeSessionStatus) IsFailed() bool {
	return s.Failed != nil
}

// StripeConfiguration is write-only from this process: the secret key is
// never read back in plaintext.
type StripeConfiguration struct {
	SecretKey        string   `json:"secretKey"`
	AllowedCountries []string `json:"allowedCountries"`
}

type UserProfile struct {
	Name string `json:"name"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type UpsertProductRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

type StockAdjustmentRequest struct {
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

type StripeConfigurationRequest struct {
	SecretKey        string   `json:"secret_key" binding:"required"`
	AllowedCountries []string `json:"allowed_countries" binding:"required"`
}

type AssignRoleRequest struct {
	Principal string `json:"principal" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

type SaveProfileRequest struct {
	Name string `json:"name" binding:"required"`
}
