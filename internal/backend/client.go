package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-backend/internal/authorization"
	"storefront-backend/internal/models"
)

// Client talks to the remote ledger backend over HTTP. Each contract
// operation maps to POST {base}/api/{method} with a JSON argument object;
// the caller token from the context is forwarded as a bearer credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient constructs a backend client. An empty base URL yields a client
// whose every call fails with ErrUnavailable, mirroring the "no active
// actor" state of the original frontend.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "storefront-backend/ledger-client",
	}
}

func (c *Client) call(ctx context.Context, method string, args interface{}, result interface{}) error {
	if c == nil || c.baseURL == "" {
		return ErrUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body := []byte("{}")
	if args != nil {
		encoded, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode %s arguments: %w", method, err)
		}
		body = encoded
	}

	endpoint := fmt.Sprintf("%s/api/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if token := CallerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Error) == "" {
			return &RemoteError{Message: fmt.Sprintf("backend returned status %d", resp.StatusCode)}
		}
		return &RemoteError{Message: cleanMessage(payload.Error)}
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// cleanMessage strips the generic "Error: " prefix backends tend to prepend
// so the user sees the actual reason.
func cleanMessage(msg string) string {
	return strings.TrimPrefix(strings.TrimSpace(msg), "Error: ")
}

func (c *Client) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.call(ctx, "getAllProducts", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.call(ctx, "getProducts", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	args := map[string]string{"category": category}
	var products []models.Product
	if err := c.call(ctx, "getProductsByCategory", args, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProductDetails(ctx context.Context, productID string) (*models.Product, error) {
	args := map[string]string{"product_id": productID}
	var product *models.Product
	if err := c.call(ctx, "getProductDetails", args, &product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) AddProduct(ctx context.Context, product models.Product) error {
	return c.call(ctx, "addProduct", product, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, product models.Product) error {
	return c.call(ctx, "updateProduct", product, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.call(ctx, "deleteProduct", map[string]string{"product_id": productID}, nil)
}

func (c *Client) DecreaseStock(ctx context.Context, productID string, quantity int64) error {
	args := map[string]interface{}{"product_id": productID, "quantity": quantity}
	return c.call(ctx, "decreaseStock", args, nil)
}

func (c *Client) RestockProduct(ctx context.Context, productID string, quantity int64) error {
	args := map[string]interface{}{"product_id": productID, "quantity": quantity}
	return c.call(ctx, "restockProduct", args, nil)
}

func (c *Client) GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile *models.UserProfile
	if err := c.call(ctx, "getCallerUserProfile", nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) SaveCallerUserProfile(ctx context.Context, profile models.UserProfile) error {
	return c.call(ctx, "saveCallerUserProfile", profile, nil)
}

func (c *Client) GetUserProfile(ctx context.Context, principal string) (*models.UserProfile, error) {
	var profile *models.UserProfile
	if err := c.call(ctx, "getUserProfile", map[string]string{"principal": principal}, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) GetCallerUserRole(ctx context.Context) (authorization.UserRole, error) {
	var raw string
	if err := c.call(ctx, "getCallerUserRole", nil, &raw); err != nil {
		return "", err
	}
	role, ok := authorization.ParseUserRole(raw)
	if !ok {
		return "", fmt.Errorf("backend returned unknown role %q", raw)
	}
	return role, nil
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	var isAdmin bool
	if err := c.call(ctx, "isCallerAdmin", nil, &isAdmin); err != nil {
		return false, err
	}
	return isAdmin, nil
}

func (c *Client) AssignCallerUserRole(ctx context.Context, principal string, role authorization.UserRole) error {
	args := map[string]string{"principal": principal, "role": role.String()}
	return c.call(ctx, "assignCallerUserRole", args, nil)
}

func (c *Client) SubmitOrder(ctx context.Context, lines []models.OrderLine) (uint64, error) {
	args := map[string]interface{}{"products": lines}
	var orderID uint64
	if err := c.call(ctx, "submitOrder", args, &orderID); err != nil {
		return 0, err
	}
	return orderID, nil
}

func (c *Client) GetOrderForCaller(ctx context.Context, orderID uint64) (*models.Order, error) {
	var order *models.Order
	if err := c.call(ctx, "getOrderForCaller", map[string]uint64{"order_id": orderID}, &order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) GetOrdersForCaller(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.call(ctx, "getOrdersForCaller", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrdersForUser(ctx context.Context, principal string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.call(ctx, "getOrdersForUser", map[string]string{"principal": principal}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) IsStripeConfigured(ctx context.Context) (bool, error) {
	var configured bool
	if err := c.call(ctx, "isStripeConfigured", nil, &configured); err != nil {
		return false, err
	}
	return configured, nil
}

func (c *Client) SetStripeConfiguration(ctx context.Context, config models.StripeConfiguration) error {
	return c.call(ctx, "setStripeConfiguration", config, nil)
}

// CreateCheckoutSession requests a hosted checkout session. The backend
// returns the session descriptor as a JSON-encoded string, per contract.
func (c *Client) CreateCheckoutSession(ctx context.Context, items []models.ShoppingItem, successURL, cancelURL string) (*models.PaymentSession, error) {
	args := map[string]interface{}{
		"items":       items,
		"success_url": successURL,
		"cancel_url":  cancelURL,
	}
	var encoded string
	if err := c.call(ctx, "createCheckoutSession", args, &encoded); err != nil {
		return nil, err
	}

	var session models.PaymentSession
	if err := json.Unmarshal([]byte(encoded), &session); err != nil {
		return nil, fmt.Errorf("decode checkout session descriptor: %w", err)
	}
	if session.URL == "" {
		return nil, errors.New("payment session missing url")
	}
	return &session, nil
}

func (c *Client) GetStripeSessionStatus(ctx context.Context, sessionID string) (models.StripeSessionStatus, error) {
	var status models.StripeSessionStatus
	if err := c.call(ctx, "getStripeSessionStatus", map[string]string{"session_id": sessionID}, &status); err != nil {
		return models.StripeSessionStatus{}, err
	}
	if !status.IsCompleted() && !status.IsFailed() {
		return models.StripeSessionStatus{}, fmt.Errorf("backend returned malformed session status")
	}
	return status, nil
}

var _ Backend = (*Client)(nil)
