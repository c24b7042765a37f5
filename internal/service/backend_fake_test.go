package service

import (
	"context"
	"errors"

	"storefront-backend/internal/authorization"
	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
)

// fakeBackend is an in-memory stand-in for the remote ledger used across the
// service tests. Call counters make order submission observable.
type fakeBackend struct {
	products []models.Product
	orders   []models.Order
	nextID   uint64

	stripeConfigured bool
	configuredErr    error
	sessionStatus    models.StripeSessionStatus
	sessionStatusErr error
	checkoutSession  *models.PaymentSession
	checkoutErr      error
	submitErr        error
	isAdmin          bool
	role             authorization.UserRole
	profile          *models.UserProfile

	submitOrderCalls   [][]models.OrderLine
	checkoutCalls      int
	stripeConfig       *models.StripeConfiguration
	assignedRoles      map[string]authorization.UserRole
	sessionStatusCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID:        1,
		role:          authorization.RoleUser,
		assignedRoles: make(map[string]authorization.UserRole),
	}
}

func (f *fakeBackend) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) GetProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

func (f *fakeBackend) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) GetProductDetails(ctx context.Context, productID string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].ID == productID {
			return &f.products[i], nil
		}
	}
	return nil, &backend.RemoteError{Message: "product not found"}
}

func (f *fakeBackend) AddProduct(ctx context.Context, product models.Product) error {
	f.products = append(f.products, product)
	return nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, product models.Product) error {
	for i := range f.products {
		if f.products[i].ID == product.ID {
			f.products[i] = product
			return nil
		}
	}
	return &backend.RemoteError{Message: "product not found"}
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, productID string) error {
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return &backend.RemoteError{Message: "product not found"}
}

func (f *fakeBackend) DecreaseStock(ctx context.Context, productID string, quantity int64) error {
	for i := range f.products {
		if f.products[i].ID == productID {
			if f.products[i].Stock < quantity {
				return &backend.RemoteError{Message: "insufficient stock"}
			}
			f.products[i].Stock -= quantity
			return nil
		}
	}
	return &backend.RemoteError{Message: "product not found"}
}

func (f *fakeBackend) RestockProduct(ctx context.Context, productID string, quantity int64) error {
	for i := range f.products {
		if f.products[i].ID == productID {
			f.products[i].Stock += quantity
			return nil
		}
	}
	return &backend.RemoteError{Message: "product not found"}
}

func (f *fakeBackend) GetCallerUserProfile(ctx context.Context) (*models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeBackend) SaveCallerUserProfile(ctx context.Context, profile models.UserProfile) error {
	f.profile = &profile
	return nil
}

func (f *fakeBackend) GetUserProfile(ctx context.Context, principal string) (*models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeBackend) GetCallerUserRole(ctx context.Context) (authorization.UserRole, error) {
	return f.role, nil
}

func (f *fakeBackend) IsCallerAdmin(ctx context.Context) (bool, error) {
	return f.isAdmin, nil
}

func (f *fakeBackend) AssignCallerUserRole(ctx context.Context, principal string, role authorization.UserRole) error {
	f.assignedRoles[principal] = role
	return nil
}

func (f *fakeBackend) SubmitOrder(ctx context.Context, lines []models.OrderLine) (uint64, error) {
	f.submitOrderCalls = append(f.submitOrderCalls, lines)
	if f.submitErr != nil {
		return 0, f.submitErr
	}

	id := f.nextID
	f.nextID++
	f.orders = append(f.orders, models.Order{ID: id, Products: lines})
	return id, nil
}

func (f *fakeBackend) GetOrderForCaller(ctx context.Context, orderID uint64) (*models.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == orderID {
			return &f.orders[i], nil
		}
	}
	return nil, &backend.RemoteError{Message: "order not found"}
}

func (f *fakeBackend) GetOrdersForCaller(ctx context.Context) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeBackend) GetOrdersForUser(ctx context.Context, principal string) ([]models.Order, error) {
	return f.orders, nil
}

func (f *fakeBackend) IsStripeConfigured(ctx context.Context) (bool, error) {
	if f.configuredErr != nil {
		return false, f.configuredErr
	}
	return f.stripeConfigured, nil
}

func (f *fakeBackend) SetStripeConfiguration(ctx context.Context, config models.StripeConfiguration) error {
	f.stripeConfig = &config
	return nil
}

func (f *fakeBackend) CreateCheckoutSession(ctx context.Context, items []models.ShoppingItem, successURL, cancelURL string) (*models.PaymentSession, error) {
	f.checkoutCalls++
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	if f.checkoutSession != nil {
		return f.checkoutSession, nil
	}
	return &models.PaymentSession{ID: "cs_test", URL: "https://pay.example.com/cs_test"}, nil
}

func (f *fakeBackend) GetStripeSessionStatus(ctx context.Context, sessionID string) (models.StripeSessionStatus, error) {
	f.sessionStatusCalls++
	if f.sessionStatusErr != nil {
		return models.StripeSessionStatus{}, f.sessionStatusErr
	}
	return f.sessionStatus, nil
}

var _ backend.Backend = (*fakeBackend)(nil)

var errBackendDown = errors.New("backend down")
