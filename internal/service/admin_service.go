package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-backend/internal/authorization"
	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
	"storefront-backend/internal/payments/stripe"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/validator"
)

var (
	// ErrForbidden is returned when the caller is not an admin.
	ErrForbidden = errors.New("admin role required")
)

// ValidationError rejects an admin request before it reaches the backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AdminService covers the management surface: product CRUD, stock
// adjustments, payment provider configuration and role assignment. Every
// operation checks the caller's role against the backend before acting, and
// invalidates the affected caches after a successful mutation.
type AdminService struct {
	backend backend.Backend
	catalog *CatalogService
	cache   *cache.Cache
}

func NewAdminService(b backend.Backend, catalog *CatalogService, cacheService *cache.Cache) *AdminService {
	return &AdminService{backend: b, catalog: catalog, cache: cacheService}
}

// EnsureAdmin verifies the caller holds the admin role.
func (s *AdminService) EnsureAdmin(ctx context.Context) error {
	isAdmin, err := s.backend.IsCallerAdmin(ctx)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrForbidden
	}
	return nil
}

// AddProduct validates and creates a catalog entry.
func (s *AdminService) AddProduct(ctx context.Context, req models.UpsertProductRequest) (*models.Product, error) {
	if err := s.EnsureAdmin(ctx); err != nil {
		return nil, err
	}

	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.backend.AddProduct(ctx, *product); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()

	logger.Info("Product added", map[string]interface{}{"product_id": product.ID})
	return product, nil
}

// UpdateProduct validates and replaces a catalog entry.
func (s *AdminService) UpdateProduct(ctx context.Context, req models.UpsertProductRequest) (*models.Product, error) {
	if err := s.EnsureAdmin(ctx); err != nil {
		return nil, err
	}

	product, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.backend.UpdateProduct(ctx, *product); err != nil {
		return nil, err
	}
	s.catalog.Invalidate()

	logger.Info("Product updated", map[string]interface{}{"product_id": product.ID})
	return product, nil
}

// DeleteProduct removes a catalog entry. Past orders keep referencing the id
// and render with a placeholder.
func (s *AdminService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return validationErrorf("product id is required")
	}

	if err := s.backend.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	s.catalog.Invalidate()

	logger.Info("Product deleted", map[string]interface{}{"product_id": productID})
	return nil
}

// DecreaseStock removes quantity units from a product's stock.
func (s *AdminService) DecreaseStock(ctx context.Context, productID string, quantity int64) error {
	return s.adjustStock(ctx, productID, quantity, s.backend.DecreaseStock)
}

// RestockProduct adds quantity units to a product's stock.
func (s *AdminService) RestockProduct(ctx context.Context, productID string, quantity int64) error {
	return s.adjustStock(ctx, productID, quantity, s.backend.RestockProduct)
}

func (s *AdminService) adjustStock(ctx context.Context, productID string, quantity int64, op func(context.Context, string, int64) error) error {
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(productID) == "" {
		return validationErrorf("product id is required")
	}
	if quantity <= 0 {
		return validationErrorf("quantity must be positive")
	}

	if err := op(ctx, productID, quantity); err != nil {
		return err
	}
	s.catalog.Invalidate()
	return nil
}

// SetStripeConfiguration stores the payment provider credentials on the
// backend. The key must look like a Stripe secret key and the allowed
// countries are normalized to unique upper-case ISO codes.
func (s *AdminService) SetStripeConfiguration(ctx context.Context, req models.StripeConfigurationRequest) error {
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}

	secretKey := strings.TrimSpace(req.SecretKey)
	if !stripe.IsSecretKey(secretKey) {
		return validationErrorf("secret key must start with %q", stripe.SecretKeyPrefixStandard)
	}

	countries, err := normalizeCountries(req.AllowedCountries)
	if err != nil {
		return err
	}

	if err := s.backend.SetStripeConfiguration(ctx, models.StripeConfiguration{
		SecretKey:        secretKey,
		AllowedCountries: countries,
	}); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateStripeConfigured()
	}
	logger.Info("Payment provider configured", map[string]interface{}{
		"countries": len(countries),
		"test_mode": stripe.IsTestKey(secretKey),
	})
	return nil
}

// IsStripeConfigured answers whether hosted payments are available, through
// the shared cache. A backend error reads as not configured.
func (s *AdminService) IsStripeConfigured(ctx context.Context) bool {
	if s.cache != nil {
		var configured bool
		if err := s.cache.GetCachedStripeConfigured(&configured); err == nil {
			return configured
		}
	}

	configured, err := s.backend.IsStripeConfigured(ctx)
	if err != nil {
		return false
	}

	if s.cache != nil {
		s.cache.CacheStripeConfigured(configured)
	}
	return configured
}

// AssignRole grants a role to a principal.
func (s *AdminService) AssignRole(ctx context.Context, req models.AssignRoleRequest) error {
	if err := s.EnsureAdmin(ctx); err != nil {
		return err
	}

	role, ok := authorization.ParseUserRole(req.Role)
	if !ok {
		return validationErrorf("unknown role %q", req.Role)
	}
	principal := strings.TrimSpace(req.Principal)
	if principal == "" {
		return validationErrorf("principal is required")
	}

	if err := s.backend.AssignCallerUserRole(ctx, principal, role); err != nil {
		return err
	}

	logger.Info("Role assigned", map[string]interface{}{
		"principal": principal,
		"role":      role.String(),
	})
	return nil
}

func productFromRequest(req models.UpsertProductRequest) (*models.Product, error) {
	id := validator.TrimSpaces(req.ID)
	name := validator.TrimSpaces(validator.SanitizeString(validator.NormalizeSpaces(req.Name)))
	description := validator.TrimSpaces(validator.SanitizeString(req.Description))

	if id == "" {
		return nil, validationErrorf("product id is required")
	}
	if name == "" {
		return nil, validationErrorf("product name is required")
	}
	if description == "" {
		return nil, validationErrorf("product description is required")
	}
	if req.PriceCents < 0 {
		return nil, validationErrorf("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, validationErrorf("stock must not be negative")
	}
	if req.ImageURL != "" && !validator.ValidateURL(req.ImageURL) {
		return nil, validationErrorf("image url is not valid")
	}

	return &models.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    validator.SanitizeString(strings.TrimSpace(req.Category)),
		PriceCents:  req.PriceCents,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Stock:       req.Stock,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}, nil
}

func normalizeCountries(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, validationErrorf("at least one allowed country is required")
	}

	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if !validator.IsCountryCode(normalized) {
			return nil, validationErrorf("invalid country code %q", code)
		}
		if _, ok := seen[normalized]; ok {
			return nil, validationErrorf("duplicate country code %q", normalized)
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}
