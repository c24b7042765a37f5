package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
	"storefront-backend/pkg/cache"
)

// ErrProductNotFound is returned when a product id resolves to nothing,
// neither in the cached catalog nor at the backend.
var ErrProductNotFound = errors.New("product not found")

// SortOption selects the ordering of a catalog projection.
type SortOption string

const (
	SortFeatured  SortOption = "featured"
	SortPriceAsc  SortOption = "price-asc"
	SortPriceDesc SortOption = "price-desc"
	SortName      SortOption = "name"
)

// CatalogQuery describes a derived view over the cached product list.
type CatalogQuery struct {
	Search   string
	Category string
	Sort     SortOption
}

// CatalogService is a read-through cache over the backend product list with
// client-side search, category filter and sort projections. The canonical
// data is never mutated here; admin mutations invalidate the cache instead.
type CatalogService struct {
	backend backend.Backend
	cache   *cache.Cache
}

func NewCatalogService(b backend.Backend, cacheService *cache.Cache) *CatalogService {
	return &CatalogService{backend: b, cache: cacheService}
}

// Products returns the full catalog, from cache when possible.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		var products []models.Product
		if err := s.cache.GetCachedProducts(&products); err == nil {
			return products, nil
		}
	}

	products, err := s.backend.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.CacheProducts(products)
	}
	return products, nil
}

// Query applies search, category filter and sort to the catalog. "featured"
// keeps the backend order.
func (s *CatalogService) Query(ctx context.Context, query CatalogQuery) ([]models.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]models.Product, 0, len(products))

	needle := strings.ToLower(strings.TrimSpace(query.Search))
	for _, p := range products {
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		if query.Category != "" && !strings.EqualFold(p.Category, query.Category) {
			continue
		}
		list = append(list, p)
	}

	switch query.Sort {
	case SortPriceAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].PriceCents < list[j].PriceCents })
	case SortPriceDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].PriceCents > list[j].PriceCents })
	case SortName:
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
	default:
		// featured: backend order
	}

	return list, nil
}

func matchesSearch(p models.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

// Categories lists the distinct categories present in the catalog, in first
// appearance order.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories, nil
}

// Product resolves one product, preferring the cached list and falling back
// to a direct detail fetch.
func (s *CatalogService) Product(ctx context.Context, productID string) (*models.Product, error) {
	products, err := s.Products(ctx)
	if err == nil {
		for i := range products {
			if products[i].ID == productID {
				return &products[i], nil
			}
		}
	}

	product, err := s.backend.GetProductDetails(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Invalidate drops the cached product list. Called after every successful
// admin mutation.
func (s *CatalogService) Invalidate() {
	if s.cache != nil {
		s.cache.InvalidateProducts()
	}
}
