package service

import (
	"context"
	"sort"
	"time"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
	"storefront-backend/pkg/cache"
)

// OrderLineView is an order line joined against the current catalog. When
// the product has since been deleted the name falls back to a placeholder
// and the price is unknown.
type OrderLineView struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
	ImageURL   string `json:"image_url,omitempty"`
	Missing    bool   `json:"missing,omitempty"`
}

// OrderView is one order of the caller's history, ready to render.
type OrderView struct {
	ID         uint64          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Lines      []OrderLineView `json:"lines"`
	TotalCents int64           `json:"total_cents"`
	ItemCount  int64           `json:"item_count"`
}

// OrderService reads the caller's order ledger and joins it against the
// catalog for display. Orders are immutable, so the per-principal cache only
// needs invalidation when a new order is submitted.
type OrderService struct {
	backend backend.Backend
	catalog *CatalogService
	cache   *cache.Cache
}

func NewOrderService(b backend.Backend, catalog *CatalogService, cacheService *cache.Cache) *OrderService {
	return &OrderService{backend: b, catalog: catalog, cache: cacheService}
}

// History returns the caller's orders, newest first.
func (s *OrderService) History(ctx context.Context, principal string) ([]OrderView, error) {
	orders, err := s.cachedOrders(ctx, principal)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Products(ctx)
	if err != nil {
		// History still renders without the catalog, with placeholder
		// product lines.
		products = nil
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, s.orderView(order, byID))
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Timestamp.After(views[j].Timestamp)
	})
	return views, nil
}

// Order returns one of the caller's orders by id.
func (s *OrderService) Order(ctx context.Context, orderID uint64) (*OrderView, error) {
	order, err := s.backend.GetOrderForCaller(ctx, orderID)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.Products(ctx)
	if err != nil {
		products = nil
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := s.orderView(*order, byID)
	return &view, nil
}

func (s *OrderService) cachedOrders(ctx context.Context, principal string) ([]models.Order, error) {
	if s.cache != nil {
		var orders []models.Order
		if err := s.cache.GetCachedOrders(principal, &orders); err == nil {
			return orders, nil
		}
	}

	orders, err := s.backend.GetOrdersForCaller(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.CacheOrders(principal, orders)
	}
	return orders, nil
}

func (s *OrderService) orderView(order models.Order, byID map[string]models.Product) OrderView {
	view := OrderView{
		ID:        order.ID,
		Timestamp: order.Timestamp,
		Lines:     make([]OrderLineView, 0, len(order.Products)),
	}

	for _, line := range order.Products {
		lineView := OrderLineView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if product, ok := byID[line.ProductID]; ok {
			lineView.Name = product.Name
			lineView.PriceCents = product.PriceCents
			lineView.ImageURL = product.ImageURL
		} else {
			lineView.Name = "Unknown product"
			lineView.Missing = true
		}

		view.Lines = append(view.Lines, lineView)
		view.TotalCents += lineView.PriceCents * lineView.Quantity
		view.ItemCount += lineView.Quantity
	}
	return view
}
