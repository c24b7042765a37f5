package service

import (
	"context"
	"testing"

	"storefront-backend/internal/models"
)

func catalogFixture() *fakeBackend {
	fake := newFakeBackend()
	fake.products = []models.Product{
		{ID: "p1", Name: "Walnut Desk", Description: "Solid walnut", Category: "furniture", PriceCents: 49900},
		{ID: "p2", Name: "Brass Lamp", Description: "Desk lamp", Category: "lighting", PriceCents: 7900},
		{ID: "p3", Name: "Oak Shelf", Description: "Wall shelf", Category: "furniture", PriceCents: 15900},
	}
	return fake
}

func TestCatalogService_QueryFiltersByCategory(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	products, err := service.Query(context.Background(), CatalogQuery{Category: "furniture"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected two furniture products, got %d", len(products))
	}
	for _, p := range products {
		if p.Category != "furniture" {
			t.Fatalf("unexpected category %q", p.Category)
		}
	}
}

func TestCatalogService_QueryMatchesNameAndDescription(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	products, err := service.Query(context.Background(), CatalogQuery{Search: "walnut"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("expected the walnut desk, got %+v", products)
	}

	products, err = service.Query(context.Background(), CatalogQuery{Search: "WALL"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p3" {
		t.Fatalf("search should be case-insensitive over descriptions, got %+v", products)
	}
}

func TestCatalogService_QuerySortsByPrice(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	asc, err := service.Query(context.Background(), CatalogQuery{Sort: SortPriceAsc})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if asc[0].ID != "p2" || asc[2].ID != "p1" {
		t.Fatalf("unexpected ascending order: %v, %v, %v", asc[0].ID, asc[1].ID, asc[2].ID)
	}

	desc, err := service.Query(context.Background(), CatalogQuery{Sort: SortPriceDesc})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if desc[0].ID != "p1" || desc[2].ID != "p2" {
		t.Fatalf("unexpected descending order: %v, %v, %v", desc[0].ID, desc[1].ID, desc[2].ID)
	}
}

func TestCatalogService_FeaturedKeepsBackendOrder(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	products, err := service.Query(context.Background(), CatalogQuery{Sort: SortFeatured})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if products[0].ID != "p1" || products[1].ID != "p2" || products[2].ID != "p3" {
		t.Fatalf("featured must keep backend order, got %v, %v, %v", products[0].ID, products[1].ID, products[2].ID)
	}
}

func TestCatalogService_CategoriesAreDistinct(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	categories, err := service.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected two categories, got %v", categories)
	}
	if categories[0] != "furniture" || categories[1] != "lighting" {
		t.Fatalf("expected first-appearance order, got %v", categories)
	}
}

func TestCatalogService_ProductLookup(t *testing.T) {
	service := NewCatalogService(catalogFixture(), nil)

	product, err := service.Product(context.Background(), "p2")
	if err != nil {
		t.Fatalf("Product returned error: %v", err)
	}
	if product.Name != "Brass Lamp" {
		t.Fatalf("unexpected product %+v", product)
	}

	if _, err := service.Product(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown product")
	}
}
