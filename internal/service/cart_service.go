package service

import (
	"errors"
	"fmt"

	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

var (
	// ErrLineNotFound is returned when a quantity update targets a product
	// that has no line in the cart.
	ErrLineNotFound = errors.New("cart line not found")
)

// CartService owns the per-session cart mapping. All mutations merge by
// product id so the cart never carries two lines for the same product.
type CartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// Get returns the current cart lines in insertion order.
func (s *CartService) Get(sessionID string) ([]models.CartLine, error) {
	return s.cartRepo.Get(sessionID)
}

// Add merges the product into the cart: an existing line for the same id
// gains one unit, otherwise a new line with quantity 1 is appended. Display
// fields are captured from the product at add time.
func (s *CartService) Add(sessionID string, product models.Product) ([]models.CartLine, error) {
	lines, err := s.cartRepo.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	merged := false
	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, models.CartLine{
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			ImageURL:   product.ImageURL,
			Quantity:   1,
		})
	}

	if err := s.cartRepo.Save(sessionID, lines); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return lines, nil
}

// Remove deletes the line for the product id; removing an absent line is a
// no-op.
func (s *CartService) Remove(sessionID, productID string) ([]models.CartLine, error) {
	lines, err := s.cartRepo.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	if err := s.cartRepo.Save(sessionID, kept); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return kept, nil
}

// SetQuantity sets the quantity of an existing line. A non-positive
// quantity is equivalent to Remove.
func (s *CartService) SetQuantity(sessionID, productID string, quantity int64) ([]models.CartLine, error) {
	if quantity <= 0 {
		return s.Remove(sessionID, productID)
	}

	lines, err := s.cartRepo.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrLineNotFound
	}

	if err := s.cartRepo.Save(sessionID, lines); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return lines, nil
}

// Clear empties the session cart.
func (s *CartService) Clear(sessionID string) error {
	return s.cartRepo.Clear(sessionID)
}

// TotalCents sums price * quantity over the lines. It is computed fresh on
// every read so it is always consistent with the current lines.
func TotalCents(lines []models.CartLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.LineTotalCents()
	}
	return total
}

// Count sums the quantities over the lines, for the cart badge.
func Count(lines []models.CartLine) int64 {
	var count int64
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
