package repository

import (
	"sync"

	"storefront-backend/internal/models"
)

// CartRepository stores the cart lines of each session. Carts live only as
// long as the session; there is no durable backing store.
type CartRepository interface {
	Get(sessionID string) ([]models.CartLine, error)
	Save(sessionID string, lines []models.CartLine) error
	Clear(sessionID string) error
}

type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string][]models.CartLine
}

func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{carts: make(map[string][]models.CartLine)}
}

func (r *memoryCartRepository) Get(sessionID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines, ok := r.carts[sessionID]
	if !ok {
		return nil, nil
	}
	copied := make([]models.CartLine, len(lines))
	copy(copied, lines)
	return copied, nil
}

func (r *memoryCartRepository) Save(sessionID string, lines []models.CartLine) error {
	copied := make([]models.CartLine, len(lines))
	copy(copied, lines)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[sessionID] = copied
	return nil
}

func (r *memoryCartRepository) Clear(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sessionID)
	return nil
}
