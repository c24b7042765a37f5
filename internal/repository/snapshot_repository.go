package repository

import (
	"fmt"
	"sync"
	"time"

	"storefront-backend/internal/models"
	"storefront-backend/pkg/cache"
)

// snapshotTTL bounds how long an abandoned pending-cart snapshot survives a
// redirect that never comes back.
const snapshotTTL = 24 * time.Hour

// SnapshotRepository holds the pending-cart snapshot written just before the
// browser is sent to the hosted payment provider. The snapshot is written by
// checkout and read/deleted by reconciliation; it must outlive a full page
// round trip, so the redis-backed implementation is preferred when available.
type SnapshotRepository interface {
	Save(sessionID string, lines []models.CartLine) error
	Get(sessionID string) ([]models.CartLine, error)
	Delete(sessionID string) error
}

type snapshotEntry struct {
	lines   []models.CartLine
	savedAt time.Time
}

type MemorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]snapshotEntry
}

func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snapshots: make(map[string]snapshotEntry)}
}

func (r *MemorySnapshotRepository) Save(sessionID string, lines []models.CartLine) error {
	copied := make([]models.CartLine, len(lines))
	copy(copied, lines)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[sessionID] = snapshotEntry{lines: copied, savedAt: time.Now()}
	return nil
}

func (r *MemorySnapshotRepository) Get(sessionID string) ([]models.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.snapshots[sessionID]
	if !ok || time.Since(entry.savedAt) > snapshotTTL {
		return nil, nil
	}
	copied := make([]models.CartLine, len(entry.lines))
	copy(copied, entry.lines)
	return copied, nil
}

func (r *MemorySnapshotRepository) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, sessionID)
	return nil
}

// EvictExpired drops snapshots past their TTL and reports how many were
// removed. Redis handles this natively; the in-memory store needs a sweep.
func (r *MemorySnapshotRepository) EvictExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-snapshotTTL)
	evicted := 0
	for sessionID, entry := range r.snapshots {
		if entry.savedAt.Before(cutoff) {
			delete(r.snapshots, sessionID)
			evicted++
		}
	}
	return evicted
}

type cacheSnapshotRepository struct {
	cache *cache.Cache
}

// NewCacheSnapshotRepository stores snapshots in the shared redis cache so
// they survive process restarts during the payment round trip.
func NewCacheSnapshotRepository(c *cache.Cache) SnapshotRepository {
	return &cacheSnapshotRepository{cache: c}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("snapshot:pending_cart:%s", sessionID)
}

func (r *cacheSnapshotRepository) Save(sessionID string, lines []models.CartLine) error {
	return r.cache.Set(snapshotKey(sessionID), lines, snapshotTTL)
}

func (r *cacheSnapshotRepository) Get(sessionID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.cache.Get(snapshotKey(sessionID), &lines); err != nil {
		// A missing snapshot is not an error for callers; they fall back
		// to an empty pending set.
		return nil, nil
	}
	return lines, nil
}

func (r *cacheSnapshotRepository) Delete(sessionID string) error {
	return r.cache.Delete(snapshotKey(sessionID))
}
