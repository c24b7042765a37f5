package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/logger"
)

// PaymentFailedError reports a payment the provider marked as failed. The
// pending snapshot is kept so the purchase can be retried.
type PaymentFailedError struct {
	Reason string
}

func (e *PaymentFailedError) Error() string {
	if e.Reason == "" {
		return "payment was not completed"
	}
	return e.Reason
}

// ReconcileResult reports the outcome of a payment return. AlreadyProcessed
// is set when the same payment session was reconciled before; no order is
// submitted again in that case.
type ReconcileResult struct {
	OrderID          uint64 `json:"order_id,omitempty"`
	AlreadyProcessed bool   `json:"already_processed,omitempty"`
}

// ReconcileService turns a hosted-payment return into a submitted order:
// verify the payment session, submit the pending lines, then clear the cart
// and its snapshot. Each payment session is submitted at most once, however
// many times the return page is loaded.
type ReconcileService struct {
	backend      backend.Backend
	cartService  *CartService
	snapshotRepo repository.SnapshotRepository
	cache        *cache.Cache

	mu        sync.Mutex
	locks     map[string]*sessionLock
	processed map[string]time.Time
}

type sessionLock struct {
	sync.Mutex
	lastUsed time.Time
}

func NewReconcileService(
	b backend.Backend,
	cartService *CartService,
	snapshotRepo repository.SnapshotRepository,
	cacheService *cache.Cache,
) *ReconcileService {
	return &ReconcileService{
		backend:      b,
		cartService:  cartService,
		snapshotRepo: snapshotRepo,
		cache:        cacheService,
		locks:        make(map[string]*sessionLock),
		processed:    make(map[string]time.Time),
	}
}

// guardKey names a reconciliation for the lock and the at-most-once guard.
// A return without a payment-session id is keyed by the storefront session
// instead, so such returns never share state across sessions.
func guardKey(sessionID, stripeSessionID string) string {
	if stripeSessionID == "" {
		return "session:" + sessionID
	}
	return "payment:" + stripeSessionID
}

// lockFor serializes reconciliation per guard key, so a double page load
// cannot race two submissions past the processed check.
func (s *ReconcileService) lockFor(key string) *sessionLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sessionLock{}
		s.locks[key] = lock
	}
	lock.lastUsed = time.Now()
	return lock
}

func (s *ReconcileService) isProcessed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.processed[key]
	return ok
}

func (s *ReconcileService) markProcessed(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[key] = time.Now()
}

func (s *ReconcileService) clearProcessed(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processed, key)
}

// EvictStale drops per-session locks and processed markers older than
// maxAge. A payment session that old cannot come back: its snapshot has
// expired, so a replayed return reads as nothing to reconcile.
func (s *ReconcileService) EvictStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for id, at := range s.processed {
		if at.Before(cutoff) {
			delete(s.processed, id)
			evicted++
		}
	}
	for id, lock := range s.locks {
		if lock.lastUsed.Before(cutoff) {
			delete(s.locks, id)
		}
	}
	return evicted
}

// Reconcile completes a returning hosted payment for the session. A return
// without a payment-session id skips the provider verification and settles
// the pending lines directly.
func (s *ReconcileService) Reconcile(ctx context.Context, sessionID, principal, stripeSessionID string) (*ReconcileResult, error) {
	key := guardKey(sessionID, stripeSessionID)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	lines, err := s.pendingLines(sessionID)
	if err != nil {
		return nil, err
	}

	if s.isProcessed(key) {
		// A session-scoped guard outlives the purchase it covered. Pending
		// lines under it mean a new checkout came back, not a replay.
		if stripeSessionID == "" && len(lines) > 0 {
			s.clearProcessed(key)
		} else {
			return &ReconcileResult{AlreadyProcessed: true}, nil
		}
	}

	if len(lines) == 0 {
		// Nothing pending means the order was already settled, typically
		// by an earlier reconciliation before a process restart.
		return &ReconcileResult{AlreadyProcessed: true}, nil
	}

	if stripeSessionID != "" {
		status, err := s.backend.GetStripeSessionStatus(ctx, stripeSessionID)
		if err != nil {
			return nil, err
		}
		if status.IsFailed() {
			logger.Warn("Payment session failed", map[string]interface{}{
				"stripe_session_id": stripeSessionID,
				"reason":            status.Failed.Error,
			})
			return nil, &PaymentFailedError{Reason: status.Failed.Error}
		}
		if !status.IsCompleted() {
			return nil, fmt.Errorf("payment session %s is in an unknown state", stripeSessionID)
		}
	} else {
		logger.Warn("Payment return carried no session id, settling without verification", map[string]interface{}{
			"session_id": sessionID,
		})
	}

	orderID, err := s.backend.SubmitOrder(ctx, orderLines(lines))
	if err != nil {
		// The payment is verified but the order is not on the ledger yet.
		// Keep the snapshot and the guard unset so a reload can retry.
		return nil, err
	}

	s.markProcessed(key)

	if err := s.cartService.Clear(sessionID); err != nil {
		logger.Error(err, "Failed to clear cart after reconciliation", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	if err := s.snapshotRepo.Delete(sessionID); err != nil {
		logger.Error(err, "Failed to delete pending cart snapshot", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	if s.cache != nil {
		s.cache.InvalidateOrders(principal)
	}

	logger.Info("Payment reconciled into order", map[string]interface{}{
		"order_id":          orderID,
		"stripe_session_id": stripeSessionID,
		"principal":         principal,
	})
	return &ReconcileResult{OrderID: orderID}, nil
}

// pendingLines prefers the live cart and falls back to the snapshot written
// before the redirect, covering session state lost during the round trip.
func (s *ReconcileService) pendingLines(sessionID string) ([]models.CartLine, error) {
	lines, err := s.cartService.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) > 0 {
		return lines, nil
	}

	snapshot, err := s.snapshotRepo.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending cart snapshot: %w", err)
	}
	return snapshot, nil
}

// Abandon handles the cancel/failure return page: the cart and snapshot are
// kept so the user can try again, only the attempt is logged.
func (s *ReconcileService) Abandon(sessionID, stripeSessionID string) {
	logger.Info("Hosted payment abandoned", map[string]interface{}{
		"session_id":        sessionID,
		"stripe_session_id": stripeSessionID,
	})
}
