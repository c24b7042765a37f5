package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/backend"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
	"storefront-backend/internal/service"
)

// stubBackend covers only the ledger calls the return path reaches; anything
// else panics through the embedded nil interface.
type stubBackend struct {
	backend.Backend
	submitOrderCalls int
	isAdmin          bool
	stripeConfigured bool
}

func (s *stubBackend) SubmitOrder(ctx context.Context, lines []models.OrderLine) (uint64, error) {
	s.submitOrderCalls++
	return 41, nil
}

func (s *stubBackend) IsCallerAdmin(ctx context.Context) (bool, error) {
	return s.isAdmin, nil
}

func (s *stubBackend) IsStripeConfigured(ctx context.Context) (bool, error) {
	return s.stripeConfigured, nil
}

func newCheckoutRouter(t *testing.T) (*gin.Engine, *stubBackend, *service.CartService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stub := &stubBackend{}
	cartService := service.NewCartService(repository.NewMemoryCartRepository())
	snapshots := repository.NewMemorySnapshotRepository()
	reconcile := service.NewReconcileService(stub, cartService, snapshots, nil)
	handler := NewCheckoutHandler(nil, reconcile)

	router := gin.New()
	router.GET("/payment-success", func(c *gin.Context) {
		c.Set(middleware.ContextSessionID, "session")
		c.Set(middleware.ContextPrincipal, "alice")
	}, handler.PaymentSuccess)
	return router, stub, cartService
}

func TestCheckoutHandler_PaymentSuccessWithoutSessionID(t *testing.T) {
	router, stub, cartService := newCheckoutRouter(t)

	if _, err := cartService.Add("session", models.Product{ID: "p1", Name: "Oak Chair", PriceCents: 2999, Stock: 3}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	// The configured return URL carries no session-id template, so the real
	// return arrives with no query parameters at all.
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/payment-success", nil)
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if stub.submitOrderCalls != 1 {
		t.Fatalf("expected one order submission, got %d", stub.submitOrderCalls)
	}

	var body struct {
		Reconciliation service.ReconcileResult `json:"reconciliation"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Reconciliation.OrderID != 41 {
		t.Fatalf("expected submitted order id in response, got %+v", body.Reconciliation)
	}

	lines, _ := cartService.Get("session")
	if len(lines) != 0 {
		t.Fatalf("expected cart cleared after settlement")
	}
}
