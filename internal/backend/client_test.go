package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-backend/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewClient(server.URL, 5*time.Second)
}

func TestClient_StripsErrorPrefix(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Error: insufficient stock"})
	})

	_, err := client.GetProducts(context.Background())
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Message != "insufficient stock" {
		t.Fatalf("expected prefix stripped, got %q", remoteErr.Message)
	}
}

func TestClient_ForwardsCallerToken(t *testing.T) {
	var gotAuth string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(true)
	})

	ctx := WithCallerToken(context.Background(), "token-123")
	if _, err := client.IsCallerAdmin(ctx); err != nil {
		t.Fatalf("IsCallerAdmin returned error: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("expected bearer token forwarded, got %q", gotAuth)
	}
}

func TestClient_EmptyBaseURLIsUnavailable(t *testing.T) {
	client := NewClient("", 5*time.Second)

	_, err := client.GetProducts(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_CreateCheckoutSessionDecodesEncodedDescriptor(t *testing.T) {
	var gotPath string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		descriptor, _ := json.Marshal(models.PaymentSession{ID: "cs_1", URL: "https://pay.example.com/cs_1"})
		_ = json.NewEncoder(w).Encode(string(descriptor))
	})

	session, err := client.CreateCheckoutSession(context.Background(), []models.ShoppingItem{
		{ProductName: "Desk", ProductDescription: "Desk", PriceInCents: 2999, Quantity: 1, Currency: "usd"},
	}, "http://localhost/payment-success", "http://localhost/payment-failure")
	if err != nil {
		t.Fatalf("CreateCheckoutSession returned error: %v", err)
	}
	if gotPath != "/api/createCheckoutSession" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if session.ID != "cs_1" || session.URL != "https://pay.example.com/cs_1" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestClient_CreateCheckoutSessionRejectsMissingURL(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		descriptor, _ := json.Marshal(models.PaymentSession{ID: "cs_1"})
		_ = json.NewEncoder(w).Encode(string(descriptor))
	})

	if _, err := client.CreateCheckoutSession(context.Background(), nil, "", ""); err == nil {
		t.Fatalf("expected error for descriptor without url")
	}
}

func TestClient_SessionStatusVariants(t *testing.T) {
	responses := []string{
		`{"completed":{"response":"ok"}}`,
		`{"failed":{"error":"card declined"}}`,
		`{}`,
	}
	var idx int
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responses[idx]))
	})

	status, err := client.GetStripeSessionStatus(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("completed status returned error: %v", err)
	}
	if !status.IsCompleted() || status.IsFailed() {
		t.Fatalf("expected completed status, got %+v", status)
	}

	idx = 1
	status, err = client.GetStripeSessionStatus(context.Background(), "cs_1")
	if err != nil {
		t.Fatalf("failed status returned error: %v", err)
	}
	if !status.IsFailed() || status.Failed.Error != "card declined" {
		t.Fatalf("expected failed status with reason, got %+v", status)
	}

	idx = 2
	if _, err := client.GetStripeSessionStatus(context.Background(), "cs_1"); err == nil {
		t.Fatalf("expected error for malformed status")
	}
}

func TestClient_TransportErrorWrapsUnavailable(t *testing.T) {
	server, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.GetProducts(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
