package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestPaymentReturnURLsDeriveFromSiteURL(t *testing.T) {
	unsetEnv(t, "PAYMENT_SUCCESS_URL")
	unsetEnv(t, "PAYMENT_CANCEL_URL")
	t.Setenv("SITE_URL", "https://shop.example.com/")

	cfg := New()
	if cfg.PaymentSuccessURL != "https://shop.example.com/payment-success" {
		t.Fatalf("unexpected success url %q", cfg.PaymentSuccessURL)
	}
	if cfg.PaymentCancelURL != "https://shop.example.com/payment-failure" {
		t.Fatalf("unexpected cancel url %q", cfg.PaymentCancelURL)
	}
}

func TestPaymentReturnURLsRespectOverrides(t *testing.T) {
	t.Setenv("PAYMENT_SUCCESS_URL", "https://cdn.example.com/done")
	t.Setenv("PAYMENT_CANCEL_URL", "https://cdn.example.com/cancelled")

	cfg := New()
	if cfg.PaymentSuccessURL != "https://cdn.example.com/done" {
		t.Fatalf("expected explicit success url, got %q", cfg.PaymentSuccessURL)
	}
	if cfg.PaymentCancelURL != "https://cdn.example.com/cancelled" {
		t.Fatalf("expected explicit cancel url, got %q", cfg.PaymentCancelURL)
	}
}

func TestBackendTimeoutParsesSeconds(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT_SECONDS", "3")

	cfg := New()
	if cfg.BackendTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.BackendTimeout)
	}
}

func TestCurrencyIsLowercased(t *testing.T) {
	t.Setenv("CHECKOUT_CURRENCY", "EUR")

	cfg := New()
	if cfg.Currency != "eur" {
		t.Fatalf("expected lower-case currency, got %q", cfg.Currency)
	}
}

func TestListValuesAreTrimmed(t *testing.T) {
	t.Setenv("CHECKOUT_DEFAULT_COUNTRIES", "US, CA , GB,")
	t.Setenv("CORS_ORIGINS", " http://localhost:3000 , http://localhost:8080")

	cfg := New()
	if len(cfg.DefaultCountries) != 3 {
		t.Fatalf("expected three countries, got %v", cfg.DefaultCountries)
	}
	for i, want := range []string{"US", "CA", "GB"} {
		if cfg.DefaultCountries[i] != want {
			t.Fatalf("unexpected countries %v", cfg.DefaultCountries)
		}
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestDefaultCountriesList(t *testing.T) {
	unsetEnv(t, "CHECKOUT_DEFAULT_COUNTRIES")

	cfg := New()
	if len(cfg.DefaultCountries) != 10 {
		t.Fatalf("expected ten default countries, got %d", len(cfg.DefaultCountries))
	}
	if cfg.DefaultCountries[0] != "US" || cfg.DefaultCountries[9] != "DK" {
		t.Fatalf("unexpected default countries %v", cfg.DefaultCountries)
	}
}
