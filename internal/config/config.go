package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string
	SiteURL     string

	// Ledger backend
	BackendURL     string
	BackendTimeout time.Duration

	// Redis
	EnableRedis bool
	RedisURL    string

	// JWT (tokens issued by the external identity provider)
	JWTSecret string

	// CORS
	CORSOrigins []string

	// Checkout
	Currency          string
	DefaultCountries  []string
	PaymentSuccessURL string
	PaymentCancelURL  string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int

	// Features
	EnableCache   bool
	EnableMetrics bool
}

func New() *Config {
	c := &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		SiteURL:     getEnv("SITE_URL", "http://localhost:8080"),

		// Ledger backend
		BackendURL:     getEnv("BACKEND_URL", ""),
		BackendTimeout: time.Duration(getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15)) * time.Second,

		// Redis
		EnableRedis: getEnvAsBool("ENABLE_REDIS", true),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),

		// CORS
		CORSOrigins: splitTrimmed(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		// Checkout
		Currency:         strings.ToLower(getEnv("CHECKOUT_CURRENCY", "usd")),
		DefaultCountries: splitTrimmed(getEnv("CHECKOUT_DEFAULT_COUNTRIES", "US,CA,GB,AU,DE,FR,NL,SE,NO,DK")),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),

		// Features
		EnableCache:   getEnvAsBool("ENABLE_CACHE", true),
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	base := strings.TrimRight(c.SiteURL, "/")
	c.PaymentSuccessURL = getEnv("PAYMENT_SUCCESS_URL", fmt.Sprintf("%s/payment-success", base))
	c.PaymentCancelURL = getEnv("PAYMENT_CANCEL_URL", fmt.Sprintf("%s/payment-failure", base))

	return c
}

// splitTrimmed splits a comma-separated value, trimming whitespace around
// each entry and dropping empty ones.
func splitTrimmed(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
