package config

import (
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the service configuration, loaded from environment
// variables with local-development defaults.
type Config struct {
	HTTPAddr       string
	MySQLDSN       string
	RedisAddr      string
	CatalogBaseURL string
	PaymentBaseURL string
	APIToken       string
	DeliveryFee    decimal.Decimal
	ClientTimeout  time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:       getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		CatalogBaseURL: getEnv("CATALOG_BASE_URL", "http://localhost:9080"),
		PaymentBaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:9081"),
		APIToken:       getEnv("API_BEARER_TOKEN", ""),
		DeliveryFee:    getDecimal("DELIVERY_FEE", decimal.NewFromInt(5)),
		ClientTimeout:  getDuration("CLIENT_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && !d.IsNegative() {
			return d
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
