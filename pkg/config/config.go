package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	MySQLDSN  string
	RedisAddr string

	// Cache TTLs bound how stale an unlocked read may be.
	CartCacheTTL    time.Duration
	ProductCacheTTL time.Duration

	// Lock TTLs are the only cancellation mechanism for a crashed holder.
	CartLockTTL     time.Duration
	CheckoutLockTTL time.Duration

	PageDefaultLimit int
	PageMaxLimit     int
}

func Load() Config {
	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		MySQLDSN:  getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/storefront?parseTime=true"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		CartCacheTTL:    getEnvDuration("CART_CACHE_TTL", 300*time.Second),
		ProductCacheTTL: getEnvDuration("PRODUCT_CACHE_TTL", 600*time.Second),

		CartLockTTL:     getEnvDuration("CART_LOCK_TTL", 10*time.Second),
		CheckoutLockTTL: getEnvDuration("CHECKOUT_LOCK_TTL", 30*time.Second),

		PageDefaultLimit: getEnvInt("PAGE_DEFAULT_LIMIT", 10),
		PageMaxLimit:     getEnvInt("PAGE_MAX_LIMIT", 50),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
