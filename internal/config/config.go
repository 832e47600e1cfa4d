package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected through environment
// variables so deployments never patch the binary.
type AppConfig struct {
	ServiceName string
	Environment string

	HTTPAddr string
	DBPath   string

	// Redis is optional: when RedisAddr is empty the customer lookup cache
	// is disabled and every read goes to the origin API.
	RedisAddr        string
	RedisDB          int
	CustomerCacheTTL time.Duration

	CustomerAPIURL string

	// Mercado Pago in-store QR credentials.
	MercadoPagoBaseURL string
	MercadoPagoToken   string
	MercadoPagoUserID  string
	MercadoPagoPosID   string
}

// Load reads and validates configuration, falling back to development
// defaults where a value is missing.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName:        getEnv("SERVICE_NAME", "totem-orders"),
		Environment:        getEnv("ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DBPath:             getEnv("DB_PATH", "orders.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisDB:            0,
		CustomerCacheTTL:   5 * time.Minute,
		CustomerAPIURL:     getEnv("CUSTOMER_API_URL", "http://localhost:8081"),
		MercadoPagoBaseURL: getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
		MercadoPagoToken:   getEnv("MP_TOKEN", ""),
		MercadoPagoUserID:  getEnv("MP_USER_ID", ""),
		MercadoPagoPosID:   getEnv("MP_POS_ID", ""),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	cacheTTLSec, err := getEnvInt("CUSTOMER_CACHE_TTL_SEC", int(cfg.CustomerCacheTTL.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid CUSTOMER_CACHE_TTL_SEC: %w", err)
	}
	if cacheTTLSec <= 0 {
		return AppConfig{}, fmt.Errorf("CUSTOMER_CACHE_TTL_SEC must be > 0")
	}
	cfg.CustomerCacheTTL = time.Duration(cacheTTLSec) * time.Second

	if cfg.DBPath == "" {
		return AppConfig{}, fmt.Errorf("DB_PATH must not be empty")
	}
	if cfg.CustomerAPIURL == "" {
		return AppConfig{}, fmt.Errorf("CUSTOMER_API_URL must not be empty")
	}
	if cfg.MercadoPagoBaseURL == "" {
		return AppConfig{}, fmt.Errorf("MP_BASE_URL must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
