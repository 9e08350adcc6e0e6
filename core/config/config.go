package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel      OTelConfig
	Delivery  DeliveryConfig
	Mirror    MirrorConfig
	RateLimit RateLimitConfig
	Env       string
	Port      string
	NodeID    int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type DeliveryConfig struct {
	QueueCapacity       int // per queue (ALL, LEFT, RIGHT)
	ResponseLogCapacity int
}

// MirrorConfig controls the optional redis stream that receives a copy of
// every submitted packet and recorded response. Empty RedisURL disables it.
type MirrorConfig struct {
	RedisURL    string
	RedisStream string
	MaxLen      int64
}

type RateLimitConfig struct {
	RPS   int
	Burst int
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
)

// Load loads configuration from environment variables.
// In development it loads .env.<service> first and falls back to .env.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("HERIZON_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:    getEnv("HERIZON_ENV", "development"),
		Port:   getEnv("PORT", "5002"),
		NodeID: getEnvInt64("SNOWFLAKE_NODE_ID", 1),
		Delivery: DeliveryConfig{
			QueueCapacity:       getEnvInt("QUEUE_CAPACITY", 50),
			ResponseLogCapacity: getEnvInt("RESPONSE_LOG_CAPACITY", 30),
		},
		Mirror: MirrorConfig{
			RedisURL:    getEnv("REDIS_URL", ""),
			RedisStream: getEnv("REDIS_STREAM", "herizon_events"),
			MaxLen:      getEnvInt64("REDIS_STREAM_MAXLEN", 1000),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 0),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "herizon"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Delivery.QueueCapacity <= 0 {
		return fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", c.Delivery.QueueCapacity)
	}
	if c.Delivery.ResponseLogCapacity <= 0 {
		return fmt.Errorf("RESPONSE_LOG_CAPACITY must be positive, got %d", c.Delivery.ResponseLogCapacity)
	}
	// snowflake reserves 10 bits for the node
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("SNOWFLAKE_NODE_ID must be in [0, 1023], got %d", c.NodeID)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c MirrorConfig) Enabled() bool {
	return c.RedisURL != ""
}

func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
