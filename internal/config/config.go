// Package config centralizes loading of the gateway configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"promptgate/internal/ratelimit"
)

type Config struct {
	Server    ServerConfig
	Provider  ProviderConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Addr              string
	BasePath          string
	TrustProxyHeaders bool
}

type ProviderConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

type StorageConfig struct {
	Type        string
	PostgresURL string
	Redis       RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	PerDay    int64
	PerHour   int64
	PerMinute int64
	Overrides map[string]ratelimit.Quota
}

type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	server, err := buildServerConfig()
	if err != nil {
		return Config{}, err
	}

	provider, err := buildProviderConfig()
	if err != nil {
		return Config{}, err
	}

	storage, err := buildStorageConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimit, err := buildRateLimitConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server:    server,
		Provider:  provider,
		Storage:   storage,
		RateLimit: rateLimit,
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
	}, nil
}

func buildServerConfig() (ServerConfig, error) {
	trustProxy, err := getEnvBool("TRUST_PROXY_HEADERS", false)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Addr:              ":" + getEnv("SERVER_PORT", "8080"),
		BasePath:          getEnv("BASE_PATH", "/api/v1"),
		TrustProxyHeaders: trustProxy,
	}, nil
}

func buildProviderConfig() (ProviderConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return ProviderConfig{}, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	timeout := 30 * time.Second
	if v := os.Getenv("GEMINI_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("invalid GEMINI_TIMEOUT: %w", err)
		}
		timeout = d
	}

	maxTokens := 0
	if v := os.Getenv("GEMINI_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("invalid GEMINI_MAX_OUTPUT_TOKENS: %w", err)
		}
		maxTokens = n
	}

	return ProviderConfig{
		APIKey:          apiKey,
		BaseURL:         getEnv("GEMINI_BASE_URL", ""),
		Model:           getEnv("GEMINI_MODEL", ""),
		Timeout:         timeout,
		MaxOutputTokens: maxTokens,
	}, nil
}

func buildStorageConfig() (StorageConfig, error) {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return StorageConfig{
		Type:        getEnv("STORAGE_TYPE", "memory"),
		PostgresURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
		},
	}, nil
}

func buildRateLimitConfig() (RateLimitConfig, error) {
	perDay, err := getEnvInt64("RATE_LIMIT_PER_DAY", 200)
	if err != nil {
		return RateLimitConfig{}, err
	}
	perHour, err := getEnvInt64("RATE_LIMIT_PER_HOUR", 50)
	if err != nil {
		return RateLimitConfig{}, err
	}
	perMinute, err := getEnvInt64("RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return RateLimitConfig{}, err
	}

	overrides, err := buildEndpointOverrides()
	if err != nil {
		return RateLimitConfig{}, err
	}

	return RateLimitConfig{
		PerDay:    perDay,
		PerHour:   perHour,
		PerMinute: perMinute,
		Overrides: overrides,
	}, nil
}

// buildEndpointOverrides parses RATE_LIMIT_OVERRIDES, a comma-separated list
// of PATH:REQUESTS:WINDOW entries, e.g. "/api/v1/generate/text:5:minute".
// Paths are matched against the full request path.
func buildEndpointOverrides() (map[string]ratelimit.Quota, error) {
	raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_OVERRIDES"))
	if raw == "" {
		return map[string]ratelimit.Quota{}, nil
	}

	overrides := make(map[string]ratelimit.Quota)
	for _, item := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("endpoint override must follow PATH:REQUESTS:WINDOW: %s", item)
		}

		path := strings.TrimSpace(parts[0])
		requests, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid requests for endpoint %s: %w", path, err)
		}
		kind, err := ratelimit.ParseKind(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid window for endpoint %s: %w", path, err)
		}

		overrides[path] = ratelimit.Quota{Requests: requests, Window: kind}
	}

	return overrides, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
