// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Remote lead collection service (the source of record).
	RemoteAPIBaseURL string
	RemoteAPIToken   string
	RemoteAPIRPS     float64
	RemoteAPIBurst   int
	RemoteTimeout    time.Duration

	// Redis backs preferences and the asynq refetch queue.
	RedisURL        string
	RefetchInterval time.Duration
	AsynqQueue      string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	// Pipeline stage definitions; empty means compiled-in defaults.
	StagesFile string

	// MinIO attachment storage (optional).
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		RemoteAPIBaseURL: getEnv("REMOTE_API_BASE_URL", ""),
		RemoteAPIToken:   getEnv("REMOTE_API_TOKEN", ""),
		RemoteAPIRPS:     mustFloat(getEnv("REMOTE_API_RPS", "10")),
		RemoteAPIBurst:   mustInt(getEnv("REMOTE_API_BURST", "20")),
		RemoteTimeout:    mustDuration(getEnv("REMOTE_API_TIMEOUT", "15s")),
		RedisURL:         getEnv("REDIS_URL", ""),
		RefetchInterval:  mustDuration(getEnv("LEADS_REFETCH_INTERVAL", "5m")),
		AsynqQueue:       getEnv("ASYNQ_QUEUE", "default"),
		CORSAllowAll:     corsAllowAll,
		CORSOrigins:      corsOrigins,
		CORSAllowCreds:   strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		StagesFile:       getEnv("PIPELINE_STAGES_FILE", ""),
		MinioEndpoint:    getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:      strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucket:      getEnv("MINIO_BUCKET_LEAD_ATTACHMENTS", "lead-attachments"),
	}

	if cfg.RemoteAPIBaseURL == "" {
		return nil, fmt.Errorf("REMOTE_API_BASE_URL is required")
	}
	if cfg.RefetchInterval <= 0 {
		return nil, fmt.Errorf("LEADS_REFETCH_INTERVAL must be a positive duration")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// IsMinioEnabled reports whether attachment storage is configured.
func (c *Config) IsMinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
