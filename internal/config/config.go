package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL            string
	DBMaxOpenConns         int
	DBMaxIdleConns         int
	DBConnLifetimeMinutes  int
	JWTSecret              string
	JWTIssuer              string
	AccessTTLSeconds       int64
	RefreshTTLSeconds      int64
	CorsOrigins            []string
	RateLimitWindowMinutes int
	RateLimitMax           int
	MediaStoragePath       string
	MaxUploadBytes         int64
	AnalystCommand         []string
	AnalysisTimeoutSeconds int
	MetricsDiskPath        string
	MetricsSampleSeconds   int
}

func Load() Config {
	return Config{
		DatabaseURL:            mustEnv("DATABASE_URL"),
		DBMaxOpenConns:         envOrInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:         envOrInt("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetimeMinutes:  envOrInt("DB_CONN_LIFETIME_MINUTES", 30),
		JWTSecret:              mustEnv("JWT_SECRET"),
		JWTIssuer:              envOr("JWT_ISSUER", "coastal-guardian"),
		AccessTTLSeconds:       int64(envOrInt("ACCESS_TTL_SECONDS", 604800)),
		RefreshTTLSeconds:      int64(envOrInt("REFRESH_TTL_SECONDS", 2592000)),
		CorsOrigins:            parseCSV(envOr("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitWindowMinutes: envOrInt("RATE_LIMIT_WINDOW", 15),
		RateLimitMax:           envOrInt("RATE_LIMIT_MAX", 100),
		MediaStoragePath:       envOr("MEDIA_STORAGE_PATH", "storage/uploads"),
		MaxUploadBytes:         int64(envOrInt("MAX_UPLOAD_BYTES", 5000000)),
		AnalystCommand:         parseCommand(envOr("ANALYST_COMMAND", "python scripts/coastal_analyst.py")),
		AnalysisTimeoutSeconds: envOrInt("ANALYSIS_TIMEOUT_SECONDS", 300),
		MetricsDiskPath:        envOr("METRICS_DISK_PATH", "storage/uploads"),
		MetricsSampleSeconds:   envOrInt("METRICS_SAMPLE_INTERVAL", 60),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func parseCommand(raw string) []string {
	return strings.Fields(raw)
}
