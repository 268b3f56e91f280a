package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	// Backend is the campus API the dashboard talks to.
	BackendBaseURL string
	RequestTimeout time.Duration
	// RetryAttempts is read from the environment but no retry loop consumes
	// it; requests are issued exactly once.
	RetryAttempts int

	AuthCookieName string

	CacheDriver string // sqlite|postgres
	CacheDSN    string

	DashboardUser     string
	DashboardPassHash string // bcrypt

	CORSOrigins []string

	MaxUploadBytes int64
}

// Load reads .env if present, then the process environment. Missing keys
// fall back to development defaults.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		PublicURL:         os.Getenv("PUBLIC_URL"),
		BackendBaseURL:    envOr("BACKEND_BASE_URL", "http://localhost:5005/api"),
		RequestTimeout:    envDuration("REQUEST_TIMEOUT", 30*time.Second),
		RetryAttempts:     envInt("RETRY_ATTEMPTS", 3),
		AuthCookieName:    envOr("AUTH_COOKIE_NAME", "jwtToken"),
		CacheDriver:       envOr("CACHE_DRIVER", "sqlite"),
		CacheDSN:          envOr("CACHE_DSN", ""),
		DashboardUser:     envOr("DASHBOARD_USER", "lecturer"),
		DashboardPassHash: envOr("DASHBOARD_PASS_HASH", ""),
		CORSOrigins:       csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"),
		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", 10<<20),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
