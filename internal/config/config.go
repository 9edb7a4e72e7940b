package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// MinEncryptionKeyLength is the shortest BOOKING_ENCRYPTION_KEY accepted.
const MinEncryptionKeyLength = 32

const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	// TrustedProxies are the proxy IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string

	DBDSN         string
	DBMaxConns    int
	DBAutoMigrate bool

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	EncryptionKey string
	HourlyRate    int

	BookingRateLimit  int
	BookingRateWindow time.Duration
	RateLimitBackend  string
	RedisURL          string

	UploadDir string
	LogDir    string
	LogLevel  string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Trusted proxies (default: none, the socket peer is the client)
	cfg.TrustedProxies, err = getEnvAsProxyList("TRUSTED_PROXIES")
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", false)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Booking references cannot be issued or read without the key, so its
	// absence stops the process here rather than failing per request.
	cfg.EncryptionKey = os.Getenv("BOOKING_ENCRYPTION_KEY")
	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("BOOKING_ENCRYPTION_KEY is required")
	}
	if len(cfg.EncryptionKey) < MinEncryptionKeyLength {
		return nil, fmt.Errorf("BOOKING_ENCRYPTION_KEY must be at least %d characters", MinEncryptionKeyLength)
	}

	cfg.HourlyRate, err = getEnvAsInt("HOURLY_RATE", 299)
	if err != nil {
		return nil, fmt.Errorf("invalid HOURLY_RATE: %w", err)
	}
	if cfg.HourlyRate <= 0 {
		return nil, fmt.Errorf("HOURLY_RATE must be positive")
	}

	cfg.BookingRateLimit, err = getEnvAsInt("BOOKING_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_RATE_LIMIT: %w", err)
	}
	if cfg.BookingRateLimit <= 0 {
		return nil, fmt.Errorf("BOOKING_RATE_LIMIT must be positive")
	}

	cfg.BookingRateWindow, err = getEnvAsDuration("BOOKING_RATE_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid BOOKING_RATE_WINDOW: %w", err)
	}
	if cfg.BookingRateWindow <= 0 {
		return nil, fmt.Errorf("BOOKING_RATE_WINDOW must be positive")
	}

	cfg.RateLimitBackend = strings.ToLower(getEnv("RATE_LIMIT_BACKEND", RateLimitMemory))
	switch cfg.RateLimitBackend {
	case RateLimitMemory:
	case RateLimitRedis:
		cfg.RedisURL = os.Getenv("REDIS_URL")
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", "./data/uploads")
	cfg.LogDir = getEnv("LOG_DIR", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsProxyList reads a comma separated list of IPs or CIDRs.
func getEnvAsProxyList(key string) ([]string, error) {
	var out []string
	for _, p := range strings.Split(getEnv(key, ""), ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return nil, fmt.Errorf("env %s value %q is not a valid CIDR: %w", key, p, err)
			}
		} else if net.ParseIP(p) == nil {
			return nil, fmt.Errorf("env %s value %q is not a valid IP", key, p)
		}
		out = append(out, p)
	}
	return out, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}

	return val, nil
}
