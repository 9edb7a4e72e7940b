package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BOOKING_ENCRYPTION_KEY", strings.Repeat("k", 32))
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 299, cfg.HourlyRate)
	assert.Equal(t, 5, cfg.BookingRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.BookingRateWindow)
	assert.Equal(t, RateLimitMemory, cfg.RateLimitBackend)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnvTrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 192.168.1.10 ,,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)
}

func TestFromEnvRequiredKeys(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"missing dsn", "DB_DSN", "DB_DSN is required"},
		{"missing jwt secret", "JWT_SECRET", "JWT_SECRET is required"},
		{"missing encryption key", "BOOKING_ENCRYPTION_KEY", "BOOKING_ENCRYPTION_KEY is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnvShortEncryptionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOKING_ENCRYPTION_KEY", strings.Repeat("k", 31))

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestFromEnvRedisBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_BACKEND", "redis")

	_, err := FromEnv()
	require.Error(t, err, "redis backend without REDIS_URL must be rejected")

	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, RateLimitRedis, cfg.RateLimitBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestFromEnvInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"BCRYPT_COST", "twelve"},
		{"JWT_ACCESS_TOKEN_TTL", "soon"},
		{"HOURLY_RATE", "0"},
		{"BOOKING_RATE_WINDOW", "15"},
		{"BOOKING_RATE_WINDOW", "0s"},
		{"BOOKING_RATE_WINDOW", "-1m"},
		{"TRUSTED_PROXIES", "not-an-ip"},
		{"TRUSTED_PROXIES", "10.0.0.0/33"},
		{"DB_AUTO_MIGRATE", "maybe"},
		{"RATE_LIMIT_BACKEND", "memcached"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
