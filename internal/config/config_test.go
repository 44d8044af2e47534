package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires DATABASE_URL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/jobtrack")
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 10.0, cfg.RateLimit)
		assert.Equal(t, 20, cfg.RateBurst)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/jobtrack")
		t.Setenv("PORT", "9000")
		t.Setenv("RATE_LIMIT_RPS", "2.5")
		t.Setenv("RATE_LIMIT_BURST", "5")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Addr())
		assert.Equal(t, 2.5, cfg.RateLimit)
		assert.Equal(t, 5, cfg.RateBurst)
	})

	t.Run("rejects a bad port", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/jobtrack")
		t.Setenv("PORT", "not-a-port")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid PORT")
	})
}

func TestNewJWTConfig(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := NewJWTConfig()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("defaults expiration to 24 hours", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "")
		cfg, err := NewJWTConfig()
		require.NoError(t, err)
		assert.Equal(t, 24, cfg.ExpirationHours)
	})

	t.Run("rejects non-positive expirations", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("JWT_EXPIRATION_HOURS", "0")
		_, err := NewJWTConfig()
		assert.Error(t, err)
	})
}

func TestPasswordConfig(t *testing.T) {
	t.Run("hash and verify round trip", func(t *testing.T) {
		cfg := &PasswordConfig{BcryptCost: 10}
		hash, err := cfg.HashPassword("hunter22")
		require.NoError(t, err)

		assert.True(t, cfg.VerifyPassword("hunter22", hash))
		assert.False(t, cfg.VerifyPassword("hunter23", hash))
	})

	t.Run("pepper changes the hash input", func(t *testing.T) {
		plain := &PasswordConfig{BcryptCost: 10}
		peppered := &PasswordConfig{BcryptCost: 10, Pepper: "spice"}

		hash, err := peppered.HashPassword("hunter22")
		require.NoError(t, err)
		assert.True(t, peppered.VerifyPassword("hunter22", hash))
		assert.False(t, plain.VerifyPassword("hunter22", hash))
	})

	t.Run("rejects cost out of range", func(t *testing.T) {
		t.Setenv("BCRYPT_COST", "15")
		_, err := NewPasswordConfig()
		assert.ErrorContains(t, err, "out of range")
	})
}
