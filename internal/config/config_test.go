package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "DATABASE_URL", "NEXTAUTH_SECRET", "WEB_PORT", "GRPC_PORT", "REDIS_URL",
		"SESSION_MAX_AGE", "COOKIE_SECURE", "LOGIN_RATE_PER_SEC", "LOGIN_BURST",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXTAUTH_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.WebPort)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
web_port: "9000"
grpc_port: "9001"
redis_url: redis://cache:6379/0
session_max_age: 12h
cookie_secure: true
login_burst: 3
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NEXTAUTH_SECRET", "s3cret")
	t.Setenv("GRPC_PORT", "7000")
	t.Setenv("SESSION_MAX_AGE", "3600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.WebPort)
	assert.Equal(t, "7000", cfg.GRPCPort)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 3, cfg.LoginBurst)
}

func TestLoadBadValues(t *testing.T) {
	tests := []struct{ key, val string }{
		{"SESSION_MAX_AGE", "soon"},
		{"SESSION_MAX_AGE", "-5"},
		{"COOKIE_SECURE", "maybe"},
		{"LOGIN_BURST", "many"},
		{"LOGIN_RATE_PER_SEC", "fast"},
		{"CONFIG_FILE", "/does/not/exist.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("NEXTAUTH_SECRET", "s3cret")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
