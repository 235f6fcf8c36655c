package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequiredSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("MONGODB_URI", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("DASHBOARD_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "feedback-system", cfg.MongoDatabase)
	assert.Equal(t, ":5000", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_PortPrefix(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("SERVER_PORT", "8080")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerPort, "A bare port number should gain the colon prefix")
}

func TestLoad_Origins(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL, "Bad duration falls back to the default")
}

func TestIsProduction(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
}
