package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "SESSION_TTL", "QUERY_TIMEOUT", "BCRYPT_COST", "STORE_BACKEND", "ALLOWED_ORIGINS", "CLOUDINARY_CLOUD_NAME"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.Development())
	assert.False(t, cfg.Production())
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.CloudinaryEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	cfg := FromEnv()
	assert.True(t, cfg.Production())
	assert.False(t, cfg.Development())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CloudinaryEnabled())
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "a day")
	t.Setenv("BCRYPT_COST", "ten")
	cfg := FromEnv()
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, App{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, "UTC", App{Timezone: "UTC"}.Location().String())
}
