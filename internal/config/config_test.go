package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("RECORDS_BACKEND", "")
	t.Setenv("CLASSIFIER_URL", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, BackendDynamo, cfg.RecordsBackend)
	assert.Empty(t, cfg.ClassifierURL)
	assert.Equal(t, 5*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Zero(t, cfg.TrustedProxyHops)
	assert.Equal(t, "health_readings", cfg.DynamoTables.Readings)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RECORDS_BACKEND", "Postgres")
	t.Setenv("CLASSIFIER_URL", "http://ml:8000")
	t.Setenv("CLASSIFIER_TIMEOUT", "750ms")
	t.Setenv("RATE_LIMIT_MAX", "20")
	t.Setenv("TRUSTED_PROXY_HOPS", "1")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg := Load()

	assert.Equal(t, BackendPostgres, cfg.RecordsBackend)
	assert.Equal(t, "http://ml:8000", cfg.ClassifierURL)
	assert.Equal(t, 750*time.Millisecond, cfg.ClassifierTimeout)
	assert.Equal(t, 20, cfg.RateLimitMax)
	assert.Equal(t, 1, cfg.TrustedProxyHops)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CLASSIFIER_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "two")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.ClassifierTimeout)
	assert.Equal(t, 0, cfg.RedisDB)
}
