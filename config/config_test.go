package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "3001")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("REDIS_HOST", "")

	cfg := FromEnv()
	assert.Equal(t, ":3001", cfg.Addr())
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_HOST", "cache.local")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxies)
}

func TestString_MasksSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("MINIO_SECRET_KEY", "topsecret")

	s := FromEnv().String()
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, "topsecret")
}
