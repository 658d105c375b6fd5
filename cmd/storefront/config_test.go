package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "REQUEST_TIMEOUT", "CACHE_BACKEND", "KAFKA_BROKERS", "BREAKER_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.BreakerEnabled)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("SESSION_IDLE_TIMEOUT", "bogus")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg := loadConfig()
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.BreakerEnabled)
}
