package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseConfigDefaults тестирует значения по умолчанию
func TestParseConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 1.0, cfg.App.DefaultDownscale)
	assert.Equal(t, "png", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"localhost:9094"}, cfg.Kafka.Brokers)
	assert.Equal(t, 4, cfg.Kafka.Workers)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestParseConfigOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("app.default_downscale", 0.5)
	v.Set("kafka.topic", "other")
	v.Set("redis.ttl", "30m")

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.App.DefaultDownscale)
	assert.Equal(t, "other", cfg.Kafka.Topic)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("COMPOSITE_TEST_KEY", "value")

	assert.Equal(t, "value", GetEnv("COMPOSITE_TEST_KEY", "default"))
	assert.Equal(t, "default", GetEnv("COMPOSITE_MISSING_KEY", "default"))
}
