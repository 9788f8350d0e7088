package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	require.NoError(t, LoadConfig())
	require.NotNil(t, Conf)

	assert.Equal(t, ":8080", Conf.App.Port)
	assert.Equal(t, 3, Conf.BROADCAST.RetryCount)
	assert.Equal(t, 200*time.Millisecond, Conf.BROADCAST.BaseDelay)
	assert.Equal(t, 5*time.Minute, Conf.DISPATCH.MaxHold)
	assert.Equal(t, 8, Conf.STREAM.Shards)
	assert.Equal(t, []string{"localhost:9092"}, Conf.KAFKA.Brokers)
	assert.Equal(t, "dlq_jobs", Conf.DLQ.CollectionName)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("CHATAPP_BROADCAST_RETRY_COUNT", "5")
	t.Setenv("CHATAPP_COUNTER_DEDUP_TTL", "1m")
	t.Setenv("CHATAPP_DATABASE_REDIS_ADDR", "redis:6380")

	require.NoError(t, LoadConfig())

	assert.Equal(t, 5, Conf.BROADCAST.RetryCount)
	assert.Equal(t, time.Minute, Conf.COUNTER.DedupTTL)
	assert.Equal(t, "redis:6380", Conf.DATABASE.Redis.Addr)
}
