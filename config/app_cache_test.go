package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/akeren/logfox/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheConfig_FromEnvironment(t *testing.T) {
	t.Setenv("REDIS_HOST", " redis.internal ")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_DIAL_TIMEOUT", "250ms")

	cc := NewCacheConfig()

	assert.True(t, cc.IsConfigured())
	assert.Equal(t, "redis.internal", cc.Host)
	assert.Equal(t, "6379", cc.Port)
	assert.Equal(t, 3, cc.DB)
	assert.Equal(t, 250*time.Millisecond, cc.DialTimeout)
}

func TestNewCacheOrNil_WithoutHost(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	logger := log.NewLogger(io.Discard, slog.LevelError)

	cc := NewCacheConfig()
	assert.Nil(t, cc.NewCacheOrNil(logger))

	_, err := cc.NewCache(logger)
	require.ErrorIs(t, err, ErrCacheNotConfigured)

	assert.NoError(t, CloseCache(nil, logger))
}
