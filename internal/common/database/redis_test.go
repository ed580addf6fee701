package database

import (
	"context"
	"testing"

	"frontdesk-workers/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("host and port", func(t *testing.T) {
		client, err := NewRedis(config.RedisConfig{Address: mr.Addr(), DB: 2})
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 2, client.Client.Options().DB)
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("url", func(t *testing.T) {
		client, err := NewRedis(config.RedisConfig{Address: "redis://" + mr.Addr() + "/3", DB: 1})
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, mr.Addr(), client.Client.Options().Addr)
		assert.Equal(t, 3, client.Client.Options().DB)
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("empty address", func(t *testing.T) {
		_, err := NewRedis(config.RedisConfig{Address: "  "})
		assert.ErrorContains(t, err, "redis address is required")
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := NewRedis(config.RedisConfig{Address: "http://" + mr.Addr()})
		assert.ErrorContains(t, err, "invalid redis url")
	})

	t.Run("unreachable", func(t *testing.T) {
		client, err := NewRedis(config.RedisConfig{Address: "127.0.0.1:1"})
		require.NoError(t, err)
		defer client.Close()

		assert.ErrorContains(t, client.Ping(context.Background()), "redis ping failed")
	})
}
