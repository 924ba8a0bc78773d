package cache

import (
	"context"
	"testing"
	"time"

	"boarddash/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewRedisClient(ctx, config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = NewRedisClient(ctx, config.RedisConfig{URL: "redis://" + mr.Addr() + "/0", RatePerMinute: 5, RateLimitWindow: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { client.Close() })
	assert.NoError(t, client.Set(ctx, "k", "v", 0).Err())

	_, err = NewRedisClient(ctx, config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}
