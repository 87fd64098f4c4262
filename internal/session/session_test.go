package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevoke(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	ok, err := m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Revoke(ctx, "a", time.Now().Add(time.Hour)))
	ok, _ = m.IsRevoked(ctx, "a")
	assert.True(t, ok)

	// already expired tokens are not stored
	require.NoError(t, m.Revoke(ctx, "b", time.Now().Add(-time.Second)))
	ok, _ = m.IsRevoked(ctx, "b")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Minute)))
	m.now = func() time.Time { return now.Add(2 * time.Minute) }

	ok, _ := m.IsRevoked(ctx, "a")
	assert.False(t, ok)
	assert.Empty(t, m.ids)
}

func TestRedisRevoke(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	s := NewRedis(rdb)
	id := uuid.NewString()

	ok, err := s.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Revoke(ctx, id, time.Now().Add(time.Minute)))
	ok, err = s.IsRevoked(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := rdb.TTL(ctx, s.key(id)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}
