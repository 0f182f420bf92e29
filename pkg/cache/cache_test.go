package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "pricing"), mr
}

func TestNilClientIsPassthrough(t *testing.T) {
	c := New(nil, "pricing")
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	hit, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestKey(t *testing.T) {
	c := New(nil, "pricing")
	assert.Equal(t, "pricing:Part:12", c.Key("Part", 12))
}

func TestSetGetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "pricing:Part:1", map[string]int{"a": 1}, time.Minute))
	assert.True(t, mr.Exists("pricing:Part:1"))

	var out map[string]int
	hit, err := c.GetJSON(ctx, "pricing:Part:1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, c.Delete(ctx, "pricing:Part:1", "pricing:Part:2"))
	hit, err = c.GetJSON(ctx, "pricing:Part:1", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "pricing:Device:3", []int{1}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	var out []int
	hit, err := c.GetJSON(ctx, "pricing:Device:3", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNewRedisClientWithoutAddress(t *testing.T) {
	client, err := NewRedisClient(context.Background(), Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
