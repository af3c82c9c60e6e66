package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type session struct {
	UserID int64  `json:"user_id"`
	Device string `json:"device"`
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(ctx, addr, "", 0)
	assert.Error(t, err)
}

func TestRedisJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	var got session
	ok, err := RedisGetJSON(ctx, rdb, "s:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RedisSetJSON(ctx, rdb, "s:1", session{UserID: 1, Device: "cli"}, time.Hour))
	raw, err := mr.Get("s:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":1,"device":"cli"}`, raw)

	ok, err = RedisGetJSON(ctx, rdb, "s:1", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session{UserID: 1, Device: "cli"}, got)

	require.NoError(t, mr.Set("s:2", "not json"))
	_, err = RedisGetJSON(ctx, rdb, "s:2", &got)
	assert.Error(t, err)

	require.NoError(t, RedisDel(ctx, rdb, "s:1"))
	assert.False(t, mr.Exists("s:1"))
}
