package container

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-identity/config"
	"github.com/oksasatya/go-ddd-identity/internal/application"
	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
)

func TestCodeStoreFallsBackToCache(t *testing.T) {
	t.Cleanup(Reset)
	SetConfig(&config.Config{})

	s := GetCodeStore()
	require.IsType(t, &application.CacheCodeStore{}, s)
	assert.Same(t, s, GetCodeStore())
}

func TestCodeStoreUsesRedisWhenSet(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb, err := helpers.NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	SetRedis(rdb)

	s := GetCodeStore()
	require.IsType(t, &application.RedisCodeStore{}, s)
	require.NoError(t, s.Save(ctx, "k", "246810", time.Minute))
	assert.True(t, mr.Exists("k"))
}

func TestCodeSenderDisabledWithoutPublisher(t *testing.T) {
	t.Cleanup(Reset)
	assert.IsType(t, application.DisabledCodeSender{}, GetCodeSender())
}
