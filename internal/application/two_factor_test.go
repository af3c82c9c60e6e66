package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-identity/pkg/mailer"
)

func newRedisCodeStore(t *testing.T) (*RedisCodeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCodeStore(rdb), mr
}

func TestRedisCodeStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisCodeStore(t)
	key := "identity:2fa:7:email_code"

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, key, "123456", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(key))

	code, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "123456", code)

	require.NoError(t, s.Delete(ctx, key))
	assert.False(t, mr.Exists(key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCodeStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisCodeStore(t)

	require.NoError(t, s.Save(ctx, "k", "654321", 30*time.Second))
	mr.FastForward(31 * time.Second)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCodeStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisCodeStore(t)
	mr.Close()

	assert.Error(t, s.Save(ctx, "k", "111111", time.Minute))
	_, _, err := s.Get(ctx, "k")
	assert.Error(t, err)
}

func TestTwoFactorCodesOverRedis(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	codes, mr := newRedisCodeStore(t)
	f.users.Codes = codes
	u := f.create(t, "nora", "nora@example.com")

	require.NoError(t, f.users.GenerateTwoFactorCode(ctx, u, ProviderEmailCode))
	keys := mr.Keys()
	require.Len(t, keys, 1)
	code, ok, err := codes.Get(ctx, keys[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, f.sender.last().Text, code)

	verified, err := f.users.VerifyTwoFactorCode(ctx, u, ProviderEmailCode, code)
	require.NoError(t, err)
	assert.True(t, verified)
	assert.Empty(t, mr.Keys())
}

type publishedMessage struct {
	msgType string
	body    any
}

type fakePublisher struct {
	published []publishedMessage
	err       error
}

func (p *fakePublisher) PublishJSON(_ context.Context, msgType string, body any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMessage{msgType: msgType, body: body})
	return nil
}

func TestQueueCodeSender(t *testing.T) {
	ctx := context.Background()
	job := mailer.CodeJob{UserID: 3, Provider: ProviderPhoneCode, Channel: mailer.ChannelSMS, Destination: "+15550100", Text: "Your security code is 000111"}

	pub := &fakePublisher{}
	require.NoError(t, (&QueueCodeSender{Pub: pub}).Send(ctx, job))
	require.Len(t, pub.published, 1)
	assert.Equal(t, mailer.CodeJobType, pub.published[0].msgType)
	assert.Equal(t, job, pub.published[0].body)

	boom := errors.New("channel closed")
	assert.ErrorIs(t, (&QueueCodeSender{Pub: &fakePublisher{err: boom}}).Send(ctx, job), boom)

	assert.NoError(t, DisabledCodeSender{}.Send(ctx, job))
}
