package application

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
	"github.com/oksasatya/go-ddd-identity/pkg/mailer"
)

// CodeStore keeps pending two-factor codes until they expire or are used.
type CodeStore interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Get reports false when no code is pending under key.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// CodeSender hands a rendered code to a delivery channel.
type CodeSender interface {
	Send(ctx context.Context, job mailer.CodeJob) error
}

type pendingCode struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// RedisCodeStore keeps codes in redis with a TTL.
type RedisCodeStore struct {
	Redis redis.Cmdable
}

func NewRedisCodeStore(rdb redis.Cmdable) *RedisCodeStore {
	return &RedisCodeStore{Redis: rdb}
}

func (s *RedisCodeStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.Redis, key, pendingCode{Code: code, IssuedAt: time.Now().UTC()}, ttl)
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, bool, error) {
	var p pendingCode
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, key, &p)
	if err != nil || !ok {
		return "", false, err
	}
	return p.Code, true, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, key string) error {
	return helpers.RedisDel(ctx, s.Redis, key)
}

// CacheCodeStore keeps codes in process memory. Codes do not survive a
// restart and are not shared between processes.
type CacheCodeStore struct {
	c *cache.Cache
}

func NewCacheCodeStore(defaultTTL time.Duration) *CacheCodeStore {
	return &CacheCodeStore{c: cache.New(defaultTTL, 2*defaultTTL)}
}

func (s *CacheCodeStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	s.c.Set(key, code, ttl)
	return nil
}

func (s *CacheCodeStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false, nil
	}
	code, _ := v.(string)
	return code, true, nil
}

func (s *CacheCodeStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// QueueCodeSender puts code jobs on a queue for a delivery worker.
type QueueCodeSender struct {
	Pub    Publisher
	Logger *logrus.Logger
}

func (s *QueueCodeSender) Send(ctx context.Context, job mailer.CodeJob) error {
	if err := s.Pub.PublishJSON(ctx, mailer.CodeJobType, job); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": job.UserID, "channel": job.Channel}).Error("enqueue code job failed")
		}
		return err
	}
	return nil
}

// DisabledCodeSender drops jobs; used when code delivery is switched off.
type DisabledCodeSender struct {
	Logger *logrus.Logger
}

func (s DisabledCodeSender) Send(_ context.Context, job mailer.CodeJob) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": job.UserID, "channel": job.Channel}).Warn("code delivery disabled, job dropped")
	}
	return nil
}
