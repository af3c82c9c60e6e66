package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity/config"
	"github.com/oksasatya/go-ddd-identity/internal/application"
	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
)

// app-level container to share constructed components across commands.
// Each command still opens its own request scope over the shared pool.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	rabbitPub   *helpers.RabbitPublisher
	codeStore   application.CodeStore
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetPGPool(p *pgxpool.Pool)  { pgPool = p }
func GetPGPool() *pgxpool.Pool   { return pgPool }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

// GetCodeStore prefers redis and falls back to a process-local cache.
func GetCodeStore() application.CodeStore {
	if codeStore != nil {
		return codeStore
	}
	if redisClient != nil {
		codeStore = application.NewRedisCodeStore(redisClient)
	} else {
		ttl := application.DefaultOptions().TwoFactorCodeLifetime
		if cfg != nil && cfg.TwoFactorCodeTTL > 0 {
			ttl = cfg.TwoFactorCodeTTL
		}
		codeStore = application.NewCacheCodeStore(ttl)
	}
	return codeStore
}

// GetCodeSender queues codes when a publisher is set.
func GetCodeSender() application.CodeSender {
	if rabbitPub != nil {
		return &application.QueueCodeSender{Pub: rabbitPub, Logger: logger}
	}
	return application.DisabledCodeSender{Logger: logger}
}

// Reset drops every singleton.
func Reset() {
	cfg, logger, pgPool, redisClient, rabbitPub, codeStore = nil, nil, nil, nil, nil, nil
}
