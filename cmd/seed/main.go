package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-identity/config"
	"github.com/oksasatya/go-ddd-identity/internal/identity"
	pginfra "github.com/oksasatya/go-ddd-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN()})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	scope := pginfra.NewScope(pool, logger)
	defer func() { _ = scope.Close() }()

	seeded, err := identity.SeedRoles(ctx, scope.UnitOfWork, scope.Roles, cfg.SeedRoles...)
	if err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if seeded {
		logger.WithField("roles", cfg.SeedRoles).Info("roles seeded")
		return
	}
	logger.Info("roles already present, nothing seeded")
}
