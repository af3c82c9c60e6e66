package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-identity/config"
	"github.com/oksasatya/go-ddd-identity/internal/application"
	"github.com/oksasatya/go-ddd-identity/internal/container"
	"github.com/oksasatya/go-ddd-identity/internal/identity"
	pginfra "github.com/oksasatya/go-ddd-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "identity",
		Short:         "Administer users, roles and sign-ins in the identity store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			container.SetConfig(cfg)
			container.SetLogger(helpers.NewLogger(cfg.AppName, cfg.Env))
		},
	}
	root.AddCommand(newMigrateCmd(), newRoleCmd(), newUserCmd(), newSignInCmd())
	return root
}

// connect opens the shared pool once per process.
func connect(ctx context.Context) error {
	if container.GetPGPool() != nil {
		return nil
	}
	cfg := container.GetConfig()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{
		DSN:             cfg.PostgresDSN(),
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	container.SetPGPool(pool)
	return nil
}

// connectCodes wires the two-factor code store and, when enabled, the
// delivery queue.
func connectCodes(ctx context.Context) error {
	cfg := container.GetConfig()
	if container.GetRedis() == nil {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		container.SetRedis(rdb)
	}
	if cfg.CodeSendEnabled && container.GetRabbitPub() == nil {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQCodeQueue)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		container.SetRabbitPub(pub)
	}
	return nil
}

func shutdown() {
	if p := container.GetPGPool(); p != nil {
		p.Close()
	}
	if r := container.GetRedis(); r != nil {
		_ = r.Close()
	}
	container.GetRabbitPub().Close()
}

// request is one logical request: a fresh scope with its stores and managers.
type request struct {
	users *identity.UserStore
	roles *identity.RoleStore

	userManager *application.UserManager
	roleManager *application.RoleManager
}

// withRequest opens a request scope over the pool, runs fn and releases the
// scope afterwards.
func withRequest(ctx context.Context, fn func(r *request) error) error {
	if err := connect(ctx); err != nil {
		return err
	}
	cfg := container.GetConfig()
	logger := container.GetLogger()

	scope := pginfra.NewScope(container.GetPGPool(), logger)
	defer func() { _ = scope.Close() }()
	users, roles := identity.NewStores(scope)
	defer func() { _ = users.Close() }()
	defer func() { _ = roles.Close() }()

	r := &request{
		users: users,
		roles: roles,
		userManager: application.NewUserManager(users,
			helpers.NewBcryptHasher(cfg.BcryptCost),
			container.GetCodeStore(),
			container.GetCodeSender(),
			application.OptionsFromConfig(cfg),
			logger),
		roleManager: application.NewRoleManager(roles, logger),
	}
	return fn(r)
}

func newMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.GetConfig()
			if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, container.GetLogger()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if seed {
				if err := connect(cmd.Context()); err != nil {
					return err
				}
				scope := pginfra.NewScope(container.GetPGPool(), container.GetLogger())
				defer func() { _ = scope.Close() }()
				if _, err := identity.SeedRoles(cmd.Context(), scope.UnitOfWork, scope.Roles, cfg.SeedRoles...); err != nil {
					return fmt.Errorf("seed roles: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the configured roles when none exist")
	return cmd
}

func newSignInCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signin USER",
		Short: "Check a password sign-in against the lockout policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRequest(cmd.Context(), func(r *request) error {
				res, err := r.userManager.PasswordSignIn(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to check")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
