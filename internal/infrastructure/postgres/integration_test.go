package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/identity"
)

// Runs against a real database when IDENTITY_TEST_DATABASE_URL is set.
func TestStoresAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("IDENTITY_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("IDENTITY_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, Migrate(dsn, "../../../db/migrations", nil))
	pool, err := NewPool(ctx, PoolOptions{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	scope := NewScope(pool, nil)
	defer func() { _ = scope.Close() }()
	users, roles := identity.NewStores(scope)

	suffix := uuid.NewString()[:8]
	role := &entity.Role{Name: "role-" + suffix}
	require.NoError(t, roles.Create(ctx, role))
	defer func() { _ = roles.Delete(ctx, role) }()

	alice := entity.NewUser("Alice-" + suffix)
	alice.Email = "alice-" + suffix + "@example.com"
	require.NoError(t, users.Create(ctx, alice))
	require.NotZero(t, alice.ID)
	defer func() { _ = users.Delete(ctx, alice) }()

	t.Run("case-insensitive lookups", func(t *testing.T) {
		got, err := users.FindByName(ctx, "ALICE-"+suffix)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)

		got, err = users.FindByEmail(ctx, "ALICE-"+suffix+"@EXAMPLE.COM")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("roles", func(t *testing.T) {
		require.NoError(t, users.AddToRole(ctx, alice, role.Name))
		in, err := users.IsInRole(ctx, alice, role.Name)
		require.NoError(t, err)
		assert.True(t, in)
		names, err := users.GetRoles(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []string{role.Name}, names)
		require.NoError(t, users.RemoveFromRole(ctx, alice, role.Name))
		names, err = users.GetRoles(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("logins", func(t *testing.T) {
		login := entity.LoginInfo{LoginProvider: "google", ProviderKey: "key-" + suffix}
		require.NoError(t, users.AddLogin(ctx, alice, login))
		got, err := users.FindByLogin(ctx, login)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)
		require.NoError(t, users.RemoveLogin(ctx, alice, login))
		logins, err := users.GetLogins(ctx, alice)
		require.NoError(t, err)
		assert.Empty(t, logins)
	})

	t.Run("access failed count", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			n, err := users.IncrementAccessFailedCount(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, i, n)
		}
		fresh, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, fresh.AccessFailedCount)
		require.NoError(t, users.ResetAccessFailedCount(ctx, alice))
		fresh, err = users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, fresh.AccessFailedCount)
	})

	t.Run("lockout sentinel", func(t *testing.T) {
		require.NoError(t, users.SetLockoutEndDate(ctx, alice, time.Now().Add(time.Hour)))
		require.NoError(t, users.SetLockoutEndDate(ctx, alice, identity.NoLockout))
		fresh, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, fresh.LockoutEndDateUTC)
	})

	t.Run("duplicate name rolls back", func(t *testing.T) {
		err := users.Create(ctx, entity.NewUser("alice-"+suffix))
		require.Error(t, err)
		got, err := users.FindByName(ctx, "alice-"+suffix)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})
}
