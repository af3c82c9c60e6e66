package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

func addUser(t *testing.T, s *repository.Scope, name, email string) *entity.User {
	t.Helper()
	u := entity.NewUser(name)
	u.Email = email
	s.Users.Add(u)
	require.NoError(t, s.UnitOfWork.SaveChanges(context.Background()))
	require.NotZero(t, u.ID)
	return u
}

func TestSaveChangesIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())

	first := entity.NewUser("alice")
	clash := entity.NewUser("ALICE")
	s.Users.Add(first)
	s.Users.Add(clash)

	err := s.UnitOfWork.SaveChanges(ctx)
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Zero(t, first.ID)

	got, err := s.Users.FindByName(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	// failed ops are discarded; the next commit starts clean
	assert.NoError(t, s.UnitOfWork.SaveChanges(ctx))
}

func TestReadsSeeOnlyCommittedState(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())

	u := entity.NewUser("bob")
	s.Users.Add(u)
	got, err := s.Users.FindByName(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))
	got, err = s.Users.FindByName(ctx, "BOB")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestScopesShareCommittedState(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	u := addUser(t, NewScope(db), "carol", "carol@example.com")

	other := NewScope(db)
	got, err := other.Users.FindByEmail(ctx, "CAROL@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "dave", "")

	role := &entity.Role{Name: "admin"}
	s.Roles.Add(role)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	s.UserLogins.Add(&entity.UserLogin{LoginProvider: "github", ProviderKey: "42", UserID: u.ID})
	s.UserClaims.Add(&entity.UserClaim{UserID: u.ID, ClaimType: "dept", ClaimValue: "ops"})
	s.UserRoles.Add(&entity.UserRole{UserID: u.ID, RoleID: role.ID})
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	s.Users.Remove(u)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	logins, err := s.UserLogins.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, logins)
	claims, err := s.UserClaims.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, claims)
	in, err := s.UserRoles.IsInRole(ctx, u.ID, role.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestRoleDeleteCascadesMemberships(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "erin", "")
	role := &entity.Role{Name: "manager"}
	s.Roles.Add(role)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))
	s.UserRoles.Add(&entity.UserRole{UserID: u.ID, RoleID: role.ID})
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	s.Roles.Remove(role)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	names, err := s.Roles.GetRoleNamesByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestConstraintViolations(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "frank", "frank@example.com")

	t.Run("login for missing user", func(t *testing.T) {
		s.UserLogins.Add(&entity.UserLogin{LoginProvider: "google", ProviderKey: "x", UserID: u.ID + 100})
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrForeignKeyViolation)
	})
	t.Run("duplicate email", func(t *testing.T) {
		other := entity.NewUser("grace")
		other.Email = "FRANK@example.com"
		s.Users.Add(other)
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrDuplicateKey)
	})
	t.Run("negative access failed count", func(t *testing.T) {
		c := *u
		c.AccessFailedCount = -1
		s.Users.Update(&c)
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrCheckViolation)
	})
	t.Run("blank user name", func(t *testing.T) {
		c := *u
		c.UserName = "  "
		s.Users.Update(&c)
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrCheckViolation)
	})
	t.Run("blank role name", func(t *testing.T) {
		s.Roles.Add(&entity.Role{Name: ""})
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrCheckViolation)
	})
	t.Run("update of missing row", func(t *testing.T) {
		s.Roles.Update(&entity.Role{ID: 999, Name: "ghost"})
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), repository.ErrNoRowsAffected)
	})
	t.Run("duplicate membership", func(t *testing.T) {
		role := &entity.Role{Name: "admin"}
		s.Roles.Add(role)
		require.NoError(t, s.UnitOfWork.SaveChanges(ctx))
		s.UserRoles.Add(&entity.UserRole{UserID: u.ID, RoleID: role.ID})
		s.UserRoles.Add(&entity.UserRole{UserID: u.ID, RoleID: role.ID})
		assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrDuplicateKey)
	})
}

func TestColumnLengthLimits(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "mallory", "")

	// limits count characters, not bytes
	atLimit := entity.NewUser(strings.Repeat("é", 256))
	s.Users.Add(atLimit)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	tests := []struct {
		name  string
		stage func()
	}{
		{"user name", func() { s.Users.Add(entity.NewUser(strings.Repeat("a", 257))) }},
		{"email", func() {
			c := *u
			c.Email = strings.Repeat("a", 251) + "@x.com"
			s.Users.Update(&c)
		}},
		{"role name", func() { s.Roles.Add(&entity.Role{Name: strings.Repeat("r", 257)}) }},
		{"login provider", func() {
			s.UserLogins.Add(&entity.UserLogin{LoginProvider: strings.Repeat("p", 129), ProviderKey: "k", UserID: u.ID})
		}},
		{"provider key", func() {
			s.UserLogins.Add(&entity.UserLogin{LoginProvider: "github", ProviderKey: strings.Repeat("k", 129), UserID: u.ID})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.stage()
			assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrValueTooLong)
		})
	}
}

func TestAbortedCommitReusesIDs(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	first := addUser(t, s, "nina", "")

	s.Users.Add(entity.NewUser("oscar"))
	s.Users.Add(entity.NewUser("NINA"))
	require.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), ErrDuplicateKey)

	next := addUser(t, s, "oscar", "")
	assert.Equal(t, first.ID+1, next.ID)
}

func TestIncrementAccessFailedCount(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "heidi", "")

	s.Users.IncrementAccessFailedCount(u)
	s.Users.IncrementAccessFailedCount(u)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))
	assert.Equal(t, 2, u.AccessFailedCount)

	got, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AccessFailedCount)
}

func TestLockoutEndIsDetached(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "ivan", "")

	end := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	u.LockoutEndDateUTC = &end
	s.Users.Update(u)
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))
	end = end.Add(time.Hour)

	got, err := s.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockoutEndDateUTC)
	assert.True(t, got.LockoutEndDateUTC.Equal(time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestRemoveByProviderIgnoresKey(t *testing.T) {
	ctx := context.Background()
	s := NewScope(NewDB())
	u := addUser(t, s, "judy", "")
	s.UserLogins.Add(&entity.UserLogin{LoginProvider: "github", ProviderKey: "a", UserID: u.ID})
	s.UserLogins.Add(&entity.UserLogin{LoginProvider: "github", ProviderKey: "b", UserID: u.ID})
	s.UserLogins.Add(&entity.UserLogin{LoginProvider: "google", ProviderKey: "c", UserID: u.ID})
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	s.UserLogins.RemoveByProvider(u.ID, "github")
	require.NoError(t, s.UnitOfWork.SaveChanges(ctx))

	logins, err := s.UserLogins.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, logins, 1)
	assert.Equal(t, "google", logins[0].LoginProvider)
}

func TestSessionFactory(t *testing.T) {
	f := NewSessionFactory(NewDB())
	first := f.Init()
	assert.Same(t, first, f.Init())

	NewUserRepository(f).Add(entity.NewUser("kim"))
	assert.Equal(t, 1, first.Pending())

	require.NoError(t, f.Close())
	assert.Equal(t, 0, first.Pending())
	assert.NotSame(t, first, f.Init())
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScope(NewDB())

	_, err := s.Users.GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	s.Users.Add(entity.NewUser("leo"))
	assert.ErrorIs(t, s.UnitOfWork.SaveChanges(ctx), context.Canceled)
}
