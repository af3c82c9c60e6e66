package identity

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

// UserStore maps the user capabilities onto the user, login, claim,
// user-role and role repositories. It is meant for one request and must not
// be used from several goroutines at once.
type UserStore struct {
	uow       repository.UnitOfWork
	users     repository.UserRepository
	logins    repository.UserLoginRepository
	claims    repository.UserClaimRepository
	userRoles repository.UserRoleRepository
	roles     repository.RoleRepository
	disposed  bool
}

func NewUserStore(uow repository.UnitOfWork, users repository.UserRepository, logins repository.UserLoginRepository,
	claims repository.UserClaimRepository, userRoles repository.UserRoleRepository, roles repository.RoleRepository) *UserStore {
	return &UserStore{
		uow:       uow,
		users:     users,
		logins:    logins,
		claims:    claims,
		userRoles: userRoles,
		roles:     roles,
	}
}

func (s *UserStore) ready() error {
	if s.disposed {
		return disposedError("UserStore")
	}
	return nil
}

// Close drops the store's collaborators. Later calls fail with ErrObjectDisposed.
func (s *UserStore) Close() error {
	if s.disposed {
		return nil
	}
	s.uow = nil
	s.users = nil
	s.logins = nil
	s.claims = nil
	s.userRoles = nil
	s.roles = nil
	s.disposed = true
	return nil
}

// mutate runs the shared guard for single-user writes and commits after stage.
func (s *UserStore) mutate(ctx context.Context, u *entity.User, stage func()) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	stage()
	return s.uow.SaveChanges(ctx)
}

// setField applies a field change to u and persists the whole user row.
func (s *UserStore) setField(ctx context.Context, u *entity.User, apply func(u *entity.User)) error {
	return s.mutate(ctx, u, func() {
		apply(u)
		s.users.Update(u)
	})
}

// read guards pure field reads, which need no session.
func read[T any](u *entity.User, get func(u *entity.User) T) (T, error) {
	if u == nil {
		var zero T
		return zero, argumentError("user")
	}
	return get(u), nil
}

// users

func (s *UserStore) Create(ctx context.Context, u *entity.User) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if strings.TrimSpace(u.UserName) == "" {
		return argumentError("user.UserName")
	}
	s.users.Add(u)
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) Update(ctx context.Context, u *entity.User) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if strings.TrimSpace(u.UserName) == "" {
		return argumentError("user.UserName")
	}
	s.users.Update(u)
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) Delete(ctx context.Context, u *entity.User) error {
	return s.mutate(ctx, u, func() { s.users.Remove(u) })
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserStore) FindByName(ctx context.Context, userName string) (*entity.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userName) == "" {
		return nil, argumentError("userName")
	}
	return s.users.FindByName(ctx, userName)
}

// logins

func (s *UserStore) AddLogin(ctx context.Context, u *entity.User, login entity.LoginInfo) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if login.LoginProvider == "" || login.ProviderKey == "" {
		return argumentError("login")
	}
	s.logins.Add(&entity.UserLogin{LoginProvider: login.LoginProvider, ProviderKey: login.ProviderKey, UserID: u.ID})
	return s.uow.SaveChanges(ctx)
}

// RemoveLogin deletes the user's logins from login.LoginProvider. The match
// ignores ProviderKey, so every key the user holds at that provider goes.
// This keeps the historical contract of the store.
func (s *UserStore) RemoveLogin(ctx context.Context, u *entity.User, login entity.LoginInfo) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if login.LoginProvider == "" {
		return argumentError("login")
	}
	s.logins.RemoveByProvider(u.ID, login.LoginProvider)
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) GetLogins(ctx context.Context, u *entity.User) ([]entity.LoginInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, argumentError("user")
	}
	rows, err := s.logins.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.LoginInfo, 0, len(rows))
	for _, l := range rows {
		out = append(out, entity.LoginInfo{LoginProvider: l.LoginProvider, ProviderKey: l.ProviderKey})
	}
	return out, nil
}

func (s *UserStore) FindByLogin(ctx context.Context, login entity.LoginInfo) (*entity.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if login.LoginProvider == "" || login.ProviderKey == "" {
		return nil, argumentError("login")
	}
	l, err := s.logins.FindByLogin(ctx, login.LoginProvider, login.ProviderKey)
	if err != nil || l == nil {
		return nil, err
	}
	return s.users.GetByID(ctx, l.UserID)
}

// claims

func (s *UserStore) GetClaims(ctx context.Context, u *entity.User) ([]entity.Claim, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, argumentError("user")
	}
	rows, err := s.claims.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Claim, 0, len(rows))
	for _, c := range rows {
		out = append(out, entity.Claim{Type: c.ClaimType, Value: c.ClaimValue})
	}
	return out, nil
}

func (s *UserStore) AddClaim(ctx context.Context, u *entity.User, c entity.Claim) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if c.Type == "" {
		return argumentError("claim")
	}
	s.claims.Add(&entity.UserClaim{UserID: u.ID, ClaimType: c.Type, ClaimValue: c.Value})
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) RemoveClaim(ctx context.Context, u *entity.User, c entity.Claim) error {
	if err := s.ready(); err != nil {
		return err
	}
	if u == nil {
		return argumentError("user")
	}
	if c.Type == "" {
		return argumentError("claim")
	}
	s.claims.RemoveMatching(u.ID, c)
	return s.uow.SaveChanges(ctx)
}

// roles

// role validates a membership call and resolves roleName.
func (s *UserStore) role(ctx context.Context, u *entity.User, roleName string) (*entity.Role, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, argumentError("user")
	}
	if strings.TrimSpace(roleName) == "" {
		return nil, argumentError("roleName")
	}
	r, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errRoleNotFound
	}
	return r, nil
}

func (s *UserStore) AddToRole(ctx context.Context, u *entity.User, roleName string) error {
	r, err := s.role(ctx, u, roleName)
	if err != nil {
		return err
	}
	s.userRoles.Add(&entity.UserRole{UserID: u.ID, RoleID: r.ID})
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) RemoveFromRole(ctx context.Context, u *entity.User, roleName string) error {
	r, err := s.role(ctx, u, roleName)
	if err != nil {
		return err
	}
	s.userRoles.RemoveByUserAndRole(u.ID, r.ID)
	return s.uow.SaveChanges(ctx)
}

func (s *UserStore) GetRoles(ctx context.Context, u *entity.User) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, argumentError("user")
	}
	return s.roles.GetRoleNamesByUserID(ctx, u.ID)
}

func (s *UserStore) IsInRole(ctx context.Context, u *entity.User, roleName string) (bool, error) {
	r, err := s.role(ctx, u, roleName)
	if err != nil {
		return false, err
	}
	return s.userRoles.IsInRole(ctx, u.ID, r.ID)
}

// password and security stamp

func (s *UserStore) SetPasswordHash(ctx context.Context, u *entity.User, passwordHash string) error {
	return s.setField(ctx, u, func(u *entity.User) { u.PasswordHash = passwordHash })
}

func (s *UserStore) GetPasswordHash(_ context.Context, u *entity.User) (string, error) {
	return read(u, func(u *entity.User) string { return u.PasswordHash })
}

func (s *UserStore) HasPassword(_ context.Context, u *entity.User) (bool, error) {
	return read(u, func(u *entity.User) bool { return u.PasswordHash != "" })
}

func (s *UserStore) SetSecurityStamp(ctx context.Context, u *entity.User, stamp string) error {
	return s.setField(ctx, u, func(u *entity.User) { u.SecurityStamp = stamp })
}

func (s *UserStore) GetSecurityStamp(_ context.Context, u *entity.User) (string, error) {
	return read(u, func(u *entity.User) string { return u.SecurityStamp })
}

// email

func (s *UserStore) SetEmail(ctx context.Context, u *entity.User, email string) error {
	return s.setField(ctx, u, func(u *entity.User) { u.Email = email })
}

func (s *UserStore) GetEmail(_ context.Context, u *entity.User) (string, error) {
	return read(u, func(u *entity.User) string { return u.Email })
}

func (s *UserStore) GetEmailConfirmed(_ context.Context, u *entity.User) (bool, error) {
	return read(u, func(u *entity.User) bool { return u.EmailConfirmed })
}

func (s *UserStore) SetEmailConfirmed(ctx context.Context, u *entity.User, confirmed bool) error {
	return s.setField(ctx, u, func(u *entity.User) { u.EmailConfirmed = confirmed })
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		return nil, argumentError("email")
	}
	return s.users.FindByEmail(ctx, email)
}

// phone

func (s *UserStore) SetPhoneNumber(ctx context.Context, u *entity.User, phoneNumber string) error {
	return s.setField(ctx, u, func(u *entity.User) { u.PhoneNumber = phoneNumber })
}

func (s *UserStore) GetPhoneNumber(_ context.Context, u *entity.User) (string, error) {
	return read(u, func(u *entity.User) string { return u.PhoneNumber })
}

func (s *UserStore) GetPhoneNumberConfirmed(_ context.Context, u *entity.User) (bool, error) {
	return read(u, func(u *entity.User) bool { return u.PhoneNumberConfirmed })
}

func (s *UserStore) SetPhoneNumberConfirmed(ctx context.Context, u *entity.User, confirmed bool) error {
	return s.setField(ctx, u, func(u *entity.User) { u.PhoneNumberConfirmed = confirmed })
}

// two-factor

func (s *UserStore) SetTwoFactorEnabled(ctx context.Context, u *entity.User, enabled bool) error {
	return s.setField(ctx, u, func(u *entity.User) { u.TwoFactorEnabled = enabled })
}

func (s *UserStore) GetTwoFactorEnabled(_ context.Context, u *entity.User) (bool, error) {
	return read(u, func(u *entity.User) bool { return u.TwoFactorEnabled })
}

// lockout

func (s *UserStore) GetLockoutEndDate(_ context.Context, u *entity.User) (time.Time, error) {
	return read(u, func(u *entity.User) time.Time {
		if u.LockoutEndDateUTC == nil {
			return NoLockout
		}
		return u.LockoutEndDateUTC.UTC()
	})
}

func (s *UserStore) SetLockoutEndDate(ctx context.Context, u *entity.User, end time.Time) error {
	return s.setField(ctx, u, func(u *entity.User) {
		if end.Equal(NoLockout) {
			u.LockoutEndDateUTC = nil
			return
		}
		utc := end.UTC()
		u.LockoutEndDateUTC = &utc
	})
}

// IncrementAccessFailedCount increments the counter in storage and returns
// the committed value, which is also written back to u.
func (s *UserStore) IncrementAccessFailedCount(ctx context.Context, u *entity.User) (int, error) {
	if err := s.mutate(ctx, u, func() { s.users.IncrementAccessFailedCount(u) }); err != nil {
		return 0, err
	}
	return u.AccessFailedCount, nil
}

func (s *UserStore) ResetAccessFailedCount(ctx context.Context, u *entity.User) error {
	return s.setField(ctx, u, func(u *entity.User) { u.AccessFailedCount = 0 })
}

func (s *UserStore) GetAccessFailedCount(_ context.Context, u *entity.User) (int, error) {
	return read(u, func(u *entity.User) int { return u.AccessFailedCount })
}

func (s *UserStore) GetLockoutEnabled(_ context.Context, u *entity.User) (bool, error) {
	return read(u, func(u *entity.User) bool { return u.LockoutEnabled })
}

func (s *UserStore) SetLockoutEnabled(ctx context.Context, u *entity.User, enabled bool) error {
	return s.setField(ctx, u, func(u *entity.User) { u.LockoutEnabled = enabled })
}

var _ FullUserStore = (*UserStore)(nil)
