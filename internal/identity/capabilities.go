// Package identity adapts the entity repositories and unit of work to the
// store capabilities an authentication manager consumes. Each capability is
// a narrow interface; UserStore implements all of them and RoleStore covers
// role CRUD. Every mutating method stages its changes and commits once.
package identity

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

// NoLockout is the lockout-end value meaning "not locked out". It is never
// stored; the store keeps a NULL instead.
var NoLockout = time.Time{}

// Users is basic user CRUD.
type Users interface {
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByName(ctx context.Context, userName string) (*entity.User, error)
}

type LoginStore interface {
	AddLogin(ctx context.Context, u *entity.User, login entity.LoginInfo) error
	RemoveLogin(ctx context.Context, u *entity.User, login entity.LoginInfo) error
	GetLogins(ctx context.Context, u *entity.User) ([]entity.LoginInfo, error)
	FindByLogin(ctx context.Context, login entity.LoginInfo) (*entity.User, error)
}

type ClaimStore interface {
	GetClaims(ctx context.Context, u *entity.User) ([]entity.Claim, error)
	AddClaim(ctx context.Context, u *entity.User, c entity.Claim) error
	RemoveClaim(ctx context.Context, u *entity.User, c entity.Claim) error
}

type UserRoleStore interface {
	AddToRole(ctx context.Context, u *entity.User, roleName string) error
	RemoveFromRole(ctx context.Context, u *entity.User, roleName string) error
	GetRoles(ctx context.Context, u *entity.User) ([]string, error)
	IsInRole(ctx context.Context, u *entity.User, roleName string) (bool, error)
}

type PasswordStore interface {
	SetPasswordHash(ctx context.Context, u *entity.User, passwordHash string) error
	GetPasswordHash(ctx context.Context, u *entity.User) (string, error)
	HasPassword(ctx context.Context, u *entity.User) (bool, error)
}

type SecurityStampStore interface {
	SetSecurityStamp(ctx context.Context, u *entity.User, stamp string) error
	GetSecurityStamp(ctx context.Context, u *entity.User) (string, error)
}

type EmailStore interface {
	SetEmail(ctx context.Context, u *entity.User, email string) error
	GetEmail(ctx context.Context, u *entity.User) (string, error)
	GetEmailConfirmed(ctx context.Context, u *entity.User) (bool, error)
	SetEmailConfirmed(ctx context.Context, u *entity.User, confirmed bool) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type PhoneNumberStore interface {
	SetPhoneNumber(ctx context.Context, u *entity.User, phoneNumber string) error
	GetPhoneNumber(ctx context.Context, u *entity.User) (string, error)
	GetPhoneNumberConfirmed(ctx context.Context, u *entity.User) (bool, error)
	SetPhoneNumberConfirmed(ctx context.Context, u *entity.User, confirmed bool) error
}

type TwoFactorStore interface {
	SetTwoFactorEnabled(ctx context.Context, u *entity.User, enabled bool) error
	GetTwoFactorEnabled(ctx context.Context, u *entity.User) (bool, error)
}

type LockoutStore interface {
	// GetLockoutEndDate returns NoLockout when no lockout end is stored.
	GetLockoutEndDate(ctx context.Context, u *entity.User) (time.Time, error)
	// SetLockoutEndDate stores end in UTC, or clears it when end is NoLockout.
	SetLockoutEndDate(ctx context.Context, u *entity.User, end time.Time) error
	IncrementAccessFailedCount(ctx context.Context, u *entity.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, u *entity.User) error
	GetAccessFailedCount(ctx context.Context, u *entity.User) (int, error)
	GetLockoutEnabled(ctx context.Context, u *entity.User) (bool, error)
	SetLockoutEnabled(ctx context.Context, u *entity.User, enabled bool) error
}

// FullUserStore is the composition implemented by *UserStore.
type FullUserStore interface {
	Users
	LoginStore
	ClaimStore
	UserRoleStore
	PasswordStore
	SecurityStampStore
	EmailStore
	PhoneNumberStore
	TwoFactorStore
	LockoutStore
	Close() error
}

type Roles interface {
	Create(ctx context.Context, r *entity.Role) error
	Update(ctx context.Context, r *entity.Role) error
	Delete(ctx context.Context, r *entity.Role) error
	FindByID(ctx context.Context, id int64) (*entity.Role, error)
	FindByName(ctx context.Context, roleName string) (*entity.Role, error)
	// FindByStringID parses id as a decimal role key.
	FindByStringID(ctx context.Context, id string) (*entity.Role, error)
	Close() error
}
