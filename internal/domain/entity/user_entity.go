package entity

import (
	"time"
)

// User is the aggregate root for the identity domain.
// UserLogin, UserClaim and UserRole rows reference it by ID.
//
// Empty strings stand for absent optional values (email, phone, hashes);
// the storage layer maps them to NULL.
type User struct {
	ID                   int64
	UserName             string
	Email                string
	EmailConfirmed       bool
	PasswordHash         string
	SecurityStamp        string
	PhoneNumber          string
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool
	// LockoutEndDateUTC is nil when the user is not locked out.
	LockoutEndDateUTC *time.Time
	LockoutEnabled    bool
	AccessFailedCount int
	CreatedAt         time.Time
}

// NewUser returns a user with its creation timestamp set.
func NewUser(userName string) *User {
	return &User{UserName: userName, CreatedAt: time.Now().UTC()}
}
