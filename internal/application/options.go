package application

import (
	"time"

	"github.com/oksasatya/go-ddd-identity/config"
	"github.com/oksasatya/go-ddd-identity/pkg/validation"
)

const (
	ProviderPhoneCode = "Phone Code"
	ProviderEmailCode = "Email Code"

	CodeEmailSubject = "Security Code"
	CodeMessage      = "Your security code is {code}"
)

// Options holds the user manager policies.
type Options struct {
	RequireUniqueEmail bool
	Password           validation.PasswordPolicy

	LockoutEnabledByDefault bool
	MaxFailedAccessAttempts int
	DefaultLockoutTimeSpan  time.Duration
	TwoFactorCodeLifetime   time.Duration
}

func DefaultOptions() Options {
	return Options{
		RequireUniqueEmail: true,
		Password: validation.PasswordPolicy{
			MinLength:        6,
			RequireNonAlnum:  true,
			RequireDigit:     true,
			RequireLowercase: true,
			RequireUppercase: true,
		},
		LockoutEnabledByDefault: true,
		MaxFailedAccessAttempts: 5,
		DefaultLockoutTimeSpan:  5 * time.Minute,
		TwoFactorCodeLifetime:   5 * time.Minute,
	}
}

// OptionsFromConfig overlays the configured policy values on DefaultOptions.
func OptionsFromConfig(cfg *config.Config) Options {
	o := DefaultOptions()
	o.RequireUniqueEmail = cfg.RequireUniqueEmail
	if cfg.PasswordMinLength > 0 {
		o.Password.MinLength = cfg.PasswordMinLength
	}
	o.LockoutEnabledByDefault = cfg.LockoutEnabledByDefault
	if cfg.LockoutMaxFailedAttempts > 0 {
		o.MaxFailedAccessAttempts = cfg.LockoutMaxFailedAttempts
	}
	if cfg.LockoutDuration > 0 {
		o.DefaultLockoutTimeSpan = cfg.LockoutDuration
	}
	if cfg.TwoFactorCodeTTL > 0 {
		o.TwoFactorCodeLifetime = cfg.TwoFactorCodeTTL
	}
	return o
}
