package application

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/identity"
	"github.com/oksasatya/go-ddd-identity/pkg/helpers"
	"github.com/oksasatya/go-ddd-identity/pkg/mailer"
	"github.com/oksasatya/go-ddd-identity/pkg/validation"
)

// PasswordHasher is satisfied by helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

type SignInResult int

const (
	SignInFailed SignInResult = iota
	SignInSucceeded
	SignInLockedOut
	SignInRequiresTwoFactor
)

func (r SignInResult) String() string {
	switch r {
	case SignInSucceeded:
		return "succeeded"
	case SignInLockedOut:
		return "locked out"
	case SignInRequiresTwoFactor:
		return "requires two-factor"
	default:
		return "failed"
	}
}

type CreateUserInput struct {
	UserName    string `json:"user_name" validate:"required,max=256"`
	Email       string `json:"email" validate:"omitempty,email,max=256"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,phone"`
	Password    string `json:"password" validate:"strongpwd"`
}

// UserManager applies account policies on top of a user store.
type UserManager struct {
	Store    identity.FullUserStore
	Hasher   PasswordHasher
	Codes    CodeStore
	Sender   CodeSender
	Options  Options
	Validate *validator.Validate
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewUserManager(store identity.FullUserStore, hasher PasswordHasher, codes CodeStore, sender CodeSender, opts Options, logger *logrus.Logger) *UserManager {
	return &UserManager{
		Store:    store,
		Hasher:   hasher,
		Codes:    codes,
		Sender:   sender,
		Options:  opts,
		Validate: validation.New(opts.Password),
		Logger:   logger,
		Now:      time.Now,
	}
}

func (m *UserManager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

// CreateUser validates in, enforces unique user name (and e-mail when
// required) and stores the new user with a hashed password.
func (m *UserManager) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = strings.TrimSpace(in.Email)
	if err := m.Validate.Struct(in); err != nil {
		return nil, &ValidationError{Details: validation.ToDetails(err)}
	}
	if m.Options.RequireUniqueEmail && in.Email == "" {
		return nil, invalid("email", "is required")
	}

	existing, err := m.Store.FindByName(ctx, in.UserName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUserName
	}
	if m.Options.RequireUniqueEmail {
		existing, err = m.Store.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateEmail
		}
	}

	hash, err := m.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := entity.NewUser(in.UserName)
	u.Email = in.Email
	u.PhoneNumber = in.PhoneNumber
	u.PasswordHash = hash
	u.SecurityStamp = uuid.NewString()
	u.LockoutEnabled = m.Options.LockoutEnabledByDefault
	if err := m.Store.Create(ctx, u); err != nil {
		return nil, err
	}
	if m.Logger != nil {
		m.Logger.WithField("user_id", u.ID).Info("user created")
	}
	return u, nil
}

func (m *UserManager) FindByName(ctx context.Context, userName string) (*entity.User, error) {
	u, err := m.Store.FindByName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *UserManager) CheckPassword(ctx context.Context, u *entity.User, password string) (bool, error) {
	hash, err := m.Store.GetPasswordHash(ctx, u)
	if err != nil {
		return false, err
	}
	return m.Hasher.Compare(hash, password), nil
}

// IsLockedOut reports whether lockout is enabled for u and its end lies in
// the future.
func (m *UserManager) IsLockedOut(ctx context.Context, u *entity.User) (bool, error) {
	enabled, err := m.Store.GetLockoutEnabled(ctx, u)
	if err != nil || !enabled {
		return false, err
	}
	end, err := m.Store.GetLockoutEndDate(ctx, u)
	if err != nil {
		return false, err
	}
	return !end.Equal(identity.NoLockout) && end.After(m.now()), nil
}

// AccessFailed records a failed attempt. Reaching the configured maximum
// locks the account and resets the counter.
func (m *UserManager) AccessFailed(ctx context.Context, u *entity.User) error {
	count, err := m.Store.IncrementAccessFailedCount(ctx, u)
	if err != nil {
		return err
	}
	enabled, err := m.Store.GetLockoutEnabled(ctx, u)
	if err != nil || !enabled || count < m.Options.MaxFailedAccessAttempts {
		return err
	}
	end := m.now().Add(m.Options.DefaultLockoutTimeSpan)
	if err := m.Store.SetLockoutEndDate(ctx, u, end); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{"user_id": u.ID, "until": end}).Warn("user locked out")
	}
	return m.Store.ResetAccessFailedCount(ctx, u)
}

// Unlock clears the lockout end and the failed-attempt counter.
func (m *UserManager) Unlock(ctx context.Context, u *entity.User) error {
	if err := m.Store.SetLockoutEndDate(ctx, u, identity.NoLockout); err != nil {
		return err
	}
	return m.Store.ResetAccessFailedCount(ctx, u)
}

// PasswordSignIn checks userName/password against the lockout policy.
// Unknown users and wrong passwords both yield SignInFailed.
func (m *UserManager) PasswordSignIn(ctx context.Context, userName, password string) (SignInResult, error) {
	if userName == "" {
		return SignInFailed, nil
	}
	u, err := m.Store.FindByName(ctx, userName)
	if err != nil || u == nil {
		return SignInFailed, err
	}
	locked, err := m.IsLockedOut(ctx, u)
	if err != nil {
		return SignInFailed, err
	}
	if locked {
		return SignInLockedOut, nil
	}

	ok, err := m.CheckPassword(ctx, u, password)
	if err != nil {
		return SignInFailed, err
	}
	if !ok {
		if m.Logger != nil {
			m.Logger.WithField("user_id", u.ID).Info("password sign-in failed")
		}
		if err := m.AccessFailed(ctx, u); err != nil {
			return SignInFailed, err
		}
		if locked, err = m.IsLockedOut(ctx, u); err != nil {
			return SignInFailed, err
		}
		if locked {
			return SignInLockedOut, nil
		}
		return SignInFailed, nil
	}

	if count, err := m.Store.GetAccessFailedCount(ctx, u); err != nil {
		return SignInFailed, err
	} else if count > 0 {
		if err := m.Store.ResetAccessFailedCount(ctx, u); err != nil {
			return SignInFailed, err
		}
	}
	twoFactor, err := m.Store.GetTwoFactorEnabled(ctx, u)
	if err != nil {
		return SignInFailed, err
	}
	if twoFactor {
		return SignInRequiresTwoFactor, nil
	}
	return SignInSucceeded, nil
}

// ChangePassword replaces the password after verifying the current one and
// issues a new security stamp.
func (m *UserManager) ChangePassword(ctx context.Context, u *entity.User, current, next string) error {
	ok, err := m.CheckPassword(ctx, u, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPasswordMismatch
	}
	if err := m.Validate.Var(next, "strongpwd"); err != nil {
		details := validation.ToDetails(err)
		return invalid("password", details["value"])
	}
	hash, err := m.Hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := m.Store.SetPasswordHash(ctx, u, hash); err != nil {
		return err
	}
	return m.Store.SetSecurityStamp(ctx, u, uuid.NewString())
}

// codeDestination resolves where provider delivers codes for u.
func (m *UserManager) codeDestination(ctx context.Context, u *entity.User, provider string) (mailer.CodeJob, error) {
	job := mailer.CodeJob{Provider: provider}
	switch provider {
	case ProviderPhoneCode:
		phone, err := m.Store.GetPhoneNumber(ctx, u)
		if err != nil {
			return job, err
		}
		job.Channel, job.Destination = mailer.ChannelSMS, phone
	case ProviderEmailCode:
		email, err := m.Store.GetEmail(ctx, u)
		if err != nil {
			return job, err
		}
		job.Channel, job.Destination, job.Subject = mailer.ChannelEmail, email, CodeEmailSubject
	default:
		return job, ErrUnknownTwoFactorProvider
	}
	if job.Destination == "" {
		return job, ErrNoTwoFactorDestination
	}
	return job, nil
}

// GenerateTwoFactorCode issues a code for provider, keeps it for the
// configured lifetime and hands it to the sender.
func (m *UserManager) GenerateTwoFactorCode(ctx context.Context, u *entity.User, provider string) error {
	if u == nil {
		return ErrUserNotFound
	}
	job, err := m.codeDestination(ctx, u, provider)
	if err != nil {
		return err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := m.Codes.Save(ctx, helpers.KeyTwoFactorCode(u.ID, provider), code, m.Options.TwoFactorCodeLifetime); err != nil {
		return err
	}
	job.UserID = u.ID
	job.Text = mailer.RenderCode(CodeMessage, code)
	if err := m.Sender.Send(ctx, job); err != nil {
		return err
	}
	if m.Logger != nil {
		m.Logger.WithFields(logrus.Fields{"user_id": u.ID, "provider": provider}).Info("two-factor code issued")
	}
	return nil
}

// VerifyTwoFactorCode consumes the pending code for provider. A code
// verifies at most once.
func (m *UserManager) VerifyTwoFactorCode(ctx context.Context, u *entity.User, provider, code string) (bool, error) {
	if u == nil {
		return false, ErrUserNotFound
	}
	key := helpers.KeyTwoFactorCode(u.ID, provider)
	pending, ok, err := m.Codes.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if subtle.ConstantTimeCompare([]byte(pending), []byte(strings.TrimSpace(code))) != 1 {
		return false, nil
	}
	return true, m.Codes.Delete(ctx, key)
}
