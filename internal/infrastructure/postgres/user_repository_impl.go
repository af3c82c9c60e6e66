package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

const userColumns = `id, user_name, COALESCE(email, ''), email_confirmed, COALESCE(password_hash, ''),
	COALESCE(security_stamp, ''), COALESCE(phone_number, ''), phone_number_confirmed, two_factor_enabled,
	lockout_end_date_utc, lockout_enabled, access_failed_count, created_at`

type UserRepository struct {
	factory *SessionFactory
}

func NewUserRepository(factory *SessionFactory) *UserRepository {
	return &UserRepository{factory: factory}
}

func (r *UserRepository) Add(u *entity.User) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	var id int64
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				INSERT INTO users (user_name, email, email_confirmed, password_hash, security_stamp, phone_number,
					phone_number_confirmed, two_factor_enabled, lockout_end_date_utc, lockout_enabled,
					access_failed_count, created_at)
				VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12)
				RETURNING id
			`, u.UserName, u.Email, u.EmailConfirmed, u.PasswordHash, u.SecurityStamp, u.PhoneNumber,
				u.PhoneNumberConfirmed, u.TwoFactorEnabled, u.LockoutEndDateUTC, u.LockoutEnabled,
				u.AccessFailedCount, u.CreatedAt,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&id)
			})
		},
		done: func() { u.ID = id },
	})
}

func (r *UserRepository) Update(u *entity.User) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				UPDATE users
				SET user_name = $1, email = NULLIF($2, ''), email_confirmed = $3, password_hash = NULLIF($4, ''),
					security_stamp = NULLIF($5, ''), phone_number = NULLIF($6, ''), phone_number_confirmed = $7,
					two_factor_enabled = $8, lockout_end_date_utc = $9, lockout_enabled = $10, access_failed_count = $11
				WHERE id = $12
			`, u.UserName, u.Email, u.EmailConfirmed, u.PasswordHash, u.SecurityStamp, u.PhoneNumber,
				u.PhoneNumberConfirmed, u.TwoFactorEnabled, u.LockoutEndDateUTC, u.LockoutEnabled,
				u.AccessFailedCount, u.ID,
			).Exec(expectRows)
		},
	})
}

func (r *UserRepository) Remove(u *entity.User) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM users WHERE id = $1`, u.ID).Exec(expectRows)
		},
	})
}

func (r *UserRepository) IncrementAccessFailedCount(u *entity.User) {
	var count int
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				UPDATE users SET access_failed_count = access_failed_count + 1
				WHERE id = $1
				RETURNING access_failed_count
			`, u.ID).QueryRow(func(row pgx.Row) error {
				if err := row.Scan(&count); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return repository.ErrNoRowsAffected
					}
					return err
				}
				return nil
			})
		},
		done: func() { u.AccessFailedCount = count },
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*entity.User, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE UPPER(user_name) = UPPER($1)
		LIMIT 1
	`, name)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE UPPER(email) = UPPER($1)
		LIMIT 1
	`, email)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.EmailConfirmed, &u.PasswordHash,
		&u.SecurityStamp, &u.PhoneNumber, &u.PhoneNumberConfirmed, &u.TwoFactorEnabled,
		&u.LockoutEndDateUTC, &u.LockoutEnabled, &u.AccessFailedCount, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if u.LockoutEndDateUTC != nil {
		t := u.LockoutEndDateUTC.UTC()
		u.LockoutEndDateUTC = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// expectRows fails the batch when a single-entity update or delete matched nothing.
func expectRows(ct pgconn.CommandTag) error {
	if ct.RowsAffected() == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
