package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type UserLoginRepository struct {
	factory *SessionFactory
}

func NewUserLoginRepository(factory *SessionFactory) *UserLoginRepository {
	return &UserLoginRepository{factory: factory}
}

func (r *UserLoginRepository) Add(l *entity.UserLogin) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				INSERT INTO user_logins (login_provider, provider_key, user_id)
				VALUES ($1, $2, $3)
			`, l.LoginProvider, l.ProviderKey, l.UserID)
		},
	})
}

// Update has no non-key column to write; it only asserts the row exists.
func (r *UserLoginRepository) Update(l *entity.UserLogin) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				UPDATE user_logins SET user_id = $3
				WHERE login_provider = $1 AND provider_key = $2 AND user_id = $3
			`, l.LoginProvider, l.ProviderKey, l.UserID).Exec(expectRows)
		},
	})
}

func (r *UserLoginRepository) Remove(l *entity.UserLogin) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				DELETE FROM user_logins
				WHERE login_provider = $1 AND provider_key = $2 AND user_id = $3
			`, l.LoginProvider, l.ProviderKey, l.UserID).Exec(expectRows)
		},
	})
}

func (r *UserLoginRepository) RemoveByProvider(userID int64, loginProvider string) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM user_logins WHERE user_id = $1 AND login_provider = $2`, userID, loginProvider)
		},
	})
}

func (r *UserLoginRepository) GetByID(ctx context.Context, key entity.UserLoginKey) (*entity.UserLogin, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `
		SELECT login_provider, provider_key, user_id
		FROM user_logins
		WHERE login_provider = $1 AND provider_key = $2 AND user_id = $3
	`, key.LoginProvider, key.ProviderKey, key.UserID)
	return scanUserLogin(row)
}

func (r *UserLoginRepository) GetByUserID(ctx context.Context, userID int64) ([]entity.UserLogin, error) {
	rows, err := r.factory.Init().querier().Query(ctx, `
		SELECT login_provider, provider_key, user_id
		FROM user_logins
		WHERE user_id = $1
		ORDER BY login_provider, provider_key
	`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserLogin, error) {
		var l entity.UserLogin
		err := row.Scan(&l.LoginProvider, &l.ProviderKey, &l.UserID)
		return l, err
	})
}

func (r *UserLoginRepository) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*entity.UserLogin, error) {
	row := r.factory.Init().querier().QueryRow(ctx, `
		SELECT login_provider, provider_key, user_id
		FROM user_logins
		WHERE login_provider = $1 AND provider_key = $2
		LIMIT 1
	`, loginProvider, providerKey)
	return scanUserLogin(row)
}

func scanUserLogin(row pgx.Row) (*entity.UserLogin, error) {
	l := &entity.UserLogin{}
	if err := row.Scan(&l.LoginProvider, &l.ProviderKey, &l.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

var _ repository.UserLoginRepository = (*UserLoginRepository)(nil)
