package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type UserClaimRepository struct {
	factory *SessionFactory
}

func NewUserClaimRepository(factory *SessionFactory) *UserClaimRepository {
	return &UserClaimRepository{factory: factory}
}

func (r *UserClaimRepository) Add(c *entity.UserClaim) {
	var id int64
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				INSERT INTO user_claims (user_id, claim_type, claim_value)
				VALUES ($1, $2, $3)
				RETURNING id
			`, c.UserID, c.ClaimType, c.ClaimValue).QueryRow(func(row pgx.Row) error { return row.Scan(&id) })
		},
		done: func() { c.ID = id },
	})
}

func (r *UserClaimRepository) Update(c *entity.UserClaim) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				UPDATE user_claims SET user_id = $1, claim_type = $2, claim_value = $3
				WHERE id = $4
			`, c.UserID, c.ClaimType, c.ClaimValue, c.ID).Exec(expectRows)
		},
	})
}

func (r *UserClaimRepository) Remove(c *entity.UserClaim) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`DELETE FROM user_claims WHERE id = $1`, c.ID).Exec(expectRows)
		},
	})
}

func (r *UserClaimRepository) RemoveMatching(userID int64, c entity.Claim) {
	r.factory.Init().stage(stagedOp{
		queue: func(b *pgx.Batch) {
			b.Queue(`
				DELETE FROM user_claims
				WHERE user_id = $1 AND claim_type = $2 AND claim_value = $3
			`, userID, c.Type, c.Value)
		},
	})
}

func (r *UserClaimRepository) GetByID(ctx context.Context, id int64) (*entity.UserClaim, error) {
	c := &entity.UserClaim{}
	err := r.factory.Init().querier().QueryRow(ctx, `
		SELECT id, user_id, claim_type, claim_value FROM user_claims WHERE id = $1
	`, id).Scan(&c.ID, &c.UserID, &c.ClaimType, &c.ClaimValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *UserClaimRepository) GetByUserID(ctx context.Context, userID int64) ([]entity.UserClaim, error) {
	rows, err := r.factory.Init().querier().Query(ctx, `
		SELECT id, user_id, claim_type, claim_value
		FROM user_claims
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.UserClaim, error) {
		var c entity.UserClaim
		err := row.Scan(&c.ID, &c.UserID, &c.ClaimType, &c.ClaimValue)
		return c, err
	})
}

var _ repository.UserClaimRepository = (*UserClaimRepository)(nil)
