package memory

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"

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
		apply: func(txn *memdb.Txn) error {
			var err error
			id, err = insertClaim(txn, *c)
			return err
		},
		done: func() { c.ID = id },
	})
}

func (r *UserClaimRepository) Update(c *entity.UserClaim) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error { return updateClaim(txn, *c) },
	})
}

func (r *UserClaimRepository) Remove(c *entity.UserClaim) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			prev, err := getClaim(txn, c.ID)
			if err != nil {
				return err
			}
			if prev == nil {
				return repository.ErrNoRowsAffected
			}
			return txn.Delete(tableClaims, prev)
		},
	})
}

func (r *UserClaimRepository) RemoveMatching(userID int64, claim entity.Claim) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			it, err := txn.Get(tableClaims, indexUserID, userID)
			if err != nil {
				return err
			}
			matches := collect(it, func(c *entity.UserClaim) bool {
				return c.ClaimType == claim.Type && c.ClaimValue == claim.Value
			})
			for i := range matches {
				if err := txn.Delete(tableClaims, &matches[i]); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func (r *UserClaimRepository) GetByID(ctx context.Context, id int64) (*entity.UserClaim, error) {
	var out *entity.UserClaim
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		c, err := getClaim(txn, id)
		if err != nil || c == nil {
			return err
		}
		found := *c
		out = &found
		return nil
	})
	return out, err
}

func (r *UserClaimRepository) GetByUserID(ctx context.Context, userID int64) ([]entity.UserClaim, error) {
	out := []entity.UserClaim{}
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableClaims, indexUserID, userID)
		if err != nil {
			return err
		}
		out = collect[entity.UserClaim](it, nil)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

var _ repository.UserClaimRepository = (*UserClaimRepository)(nil)
