package memory

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"

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
		apply: func(txn *memdb.Txn) error { return insertLogin(txn, *l) },
	})
}

// Update has no non-key column to write; it only asserts the row exists.
func (r *UserLoginRepository) Update(l *entity.UserLogin) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			prev, err := getLogin(txn, l.Key())
			if err != nil {
				return err
			}
			if prev == nil {
				return repository.ErrNoRowsAffected
			}
			return nil
		},
	})
}

func (r *UserLoginRepository) Remove(l *entity.UserLogin) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			prev, err := getLogin(txn, l.Key())
			if err != nil {
				return err
			}
			if prev == nil {
				return repository.ErrNoRowsAffected
			}
			return txn.Delete(tableLogins, prev)
		},
	})
}

func (r *UserLoginRepository) RemoveByProvider(userID int64, loginProvider string) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			_, err := txn.DeleteAll(tableLogins, indexUserProvider, userID, loginProvider)
			return err
		},
	})
}

func (r *UserLoginRepository) GetByID(ctx context.Context, key entity.UserLoginKey) (*entity.UserLogin, error) {
	var out *entity.UserLogin
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		l, err := getLogin(txn, key)
		if err != nil || l == nil {
			return err
		}
		found := *l
		out = &found
		return nil
	})
	return out, err
}

func (r *UserLoginRepository) GetByUserID(ctx context.Context, userID int64) ([]entity.UserLogin, error) {
	out := []entity.UserLogin{}
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		it, err := txn.Get(tableLogins, indexUserID, userID)
		if err != nil {
			return err
		}
		out = collect[entity.UserLogin](it, nil)
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoginProvider != out[j].LoginProvider {
			return out[i].LoginProvider < out[j].LoginProvider
		}
		return out[i].ProviderKey < out[j].ProviderKey
	})
	return out, err
}

func (r *UserLoginRepository) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*entity.UserLogin, error) {
	var out *entity.UserLogin
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tableLogins, indexLogin, loginProvider, providerKey)
		if err != nil || raw == nil {
			return err
		}
		found := *raw.(*entity.UserLogin)
		out = &found
		return nil
	})
	return out, err
}

var _ repository.UserLoginRepository = (*UserLoginRepository)(nil)
