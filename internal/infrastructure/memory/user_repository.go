package memory

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

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
		apply: func(txn *memdb.Txn) error {
			var err error
			id, err = insertUser(txn, *u)
			return err
		},
		done: func() { u.ID = id },
	})
}

func (r *UserRepository) Update(u *entity.User) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error { return updateUser(txn, *u) },
	})
}

func (r *UserRepository) Remove(u *entity.User) {
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error { return deleteUser(txn, u.ID) },
	})
}

func (r *UserRepository) IncrementAccessFailedCount(u *entity.User) {
	var count int
	r.factory.Init().stage(stagedOp{
		apply: func(txn *memdb.Txn) error {
			var err error
			count, err = incrementAccessFailedCount(txn, u.ID)
			return err
		},
		done: func() { u.AccessFailedCount = count },
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		u, err := getUser(txn, id)
		if err != nil || u == nil {
			return err
		}
		out = copyUser(*u)
		return nil
	})
	return out, err
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (*entity.User, error) {
	return r.first(ctx, indexUserName, name)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.first(ctx, indexEmail, email)
}

func (r *UserRepository) first(ctx context.Context, index, value string) (*entity.User, error) {
	var out *entity.User
	err := r.factory.Init().read(ctx, func(txn *memdb.Txn) error {
		raw, err := txn.First(tableUsers, index, value)
		if err != nil || raw == nil {
			return err
		}
		out = copyUser(*raw.(*entity.User))
		return nil
	})
	return out, err
}

var _ repository.UserRepository = (*UserRepository)(nil)
