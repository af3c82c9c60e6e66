package repository

import (
	"context"
	"errors"
)

var (
	// ErrNoRowsAffected is returned by a commit when a staged update or delete of
	// a single entity matched no row.
	ErrNoRowsAffected = errors.New("no rows affected")
)

// Repository is the generic contract shared by every entity repository.
// Add, Update and Remove only stage changes in the current session; nothing
// is written until the UnitOfWork commits. GetByID returns (nil, nil) when
// no row matches.
type Repository[T any, K comparable] interface {
	Add(entity *T)
	Update(entity *T)
	Remove(entity *T)
	GetByID(ctx context.Context, id K) (*T, error)
}

// UnitOfWork flushes every change staged in the current session atomically.
type UnitOfWork interface {
	SaveChanges(ctx context.Context) error
}
