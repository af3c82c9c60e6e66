package memory

import (
	"context"
	"sync"

	"github.com/hashicorp/go-memdb"

	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

type stagedOp struct {
	apply func(txn *memdb.Txn) error
	done  func()
}

// Session records staged mutations for one request. Reads see committed
// state only.
type Session struct {
	db *DB

	mu     sync.Mutex
	staged []stagedOp
}

func (s *Session) stage(op stagedOp) {
	s.mu.Lock()
	s.staged = append(s.staged, op)
	s.mu.Unlock()
}

func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

func (s *Session) read(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.read(fn)
}

func (s *Session) saveChanges(ctx context.Context) error {
	s.mu.Lock()
	ops := s.staged
	s.staged = nil
	s.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.commit(ops); err != nil {
		return err
	}
	for _, op := range ops {
		if op.done != nil {
			op.done()
		}
	}
	return nil
}

// SessionFactory lazily opens one Session per request.
type SessionFactory struct {
	db *DB

	mu      sync.Mutex
	session *Session
}

func NewSessionFactory(db *DB) *SessionFactory {
	return &SessionFactory{db: db}
}

func (f *SessionFactory) Init() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		f.session = &Session{db: f.db}
	}
	return f.session
}

func (f *SessionFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		f.session.mu.Lock()
		f.session.staged = nil
		f.session.mu.Unlock()
		f.session = nil
	}
	return nil
}

type UnitOfWork struct {
	factory *SessionFactory
}

func NewUnitOfWork(factory *SessionFactory) *UnitOfWork {
	return &UnitOfWork{factory: factory}
}

func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	return u.factory.Init().saveChanges(ctx)
}

// NewScope builds the repositories and unit of work for one request.
func NewScope(db *DB) *repository.Scope {
	f := NewSessionFactory(db)
	return repository.NewScope(
		NewUnitOfWork(f),
		NewUserRepository(f),
		NewRoleRepository(f),
		NewUserLoginRepository(f),
		NewUserClaimRepository(f),
		NewUserRoleRepository(f),
		f.Close,
	)
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
