package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// DB is the minimal surface of *pgxpool.Pool used by a session.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// stagedOp is one pending mutation. queue adds its statement to the commit
// batch; done runs only after the transaction committed.
type stagedOp struct {
	queue func(b *pgx.Batch)
	done  func()
}

// Session records staged mutations for one request and flushes them in a
// single transaction. Reads go straight to the database and do not observe
// staged changes.
type Session struct {
	db     DB
	logger *logrus.Logger

	mu     sync.Mutex
	staged []stagedOp
}

func (s *Session) stage(op stagedOp) {
	s.mu.Lock()
	s.staged = append(s.staged, op)
	s.mu.Unlock()
}

// Pending reports the number of staged, uncommitted operations.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

func (s *Session) querier() DB {
	return s.db
}

func (s *Session) discard() {
	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
}

// saveChanges sends every staged statement as one batch inside one
// transaction. The staged list is cleared whether or not the commit succeeds.
func (s *Session) saveChanges(ctx context.Context) error {
	s.mu.Lock()
	ops := s.staged
	s.staged = nil
	s.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, op := range ops {
		op.queue(batch)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("staged", len(ops)).Error("save changes failed")
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("staged", len(ops)).Error("commit failed")
		}
		return err
	}

	for _, op := range ops {
		if op.done != nil {
			op.done()
		}
	}
	if s.logger != nil {
		s.logger.WithField("staged", len(ops)).Debug("changes saved")
	}
	return nil
}

// SessionFactory lazily opens one Session per request and hands the same
// instance to every repository and the unit of work of that request.
type SessionFactory struct {
	db     DB
	logger *logrus.Logger

	mu      sync.Mutex
	session *Session
}

func NewSessionFactory(db DB, logger *logrus.Logger) *SessionFactory {
	return &SessionFactory{db: db, logger: logger}
}

// Init returns the request's session, creating it on first call.
func (f *SessionFactory) Init() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		f.session = &Session{db: f.db, logger: f.logger}
	}
	return f.session
}

// Close drops the session and anything still staged on it.
func (f *SessionFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		f.session.discard()
		f.session = nil
	}
	return nil
}
