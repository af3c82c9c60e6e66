package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

// fakeTx records the batch it was sent. Methods not overridden panic
// through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	batch      *pgx.Batch
	batchErr   error
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batch = b
	return fakeResults{err: t.batchErr}
}

func (t *fakeTx) Commit(context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeResults struct {
	pgx.BatchResults
	err error
}

func (r fakeResults) Close() error { return r.err }

type fakeDB struct {
	DB
	tx       *fakeTx
	beginErr error
	begins   int
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	d.begins++
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

func TestSessionFactoryMemoizes(t *testing.T) {
	f := NewSessionFactory(&fakeDB{}, nil)
	s := f.Init()
	assert.Same(t, s, f.Init())

	require.NoError(t, f.Close())
	assert.NotSame(t, s, f.Init())
}

func TestSaveChangesWithoutStagedOpsSkipsTransaction(t *testing.T) {
	db := &fakeDB{tx: &fakeTx{}}
	uow := NewUnitOfWork(NewSessionFactory(db, nil))

	require.NoError(t, uow.SaveChanges(context.Background()))
	assert.Zero(t, db.begins)
}

func TestSaveChangesSendsOneBatch(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	scope := NewScope(db, nil)

	scope.Roles.Add(&entity.Role{Name: "admin"})
	scope.UserRoles.RemoveByUserAndRole(1, 2)
	scope.UserLogins.RemoveByProvider(1, "google")
	require.NoError(t, scope.UnitOfWork.SaveChanges(context.Background()))

	assert.Equal(t, 1, db.begins)
	assert.True(t, tx.committed)
	require.NotNil(t, tx.batch)
	require.Equal(t, 3, tx.batch.Len())
	assert.Contains(t, tx.batch.QueuedQueries[0].SQL, "INSERT INTO roles")
	assert.Contains(t, tx.batch.QueuedQueries[2].SQL, "login_provider = $2")
}

func TestFailedCommitDiscardsStagedOps(t *testing.T) {
	boom := errors.New("boom")
	tx := &fakeTx{batchErr: boom}
	db := &fakeDB{tx: tx}
	f := NewSessionFactory(db, nil)
	users := NewUserRepository(f)
	uow := NewUnitOfWork(f)

	u := &entity.User{ID: 5, UserName: "alice", AccessFailedCount: 3}
	users.IncrementAccessFailedCount(u)
	require.ErrorIs(t, uow.SaveChanges(context.Background()), boom)

	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
	assert.Equal(t, 3, u.AccessFailedCount)
	assert.Zero(t, f.Init().Pending())
}

func TestBeginErrorPropagates(t *testing.T) {
	boom := errors.New("no connection")
	db := &fakeDB{beginErr: boom}
	scope := NewScope(db, nil)

	scope.Users.Add(entity.NewUser("bob"))
	assert.ErrorIs(t, scope.UnitOfWork.SaveChanges(context.Background()), boom)
}

func TestScopeCloseDropsStagedOps(t *testing.T) {
	tx := &fakeTx{}
	db := &fakeDB{tx: tx}
	scope := NewScope(db, nil)

	scope.Users.Add(entity.NewUser("carol"))
	require.NoError(t, scope.Close())
	require.NoError(t, scope.Close())

	require.NoError(t, scope.UnitOfWork.SaveChanges(context.Background()))
	assert.Zero(t, db.begins)
}
