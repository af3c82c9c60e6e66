// Package memory is an in-process backend implementing the same repository
// and unit-of-work contracts as the postgres backend. Tables live in a
// go-memdb database; a commit runs every staged operation inside one write
// transaction and aborts it on the first failure. Column limits, checks,
// unique keys, foreign keys and cascades mirror db/migrations.
package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-memdb"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity/internal/domain/repository"
)

var (
	ErrDuplicateKey        = errors.New("memory: duplicate key value violates unique constraint")
	ErrForeignKeyViolation = errors.New("memory: insert violates foreign key constraint")
	ErrCheckViolation      = errors.New("memory: row violates check constraint")
	ErrValueTooLong        = errors.New("memory: value too long for column")
)

const (
	tableUsers     = "users"
	tableRoles     = "roles"
	tableLogins    = "user_logins"
	tableClaims    = "user_claims"
	tableUserRoles = "user_roles"
	tableSequences = "sequences"

	indexID           = "id"
	indexUserID       = "user_id"
	indexRoleID       = "role_id"
	indexUserName     = "user_name"
	indexEmail        = "email"
	indexName         = "name"
	indexLogin        = "login"
	indexUserProvider = "user_provider"
)

// varchar limits from db/migrations
const (
	maxNameLen  = 256
	maxEmailLen = 256
	maxLoginLen = 128
)

func schema() *memdb.DBSchema {
	userID := &memdb.IntFieldIndex{Field: "UserID"}
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:       {Name: indexID, Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
					indexUserName: {Name: indexUserName, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "UserName", Lowercase: true}},
					// empty e-mails are left out of the index, like NULLs
					indexEmail: {Name: indexEmail, Unique: true, AllowMissing: true, Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true}},
				},
			},
			tableRoles: {
				Name: tableRoles,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:   {Name: indexID, Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
					indexName: {Name: indexName, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name", Lowercase: true}},
				},
			},
			tableLogins: {
				Name: tableLogins,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {Name: indexID, Unique: true, Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.StringFieldIndex{Field: "LoginProvider"},
						&memdb.StringFieldIndex{Field: "ProviderKey"},
						userID,
					}}},
					indexLogin: {Name: indexLogin, Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.StringFieldIndex{Field: "LoginProvider"},
						&memdb.StringFieldIndex{Field: "ProviderKey"},
					}}},
					indexUserProvider: {Name: indexUserProvider, Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						userID,
						&memdb.StringFieldIndex{Field: "LoginProvider"},
					}}},
					indexUserID: {Name: indexUserID, Indexer: userID},
				},
			},
			tableClaims: {
				Name: tableClaims,
				Indexes: map[string]*memdb.IndexSchema{
					indexID:     {Name: indexID, Unique: true, Indexer: &memdb.IntFieldIndex{Field: "ID"}},
					indexUserID: {Name: indexUserID, Indexer: userID},
				},
			},
			tableUserRoles: {
				Name: tableUserRoles,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {Name: indexID, Unique: true, Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						userID,
						&memdb.IntFieldIndex{Field: "RoleID"},
					}}},
					indexUserID: {Name: indexUserID, Indexer: userID},
					indexRoleID: {Name: indexRoleID, Indexer: &memdb.IntFieldIndex{Field: "RoleID"}},
				},
			},
			tableSequences: {
				Name: tableSequences,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {Name: indexID, Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Table"}},
				},
			},
		},
	}
}

// sequence mirrors a BIGSERIAL counter. It lives in the same transaction as
// the rows, so ids handed out by an aborted commit are reused.
type sequence struct {
	Table string
	Last  int64
}

// DB holds the committed state shared by every session opened on it.
type DB struct {
	store *memdb.MemDB
}

func NewDB() *DB {
	store, err := memdb.NewMemDB(schema())
	if err != nil {
		panic(fmt.Sprintf("memory: invalid schema: %v", err))
	}
	return &DB{store: store}
}

func (db *DB) read(fn func(txn *memdb.Txn) error) error {
	txn := db.store.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

// commit applies ops in order inside one write transaction and commits only
// if every op succeeded.
func (db *DB) commit(ops []stagedOp) error {
	txn := db.store.Txn(true)
	defer txn.Abort()
	for _, op := range ops {
		if err := op.apply(txn); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func nextID(txn *memdb.Txn, table string) (int64, error) {
	raw, err := txn.First(tableSequences, indexID, table)
	if err != nil {
		return 0, err
	}
	seq := sequence{Table: table}
	if raw != nil {
		seq = *raw.(*sequence)
	}
	seq.Last++
	if err := txn.Insert(tableSequences, &seq); err != nil {
		return 0, err
	}
	return seq.Last, nil
}

// copyUser detaches the lockout timestamp so stored rows never alias caller memory.
func copyUser(u entity.User) *entity.User {
	if u.LockoutEndDateUTC != nil {
		end := u.LockoutEndDateUTC.UTC()
		u.LockoutEndDateUTC = &end
	}
	return &u
}

func checkLen(column, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return fmt.Errorf("%w: %s(%d)", ErrValueTooLong, column, limit)
	}
	return nil
}

// conflict reports whether a unique index already holds a different row.
func conflict[T any](txn *memdb.Txn, table, index, value string, same func(*T) bool) (bool, error) {
	raw, err := txn.First(table, index, value)
	if err != nil || raw == nil {
		return false, err
	}
	return !same(raw.(*T)), nil
}

func getUser(txn *memdb.Txn, id int64) (*entity.User, error) {
	raw, err := txn.First(tableUsers, indexID, id)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*entity.User), nil
}

func getRole(txn *memdb.Txn, id int64) (*entity.Role, error) {
	raw, err := txn.First(tableRoles, indexID, id)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*entity.Role), nil
}

func requireUser(txn *memdb.Txn, id int64, table string) error {
	u, err := getUser(txn, id)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: %s.user_id", ErrForeignKeyViolation, table)
	}
	return nil
}

func checkUser(txn *memdb.Txn, u *entity.User) error {
	if strings.TrimSpace(u.UserName) == "" {
		return fmt.Errorf("%w: users.user_name", ErrCheckViolation)
	}
	if u.AccessFailedCount < 0 {
		return fmt.Errorf("%w: users.access_failed_count", ErrCheckViolation)
	}
	if err := checkLen("users.user_name", u.UserName, maxNameLen); err != nil {
		return err
	}
	if err := checkLen("users.email", u.Email, maxEmailLen); err != nil {
		return err
	}
	same := func(other *entity.User) bool { return other.ID == u.ID }
	dup, err := conflict(txn, tableUsers, indexUserName, u.UserName, same)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: users_user_name_idx", ErrDuplicateKey)
	}
	if u.Email == "" {
		return nil
	}
	dup, err = conflict(txn, tableUsers, indexEmail, u.Email, same)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: users_email_idx", ErrDuplicateKey)
	}
	return nil
}

func insertUser(txn *memdb.Txn, u entity.User) (int64, error) {
	id, err := nextID(txn, tableUsers)
	if err != nil {
		return 0, err
	}
	row := copyUser(u)
	row.ID = id
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := checkUser(txn, row); err != nil {
		return 0, err
	}
	return id, txn.Insert(tableUsers, row)
}

func updateUser(txn *memdb.Txn, u entity.User) error {
	prev, err := getUser(txn, u.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return repository.ErrNoRowsAffected
	}
	row := copyUser(u)
	row.CreatedAt = prev.CreatedAt
	if err := checkUser(txn, row); err != nil {
		return err
	}
	return txn.Insert(tableUsers, row)
}

func incrementAccessFailedCount(txn *memdb.Txn, id int64) (int, error) {
	prev, err := getUser(txn, id)
	if err != nil {
		return 0, err
	}
	if prev == nil {
		return 0, repository.ErrNoRowsAffected
	}
	row := copyUser(*prev)
	row.AccessFailedCount++
	return row.AccessFailedCount, txn.Insert(tableUsers, row)
}

// deleteUser removes the user and cascades to its logins, claims and roles.
func deleteUser(txn *memdb.Txn, id int64) error {
	prev, err := getUser(txn, id)
	if err != nil {
		return err
	}
	if prev == nil {
		return repository.ErrNoRowsAffected
	}
	if err := txn.Delete(tableUsers, prev); err != nil {
		return err
	}
	for _, table := range []string{tableLogins, tableClaims, tableUserRoles} {
		if _, err := txn.DeleteAll(table, indexUserID, id); err != nil {
			return err
		}
	}
	return nil
}

func checkRole(txn *memdb.Txn, r *entity.Role) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: roles.name", ErrCheckViolation)
	}
	if err := checkLen("roles.name", r.Name, maxNameLen); err != nil {
		return err
	}
	dup, err := conflict(txn, tableRoles, indexName, r.Name, func(other *entity.Role) bool { return other.ID == r.ID })
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: roles_name_idx", ErrDuplicateKey)
	}
	return nil
}

func insertRole(txn *memdb.Txn, r entity.Role) (int64, error) {
	id, err := nextID(txn, tableRoles)
	if err != nil {
		return 0, err
	}
	r.ID = id
	if err := checkRole(txn, &r); err != nil {
		return 0, err
	}
	return id, txn.Insert(tableRoles, &r)
}

func updateRole(txn *memdb.Txn, r entity.Role) error {
	prev, err := getRole(txn, r.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return repository.ErrNoRowsAffected
	}
	if err := checkRole(txn, &r); err != nil {
		return err
	}
	return txn.Insert(tableRoles, &r)
}

// deleteRole removes the role and its memberships.
func deleteRole(txn *memdb.Txn, id int64) error {
	prev, err := getRole(txn, id)
	if err != nil {
		return err
	}
	if prev == nil {
		return repository.ErrNoRowsAffected
	}
	if err := txn.Delete(tableRoles, prev); err != nil {
		return err
	}
	_, err = txn.DeleteAll(tableUserRoles, indexRoleID, id)
	return err
}

func getLogin(txn *memdb.Txn, key entity.UserLoginKey) (*entity.UserLogin, error) {
	raw, err := txn.First(tableLogins, indexID, key.LoginProvider, key.ProviderKey, key.UserID)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*entity.UserLogin), nil
}

func insertLogin(txn *memdb.Txn, l entity.UserLogin) error {
	if err := checkLen("user_logins.login_provider", l.LoginProvider, maxLoginLen); err != nil {
		return err
	}
	if err := checkLen("user_logins.provider_key", l.ProviderKey, maxLoginLen); err != nil {
		return err
	}
	if err := requireUser(txn, l.UserID, tableLogins); err != nil {
		return err
	}
	prev, err := getLogin(txn, l.Key())
	if err != nil {
		return err
	}
	if prev != nil {
		return fmt.Errorf("%w: user_logins_pkey", ErrDuplicateKey)
	}
	return txn.Insert(tableLogins, &l)
}

func getClaim(txn *memdb.Txn, id int64) (*entity.UserClaim, error) {
	raw, err := txn.First(tableClaims, indexID, id)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*entity.UserClaim), nil
}

func insertClaim(txn *memdb.Txn, c entity.UserClaim) (int64, error) {
	if err := requireUser(txn, c.UserID, tableClaims); err != nil {
		return 0, err
	}
	id, err := nextID(txn, tableClaims)
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, txn.Insert(tableClaims, &c)
}

func updateClaim(txn *memdb.Txn, c entity.UserClaim) error {
	prev, err := getClaim(txn, c.ID)
	if err != nil {
		return err
	}
	if prev == nil {
		return repository.ErrNoRowsAffected
	}
	if err := requireUser(txn, c.UserID, tableClaims); err != nil {
		return err
	}
	return txn.Insert(tableClaims, &c)
}

func getUserRole(txn *memdb.Txn, userID, roleID int64) (*entity.UserRole, error) {
	raw, err := txn.First(tableUserRoles, indexID, userID, roleID)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*entity.UserRole), nil
}

func insertUserRole(txn *memdb.Txn, ur entity.UserRole) error {
	if err := requireUser(txn, ur.UserID, tableUserRoles); err != nil {
		return err
	}
	role, err := getRole(txn, ur.RoleID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("%w: user_roles.role_id", ErrForeignKeyViolation)
	}
	prev, err := getUserRole(txn, ur.UserID, ur.RoleID)
	if err != nil {
		return err
	}
	if prev != nil {
		return fmt.Errorf("%w: user_roles_pkey", ErrDuplicateKey)
	}
	return txn.Insert(tableUserRoles, &ur)
}

// collect drains an iterator, copying each row out of the database.
func collect[T any](it memdb.ResultIterator, keep func(*T) bool) []T {
	out := []T{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		row := raw.(*T)
		if keep == nil || keep(row) {
			out = append(out, *row)
		}
	}
	return out
}
