package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods resolve their executor through queryer() so the
// same method runs standalone against the pool or inside an open
// transaction without separate *Tx variants.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// UnitOfWork runs a function within a single database transaction.
// The transaction is carried in the context so that every repository
// call made inside fn joins it; any error from fn rolls the whole
// unit back, which is what guarantees that a failed purchase leaves
// no order, ticket or ledger change behind.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork returns a UnitOfWork bound to the given database.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, stores it in the context and invokes
// fn.  It commits when fn returns nil and rolls back otherwise.  A
// nested call reuses the transaction already present in the context,
// so composed operations still form one atomic unit.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// txFromContext extracts the transaction placed by WithinTx, or nil
// when the context carries none.
func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// queryer picks the executor for a repository call: the transaction
// from the context when one is open, the plain pool otherwise.
func queryer(ctx context.Context, db *sql.DB) DBTX {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// isDuplicateEntry reports whether err is a MySQL unique constraint
// violation (error 1062).
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
