package core

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

type (
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		Begin() (*sql.Tx, error)
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// RunInTx runs fn inside a transaction started on db and commits when fn succeeds.
// A nil db (stores without transactions) runs fn with a nil executor.
func RunInTx(ctx context.Context, db DB, fn func(exec DBExecutor) error) error {
	if db == nil {
		return fn(nil)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// WithSavepoint runs fn inside the named savepoint of the ongoing transaction exec.
// When fn fails only its own work is rolled back and the transaction stays usable.
// A nil exec runs fn directly.
func WithSavepoint(ctx context.Context, exec DBExecutor, name string, fn func() error) error {
	if exec == nil {
		return fn()
	}

	if _, err := exec.ExecContext(ctx, fmt.Sprintf("SAVEPOINT %s", name)); err != nil {
		return errors.Wrap(err, "creating savepoint")
	}
	if err := fn(); err != nil {
		if _, rbErr := exec.ExecContext(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name)); rbErr != nil {
			return errors.Wrapf(err, "rolling back to savepoint: %v", rbErr)
		}
		return err
	}
	_, err := exec.ExecContext(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", name))
	return errors.Wrap(err, "releasing savepoint")
}
