package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor is the subset of *sql.DB and *sql.Tx used by the repositories.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// executor returns the transaction stored in ctx by TxManager.Do, or db
// when the call is not part of a transaction.
func executor(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

// inTx reports whether ctx carries an open transaction.  FOR UPDATE
// clauses are only meaningful inside one.
func inTx(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok && tx != nil
}

// TxManager runs a function inside a database transaction.  Repositories
// called with the context passed to fn join that transaction.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager { return &TxManager{db: db} }

// Do begins a transaction, runs fn and commits.  Any error from fn (or a
// panic) rolls the whole transaction back.  Nested calls reuse the outer
// transaction.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", translate(err))
	}
	committed = true
	return nil
}
