package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Beginner represents a value that can begin a transaction.
type Beginner interface {
	Begin() (CommitRollbacker, error)
}

// CommitRollbacker represents a value that can commit or rollback a transaction.
type CommitRollbacker interface {
	Commit() error
	Rollback() error
}

// =============================================================================

// DBBeginner implements the Beginner interface.
type DBBeginner struct {
	sqlxDB *sqlx.DB
}

// NewBeginner constructs a value that implements the beginner interface.
func NewBeginner(sqlxDB *sqlx.DB) *DBBeginner {
	return &DBBeginner{
		sqlxDB: sqlxDB,
	}
}

// Begin implements the Beginner interface and returns a concrete value that
// implements the CommitRollbacker interface.
func (db *DBBeginner) Begin() (CommitRollbacker, error) {
	return db.sqlxDB.Beginx()
}

// =============================================================================

// nestedTx joins an outer transaction. Commit and Rollback are left to the
// owner of the outer transaction.
type nestedTx struct {
	tx CommitRollbacker
}

func (nestedTx) Commit() error   { return nil }
func (nestedTx) Rollback() error { return nil }

type nestedBeginner struct {
	tx CommitRollbacker
}

// NestedBeginner returns a Beginner that hands out the specified transaction
// instead of opening a new one. Cores constructed with NewWithTx use it so
// their own units of work join the caller's transaction.
func NestedBeginner(tx CommitRollbacker) Beginner {
	return nestedBeginner{tx: tx}
}

func (b nestedBeginner) Begin() (CommitRollbacker, error) {
	return nestedTx{tx: b.tx}, nil
}

// Unwrap returns the transaction that the value is joined to.
func Unwrap(tx CommitRollbacker) CommitRollbacker {
	for {
		n, ok := tx.(nestedTx)
		if !ok {
			return tx
		}
		tx = n.tx
	}
}

// GetExtContext is a helper function that extracts the sqlx value
// from the domain transactor interface for transactional use.
func GetExtContext(tx CommitRollbacker) (sqlx.ExtContext, error) {
	ec, ok := Unwrap(tx).(sqlx.ExtContext)
	if !ok {
		return nil, fmt.Errorf("Transactor(%T) not of a type *sql.Tx", tx)
	}

	return ec, nil
}

// =============================================================================

// WithinTran runs fn inside a transaction, committing when fn returns nil
// and rolling back otherwise.
func WithinTran(ctx context.Context, log *logger.Logger, bgn Beginner, fn func(tx CommitRollbacker) error) error {
	tx, err := bgn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	hasCommitted := false
	defer func() {
		if hasCommitted {
			return
		}
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error(ctx, "rollback transaction", "ERROR", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	hasCommitted = true

	return nil
}
