package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("unique", func(t *testing.T) {
		err := classify(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "uq_payment_reservation"})

		var dup ErrDBDuplicatedEntry
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "uq_payment_reservation", dup.Column)
	})

	t.Run("exclusion", func(t *testing.T) {
		err := classify(&pgconn.PgError{Code: exclusionViolation, ConstraintName: "ex_reservation_overlap"})

		var ex ErrDBExcluded
		require.True(t, errors.As(err, &ex))
		assert.Equal(t, "ex_reservation_overlap", ex.Constraint)
	})

	t.Run("other", func(t *testing.T) {
		err := classify(errors.New("connection refused"))
		assert.Equal(t, errs.Storage, errs.KindOf(err))
	})
}

func TestQueryString(t *testing.T) {
	data := struct {
		ID   string `db:"id"`
		Days int    `db:"days"`
	}{ID: "abc", Days: 3}

	q := queryString("SELECT *\n\tFROM t WHERE id = :id AND days = :days", data)
	assert.Equal(t, "SELECT * FROM t WHERE id = 'abc' AND days = 3", q)
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit() error   { f.committed = true; return nil }
func (f *fakeTx) Rollback() error { f.rolledBack = true; return nil }

type fakeBeginner struct{ tx *fakeTx }

func (b fakeBeginner) Begin() (CommitRollbacker, error) { return b.tx, nil }

func TestWithinTran(t *testing.T) {
	log := logger.Discard()

	t.Run("commit", func(t *testing.T) {
		tx := &fakeTx{}
		err := WithinTran(context.Background(), log, fakeBeginner{tx}, func(CommitRollbacker) error { return nil })
		require.NoError(t, err)
		assert.True(t, tx.committed)
		assert.False(t, tx.rolledBack)
	})

	t.Run("rollback", func(t *testing.T) {
		tx := &fakeTx{}
		boom := errors.New("boom")
		err := WithinTran(context.Background(), log, fakeBeginner{tx}, func(CommitRollbacker) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.False(t, tx.committed)
		assert.True(t, tx.rolledBack)
	})

	t.Run("nested", func(t *testing.T) {
		outer := &fakeTx{}
		err := WithinTran(context.Background(), log, NestedBeginner(outer), func(tx CommitRollbacker) error {
			assert.Same(t, outer, Unwrap(tx))
			return nil
		})
		require.NoError(t, err)
		assert.False(t, outer.committed)
	})
}
