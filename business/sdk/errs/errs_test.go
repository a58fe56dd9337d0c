package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	sentinel := errs.Newf(errs.DateRangeConflict, "umbrella already booked")

	tests := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{"direct", sentinel, errs.DateRangeConflict},
		{"wrapped", fmt.Errorf("create: %w", sentinel), errs.DateRangeConflict},
		{"double wrapped", fmt.Errorf("tx: %w", fmt.Errorf("create: %w", sentinel)), errs.DateRangeConflict},
		{"plain", errors.New("boom"), errs.Internal},
		{"storage", errs.New(errs.Storage, errors.New("connection reset")), errs.Storage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errs.KindOf(tt.err))
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	sentinel := errs.Newf(errs.NotFound, "reservation not found")
	err := fmt.Errorf("query: %w", sentinel)

	require.ErrorIs(t, err, sentinel)
	assert.True(t, errs.IsKind(err, errs.NotFound))
	assert.Equal(t, "query: reservation not found", err.Error())
}

func TestParseKind(t *testing.T) {
	k, err := errs.ParseKind("NOT_PAID")
	require.NoError(t, err)
	assert.Equal(t, errs.NotPaid, k)

	_, err = errs.ParseKind("NOPE")
	require.Error(t, err)
}
