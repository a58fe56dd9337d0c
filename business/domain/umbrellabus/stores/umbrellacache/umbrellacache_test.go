package umbrellacache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus/stores/umbrellacache"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStorer serves one umbrella and counts the reads that reach it.
type countingStorer struct {
	umbrellabus.Storer
	u     umbrellabus.Umbrella
	reads int
}

func (s *countingStorer) QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	s.reads++
	if tenantID != s.u.TenantID || umbrellaID != s.u.ID {
		return umbrellabus.Umbrella{}, umbrellabus.ErrNotFound
	}
	return s.u, nil
}

func (s *countingStorer) Update(ctx context.Context, u umbrellabus.Umbrella) error {
	s.u = u
	return nil
}

func Test_ReadThrough(t *testing.T) {
	ctx := context.Background()

	u := umbrellabus.Umbrella{
		ID:       uuid.New(),
		TenantID: uuid.New(),
		Number:   5,
		Row:      "A",
		Type:     umbrellatype.Premium,
		Active:   true,
	}

	storer := &countingStorer{u: u}
	store := umbrellacache.NewStore(logger.Discard(), storer, time.Minute)

	for range 3 {
		got, err := store.QueryByID(ctx, u.TenantID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Number)
	}
	assert.Equal(t, 1, storer.reads)
	assert.Equal(t, 1, store.Len())

	_, err := store.QueryByID(ctx, uuid.New(), u.ID)
	require.ErrorIs(t, err, umbrellabus.ErrNotFound, "entries are scoped by tenant")

	u.Number = 6
	require.NoError(t, store.Update(ctx, u))

	got, err := store.QueryByID(ctx, u.TenantID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Number, "update evicts the entry")
}
