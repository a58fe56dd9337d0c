package tenantcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/tenantbus/stores/tenantcache"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/tenantstatus"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStorer struct {
	tenantbus.Storer
	tenants map[uuid.UUID]tenantbus.Tenant
	reads   int
}

func (s *mapStorer) Create(ctx context.Context, t tenantbus.Tenant) error {
	s.tenants[t.ID] = t
	return nil
}

func (s *mapStorer) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	s.reads++
	t, exists := s.tenants[tenantID]
	if !exists {
		return tenantbus.Tenant{}, tenantbus.ErrNotFound
	}
	return t, nil
}

func Test_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	storer := &mapStorer{tenants: make(map[uuid.UUID]tenantbus.Tenant)}
	store := tenantcache.NewStore(logger.Discard(), storer, rdb, time.Minute)

	tnt := tenantbus.Tenant{
		ID:     uuid.New(),
		Name:   "Lido Azzurro",
		Slug:   "azzurro",
		Plan:   plan.Pro,
		Status: tenantstatus.Active,
	}

	require.NoError(t, store.Create(ctx, tnt), "a failed eviction is not an error")

	got, err := store.QueryByID(ctx, tnt.ID)
	require.NoError(t, err)
	assert.Equal(t, "azzurro", got.Slug)
	assert.True(t, got.Plan.Equal(plan.Pro))
	assert.Equal(t, 1, storer.reads)

	_, err = store.QueryByID(ctx, uuid.New())
	require.ErrorIs(t, err, tenantbus.ErrNotFound)
}
