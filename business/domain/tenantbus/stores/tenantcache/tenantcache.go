// Package tenantcache contains tenant related CRUD functionality with
// caching in redis. Tenants are read on every umbrella creation to check the
// plan ceiling and change rarely, so reads are served from redis and every
// write evicts the entry.
package tenantcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/tenantstatus"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/redis/go-redis/v9"
)

// Store manages the set of APIs for tenant data and caching.
type Store struct {
	log    *logger.Logger
	storer tenantbus.Storer
	rdb    *redis.Client
	ttl    time.Duration
}

// NewStore constructs the api for data and caching access. A redis failure
// is logged and the call falls through to the wrapped storer.
func NewStore(log *logger.Logger, storer tenantbus.Storer, rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		log:    log,
		storer: storer,
		rdb:    rdb,
		ttl:    ttl,
	}
}

// NewWithTx constructs a new Store value replacing the wrapped storer with
// one that is inside a transaction. The cache is shared.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	storer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &Store{
		log:    s.log,
		storer: storer,
		rdb:    s.rdb,
		ttl:    s.ttl,
	}, nil
}

// Create inserts a new tenant into the database.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.Create(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t.ID)

	return nil
}

// Update replaces a tenant document in the database.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.Update(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t.ID)

	return nil
}

// Delete removes a tenant from the database.
func (s *Store) Delete(ctx context.Context, t tenantbus.Tenant) error {
	if err := s.storer.Delete(ctx, t); err != nil {
		return err
	}

	s.evict(ctx, t.ID)

	return nil
}

// QueryByID gets the specified tenant from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	data, err := s.rdb.Get(ctx, key(tenantID)).Bytes()
	switch {
	case err == nil:
		t, err := decode(data)
		if err == nil {
			return t, nil
		}
		s.log.Warn(ctx, "tenantcache", "status", "dropping undecodable entry", "tenant_id", tenantID, "ERROR", err)

	case !errors.Is(err, redis.Nil):
		s.log.Warn(ctx, "tenantcache", "status", "get failed", "tenant_id", tenantID, "ERROR", err)
	}

	t, err := s.storer.QueryByID(ctx, tenantID)
	if err != nil {
		return tenantbus.Tenant{}, err
	}

	s.set(ctx, t)

	return t, nil
}

// QueryIDBySlug retrieves the tenant ID for the specified slug. Slugs are not
// cached.
func (s *Store) QueryIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	return s.storer.QueryIDBySlug(ctx, slug)
}

// =============================================================================

type cachedTenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func key(tenantID uuid.UUID) string {
	return "lido:tenant:" + tenantID.String()
}

func (s *Store) set(ctx context.Context, t tenantbus.Tenant) {
	data, err := json.Marshal(cachedTenant{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Plan:      t.Plan.String(),
		Status:    t.Status.String(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	})
	if err != nil {
		s.log.Warn(ctx, "tenantcache", "status", "encode failed", "tenant_id", t.ID, "ERROR", err)
		return
	}

	if err := s.rdb.Set(ctx, key(t.ID), data, s.ttl).Err(); err != nil {
		s.log.Warn(ctx, "tenantcache", "status", "set failed", "tenant_id", t.ID, "ERROR", err)
	}
}

func (s *Store) evict(ctx context.Context, tenantID uuid.UUID) {
	if err := s.rdb.Del(ctx, key(tenantID)).Err(); err != nil {
		s.log.Warn(ctx, "tenantcache", "status", "evict failed", "tenant_id", tenantID, "ERROR", err)
	}
}

func decode(data []byte) (tenantbus.Tenant, error) {
	var ct cachedTenant
	if err := json.Unmarshal(data, &ct); err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("unmarshal: %w", err)
	}

	p, err := plan.Parse(ct.Plan)
	if err != nil {
		return tenantbus.Tenant{}, err
	}

	st, err := tenantstatus.Parse(ct.Status)
	if err != nil {
		return tenantbus.Tenant{}, err
	}

	return tenantbus.Tenant{
		ID:        ct.ID,
		Name:      ct.Name,
		Slug:      ct.Slug,
		Plan:      p,
		Status:    st,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}, nil
}
