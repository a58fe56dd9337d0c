// Package umbrellacache contains umbrella related CRUD functionality with
// an in-process read-through cache.
package umbrellacache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for umbrella data and caching. Only lookups
// by id are cached; locking reads and list queries always reach the storer.
type Store struct {
	log    *logger.Logger
	storer umbrellabus.Storer
	cache  *sturdyc.Client[umbrellabus.Umbrella]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer umbrellabus.Storer, ttl time.Duration) *Store {
	const (
		capacity           = 10000
		numShards          = 10
		evictionPercentage = 10
	)

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[umbrellabus.Umbrella](capacity, numShards, ttl, evictionPercentage),
	}
}

// NewWithTx constructs a new Store value replacing the wrapped storer with
// one that is inside a transaction. The cache is shared.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (umbrellabus.Storer, error) {
	storer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return &Store{
		log:    s.log,
		storer: storer,
		cache:  s.cache,
	}, nil
}

// Create inserts a new umbrella into the database.
func (s *Store) Create(ctx context.Context, u umbrellabus.Umbrella) error {
	if err := s.storer.Create(ctx, u); err != nil {
		return err
	}

	s.cache.Delete(key(u.TenantID, u.ID))

	return nil
}

// Update replaces an umbrella document in the database.
func (s *Store) Update(ctx context.Context, u umbrellabus.Umbrella) error {
	if err := s.storer.Update(ctx, u); err != nil {
		return err
	}

	s.cache.Delete(key(u.TenantID, u.ID))

	return nil
}

// Delete removes an umbrella from the database.
func (s *Store) Delete(ctx context.Context, u umbrellabus.Umbrella) error {
	if err := s.storer.Delete(ctx, u); err != nil {
		return err
	}

	s.cache.Delete(key(u.TenantID, u.ID))

	return nil
}

// Query retrieves a list of existing umbrellas from the database.
func (s *Store) Query(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter, orderBy order.By, page page.Page) ([]umbrellabus.Umbrella, error) {
	return s.storer.Query(ctx, tenantID, filter, orderBy, page)
}

// Count returns the number of umbrellas matching the filter.
func (s *Store) Count(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter) (int, error) {
	return s.storer.Count(ctx, tenantID, filter)
}

// QueryByID gets the specified umbrella from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	fetch := func(ctx context.Context) (umbrellabus.Umbrella, error) {
		return s.storer.QueryByID(ctx, tenantID, umbrellaID)
	}

	return s.cache.GetOrFetch(ctx, key(tenantID, umbrellaID), fetch)
}

// QueryByIDForUpdate always reads from the database so the row lock is taken.
func (s *Store) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	u, err := s.storer.QueryByIDForUpdate(ctx, tenantID, umbrellaID)
	if err != nil {
		return umbrellabus.Umbrella{}, err
	}

	s.cache.Set(key(tenantID, umbrellaID), u)

	return u, nil
}

// QueryByNumber gets the umbrella with the specified number.
func (s *Store) QueryByNumber(ctx context.Context, tenantID uuid.UUID, number int) (umbrellabus.Umbrella, error) {
	return s.storer.QueryByNumber(ctx, tenantID, number)
}

// CountReservations reports how many reservations reference the umbrella.
func (s *Store) CountReservations(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.ReservationCount, error) {
	return s.storer.CountReservations(ctx, tenantID, umbrellaID)
}

// LockInventory locks the inventory of the tenant.
func (s *Store) LockInventory(ctx context.Context, tenantID uuid.UUID) error {
	return s.storer.LockInventory(ctx, tenantID)
}

// Len returns the number of cached umbrellas.
func (s *Store) Len() int {
	return s.cache.Size()
}

// key scopes entries by tenant so a lookup never crosses tenants.
func key(tenantID uuid.UUID, umbrellaID uuid.UUID) string {
	return tenantID.String() + ":" + umbrellaID.String()
}
