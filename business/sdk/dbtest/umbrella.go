package dbtest

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
)

var umbrellaOrder = map[string]func(a, b umbrellabus.Umbrella) int{
	umbrellabus.OrderByID:     func(a, b umbrellabus.Umbrella) int { return cmp.Compare(a.ID.String(), b.ID.String()) },
	umbrellabus.OrderByNumber: func(a, b umbrellabus.Umbrella) int { return cmp.Compare(a.Number, b.Number) },
	umbrellabus.OrderByRow:    func(a, b umbrellabus.Umbrella) int { return cmp.Compare(a.Row, b.Row) },
	umbrellabus.OrderByType:   func(a, b umbrellabus.Umbrella) int { return cmp.Compare(a.Type.String(), b.Type.String()) },
}

func umbrellaByID(a, b umbrellabus.Umbrella) int {
	return cmp.Compare(a.ID.String(), b.ID.String())
}

type umbrellaStore struct {
	db *DB
}

func (s umbrellaStore) NewWithTx(tx sqldb.CommitRollbacker) (umbrellabus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s umbrellaStore) Create(ctx context.Context, u umbrellabus.Umbrella) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.numberTaken(u) {
		return fmt.Errorf("create: %w", umbrellabus.ErrDuplicateNumber)
	}

	s.db.umbrellas[u.ID] = u
	return nil
}

func (s umbrellaStore) Update(ctx context.Context, u umbrellabus.Umbrella) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, exists := s.db.umbrellas[u.ID]
	if !exists || cur.TenantID != u.TenantID {
		return nil
	}

	if s.numberTaken(u) {
		return fmt.Errorf("update: %w", umbrellabus.ErrDuplicateNumber)
	}

	s.db.umbrellas[u.ID] = u
	return nil
}

// numberTaken mirrors uq_umbrella_tenant_number.
func (s umbrellaStore) numberTaken(u umbrellabus.Umbrella) bool {
	for _, u2 := range s.db.umbrellas {
		if u2.ID != u.ID && u2.TenantID == u.TenantID && u2.Number == u.Number {
			return true
		}
	}

	return false
}

func (s umbrellaStore) Delete(ctx context.Context, u umbrellabus.Umbrella) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if cur, exists := s.db.umbrellas[u.ID]; exists && cur.TenantID == u.TenantID {
		delete(s.db.umbrellas, u.ID)
	}
	return nil
}

func (s umbrellaStore) Query(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter, orderBy order.By, pg page.Page) ([]umbrellabus.Umbrella, error) {
	return sortPage(s.filter(tenantID, filter), orderBy, pg, umbrellaOrder, umbrellaByID)
}

func (s umbrellaStore) Count(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter) (int, error) {
	return len(s.filter(tenantID, filter)), nil
}

func (s umbrellaStore) filter(tenantID uuid.UUID, filter umbrellabus.QueryFilter) []umbrellabus.Umbrella {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []umbrellabus.Umbrella
	for _, u := range s.db.umbrellas {
		switch {
		case u.TenantID != tenantID:
		case filter.ID != nil && u.ID != *filter.ID:
		case filter.Number != nil && u.Number != *filter.Number:
		case filter.Row != nil && u.Row != *filter.Row:
		case filter.Type != nil && !u.Type.Equal(*filter.Type):
		case filter.Active != nil && u.Active != *filter.Active:
		default:
			out = append(out, u)
		}
	}

	return out
}

func (s umbrellaStore) QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, exists := s.db.umbrellas[umbrellaID]
	if !exists || u.TenantID != tenantID {
		return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", umbrellabus.ErrNotFound)
	}

	return u, nil
}

// QueryByIDForUpdate needs no row lock here; transactions already run one
// at a time.
func (s umbrellaStore) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	return s.QueryByID(ctx, tenantID, umbrellaID)
}

func (s umbrellaStore) QueryByNumber(ctx context.Context, tenantID uuid.UUID, number int) (umbrellabus.Umbrella, error) {
	us := s.filter(tenantID, umbrellabus.QueryFilter{Number: &number})
	if len(us) == 0 {
		return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", umbrellabus.ErrNotFound)
	}

	return us[0], nil
}

func (s umbrellaStore) CountReservations(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.ReservationCount, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	active := []status.Status{status.Pending, status.Confirmed, status.Paid}

	var rc umbrellabus.ReservationCount
	for _, r := range s.db.reservations {
		if r.TenantID != tenantID || r.UmbrellaID != umbrellaID {
			continue
		}

		rc.Total++
		if slices.Contains(active, r.Status) {
			rc.Active++
		}
	}

	return rc, nil
}

func (s umbrellaStore) LockInventory(ctx context.Context, tenantID uuid.UUID) error {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	if _, exists := s.db.tenants[tenantID]; !exists {
		return fmt.Errorf("db: %w", sqldb.ErrDBNotFound)
	}

	return nil
}
