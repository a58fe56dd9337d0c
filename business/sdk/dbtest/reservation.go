package dbtest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

var reservationOrder = map[string]func(a, b reservationbus.Reservation) int{
	reservationbus.OrderByID: reservationByID,
	reservationbus.OrderByStartDate: func(a, b reservationbus.Reservation) int {
		return a.Dates.Start().Compare(b.Dates.Start())
	},
	reservationbus.OrderByCreatedAt: func(a, b reservationbus.Reservation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	reservationbus.OrderByTotalPrice: func(a, b reservationbus.Reservation) int {
		return a.TotalPrice.Cmp(b.TotalPrice)
	},
	reservationbus.OrderByStatus: func(a, b reservationbus.Reservation) int {
		return cmp.Compare(a.Status.String(), b.Status.String())
	},
}

func reservationByID(a, b reservationbus.Reservation) int {
	return cmp.Compare(a.ID.String(), b.ID.String())
}

type reservationStore struct {
	db *DB
}

func (s reservationStore) NewWithTx(tx sqldb.CommitRollbacker) (reservationbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s reservationStore) Create(ctx context.Context, r reservationbus.Reservation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, r2 := range s.db.reservations {
		if r2.BookingCode == r.BookingCode {
			return fmt.Errorf("create: %w", reservationbus.ErrDuplicateCode)
		}
	}

	if s.overlaps(r) {
		return fmt.Errorf("create: %w", reservationbus.ErrDateRangeConflict)
	}

	s.db.reservations[r.ID] = r
	return nil
}

func (s reservationStore) Update(ctx context.Context, r reservationbus.Reservation) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, exists := s.db.reservations[r.ID]
	if !exists || cur.TenantID != r.TenantID {
		return nil
	}

	cur.Status = r.Status
	cur.Notes = r.Notes
	cur.UpdatedAt = r.UpdatedAt

	if s.overlaps(cur) {
		return fmt.Errorf("update: %w", reservationbus.ErrDateRangeConflict)
	}

	s.db.reservations[r.ID] = cur
	return nil
}

// overlaps mirrors the ex_reservation_overlap exclusion constraint.
func (s reservationStore) overlaps(r reservationbus.Reservation) bool {
	if r.Status.IsReleased() {
		return false
	}

	for _, r2 := range s.db.reservations {
		if r2.ID != r.ID && holds(r2, r.UmbrellaID, r.Dates) {
			return true
		}
	}

	return false
}

func (s reservationStore) Query(ctx context.Context, tenantID uuid.UUID, filter reservationbus.QueryFilter, orderBy order.By, pg page.Page) ([]reservationbus.Reservation, error) {
	return sortPage(s.filter(tenantID, filter), orderBy, pg, reservationOrder, reservationByID)
}

func (s reservationStore) Count(ctx context.Context, tenantID uuid.UUID, filter reservationbus.QueryFilter) (int, error) {
	return len(s.filter(tenantID, filter)), nil
}

func (s reservationStore) filter(tenantID uuid.UUID, filter reservationbus.QueryFilter) []reservationbus.Reservation {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []reservationbus.Reservation
	for _, r := range s.db.reservations {
		switch {
		case r.TenantID != tenantID:
		case filter.ID != nil && r.ID != *filter.ID:
		case filter.UserID != nil && r.UserID != *filter.UserID:
		case filter.UmbrellaID != nil && r.UmbrellaID != *filter.UmbrellaID:
		case filter.BookingCode != nil && r.BookingCode != *filter.BookingCode:
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status):
		case filter.Overlaps != nil && !r.Dates.Overlaps(*filter.Overlaps):
		default:
			out = append(out, r)
		}
	}

	return out
}

func (s reservationStore) QueryByID(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (reservationbus.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, exists := s.db.reservations[reservationID]
	if !exists || r.TenantID != tenantID {
		return reservationbus.Reservation{}, fmt.Errorf("db: %w", reservationbus.ErrNotFound)
	}

	return r, nil
}

func (s reservationStore) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (reservationbus.Reservation, error) {
	return s.QueryByID(ctx, tenantID, reservationID)
}

func (s reservationStore) QueryByCode(ctx context.Context, tenantID uuid.UUID, code string) (reservationbus.Reservation, error) {
	rs := s.filter(tenantID, reservationbus.QueryFilter{BookingCode: &code})
	if len(rs) == 0 {
		return reservationbus.Reservation{}, fmt.Errorf("db: %w", reservationbus.ErrNotFound)
	}

	return rs[0], nil
}

func (s reservationStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, r := range s.db.reservations {
		if r.BookingCode == code {
			return true, nil
		}
	}

	return false, nil
}

func (s reservationStore) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[status.Status]int, error) {
	counts := make(map[status.Status]int)
	for _, r := range s.filter(tenantID, reservationbus.QueryFilter{}) {
		counts[r.Status]++
	}

	return counts, nil
}

func (s reservationStore) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	filter := reservationbus.QueryFilter{
		Statuses: []status.Status{status.Paid, status.Completed},
	}

	sum := decimal.Zero
	for _, r := range s.filter(tenantID, filter) {
		sum = sum.Add(r.TotalPrice)
	}

	return sum, nil
}

func (s reservationStore) QueryFinished(ctx context.Context, before time.Time, limit int) ([]reservationbus.Reservation, error) {
	return s.sweep(limit, func(r reservationbus.Reservation) bool {
		return r.Status.Equal(status.Paid) && r.Dates.End().Before(before)
	}, func(a, b reservationbus.Reservation) int {
		return a.Dates.End().Compare(b.Dates.End())
	})
}

func (s reservationStore) QueryStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]reservationbus.Reservation, error) {
	rs, err := s.sweep(limit, func(r reservationbus.Reservation) bool {
		return r.Status.Equal(status.Pending) && r.CreatedAt.Before(createdBefore)
	}, func(a, b reservationbus.Reservation) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.db.mu.RLock()
	fn := s.db.afterStaleRead
	s.db.mu.RUnlock()

	if fn != nil {
		fn()
	}

	return rs, nil
}

func (s reservationStore) sweep(limit int, match func(reservationbus.Reservation) bool, less func(a, b reservationbus.Reservation) int) ([]reservationbus.Reservation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []reservationbus.Reservation
	for _, r := range s.db.reservations {
		if match(r) {
			out = append(out, r)
		}
	}

	slices.SortFunc(out, func(a, b reservationbus.Reservation) int {
		if c := less(a, b); c != 0 {
			return c
		}
		return reservationByID(a, b)
	})

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// AfterStaleRead registers fn to run each time the stale PENDING
// reservations have been read, before they are returned. Sweep tests use it
// to change a reservation between the read and the expiry.
func (db *DB) AfterStaleRead(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.afterStaleRead = fn
}

// Backdate moves the creation time of a reservation into the past so sweep
// tests do not have to wait.
func (db *DB) Backdate(reservationID uuid.UUID, createdAt time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if r, exists := db.reservations[reservationID]; exists {
		r.CreatedAt = createdAt
		db.reservations[reservationID] = r
	}
}
