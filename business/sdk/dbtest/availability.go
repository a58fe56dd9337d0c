package dbtest

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/daterange"
)

type availabilityStore struct {
	db *DB
}

func (s availabilityStore) NewWithTx(tx sqldb.CommitRollbacker) (availabilitybus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s availabilityStore) CountOverlapping(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, dr daterange.Range) (int, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var n int
	for _, r := range s.db.reservations {
		if r.TenantID == tenantID && holds(r, umbrellaID, dr) {
			n++
		}
	}

	return n, nil
}

func (s availabilityStore) QueryAvailable(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, filter availabilitybus.QueryFilter) ([]umbrellabus.Umbrella, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []umbrellabus.Umbrella
	for _, u := range s.db.umbrellas {
		switch {
		case u.TenantID != tenantID || !u.Active:
		case filter.Type != nil && !u.Type.Equal(*filter.Type):
		case filter.Row != nil && u.Row != *filter.Row:
		case s.booked(u.ID, dr):
		default:
			out = append(out, u)
		}
	}

	slices.SortFunc(out, func(a, b umbrellabus.Umbrella) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return out, nil
}

func (s availabilityStore) booked(umbrellaID uuid.UUID, dr daterange.Range) bool {
	for _, r := range s.db.reservations {
		if holds(r, umbrellaID, dr) {
			return true
		}
	}

	return false
}

// holds reports whether r keeps the umbrella busy on a day of dr.
func holds(r reservationbus.Reservation, umbrellaID uuid.UUID, dr daterange.Range) bool {
	return r.UmbrellaID == umbrellaID && !r.Status.IsReleased() && r.Dates.Overlaps(dr)
}
