package dbtest

import (
	"cmp"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

var paymentOrder = map[string]func(a, b paymentbus.Payment) int{
	paymentbus.OrderByID: paymentByID,
	paymentbus.OrderByCreatedAt: func(a, b paymentbus.Payment) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
	paymentbus.OrderByAmount: func(a, b paymentbus.Payment) int {
		return a.Amount.Cmp(b.Amount)
	},
	paymentbus.OrderByStatus: func(a, b paymentbus.Payment) int {
		return cmp.Compare(a.Status.String(), b.Status.String())
	},
}

func paymentByID(a, b paymentbus.Payment) int {
	return cmp.Compare(a.ID.String(), b.ID.String())
}

type paymentStore struct {
	db *DB
}

func (s paymentStore) NewWithTx(tx sqldb.CommitRollbacker) (paymentbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s paymentStore) Create(ctx context.Context, p paymentbus.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, p2 := range s.db.payments {
		if p2.ReservationID == p.ReservationID {
			return fmt.Errorf("create: %w", paymentbus.ErrDuplicatePayment)
		}
	}

	s.db.payments[p.ID] = p
	return nil
}

func (s paymentStore) Update(ctx context.Context, p paymentbus.Payment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.payments[p.ID]; exists {
		s.db.payments[p.ID] = p
	}
	return nil
}

func (s paymentStore) Query(ctx context.Context, tenantID uuid.UUID, filter paymentbus.QueryFilter, orderBy order.By, pg page.Page) ([]paymentbus.Payment, error) {
	return sortPage(s.filter(tenantID, filter), orderBy, pg, paymentOrder, paymentByID)
}

func (s paymentStore) Count(ctx context.Context, tenantID uuid.UUID, filter paymentbus.QueryFilter) (int, error) {
	return len(s.filter(tenantID, filter)), nil
}

// filter scopes by the tenant of the reservation, as the sql store does.
func (s paymentStore) filter(tenantID uuid.UUID, filter paymentbus.QueryFilter) []paymentbus.Payment {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var out []paymentbus.Payment
	for _, p := range s.db.payments {
		r, exists := s.db.reservations[p.ReservationID]

		switch {
		case !exists || r.TenantID != tenantID:
		case filter.ID != nil && p.ID != *filter.ID:
		case filter.ReservationID != nil && p.ReservationID != *filter.ReservationID:
		case filter.Status != nil && !p.Status.Equal(*filter.Status):
		case filter.Method != nil && !p.Method.Equal(*filter.Method):
		case filter.ExternalRef != nil && p.ExternalRef != *filter.ExternalRef:
		default:
			p.TenantID = r.TenantID
			out = append(out, p)
		}
	}

	return out
}

func (s paymentStore) one(tenantID uuid.UUID, filter paymentbus.QueryFilter) (paymentbus.Payment, error) {
	ps := s.filter(tenantID, filter)
	if len(ps) == 0 {
		return paymentbus.Payment{}, fmt.Errorf("db: %w", paymentbus.ErrNotFound)
	}

	return ps[0], nil
}

func (s paymentStore) QueryByID(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (paymentbus.Payment, error) {
	return s.one(tenantID, paymentbus.QueryFilter{ID: &paymentID})
}

func (s paymentStore) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (paymentbus.Payment, error) {
	return s.one(tenantID, paymentbus.QueryFilter{ID: &paymentID})
}

func (s paymentStore) QueryByReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (paymentbus.Payment, error) {
	return s.one(tenantID, paymentbus.QueryFilter{ReservationID: &reservationID})
}

func (s paymentStore) QueryByExternalRef(ctx context.Context, tenantID uuid.UUID, ref string) (paymentbus.Payment, error) {
	return s.one(tenantID, paymentbus.QueryFilter{ExternalRef: &ref})
}

func (s paymentStore) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	paid := status.Paid

	sum := decimal.Zero
	for _, p := range s.filter(tenantID, paymentbus.QueryFilter{Status: &paid}) {
		sum = sum.Add(p.Amount)
	}

	return sum, nil
}
