// Package paymentdb contains payment related CRUD functionality. The
// payment table has no tenant column; every read joins the reservation to
// scope by tenant.
package paymentdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const selectPayment = `
	SELECT
		p.payment_id, r.tenant_id, p.reservation_id, p.method, p.amount, p.status,
		p.external_ref, p.paid_at, p.notes, p.created_at, p.updated_at
	FROM
		"public"."payment" AS p
	JOIN
		"public"."reservation" AS r ON r.reservation_id = p.reservation_id`

// Store manages the set of APIs for payment database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (paymentbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new payment into the database.
func (s *Store) Create(ctx context.Context, p paymentbus.Payment) error {
	const q = `
	INSERT INTO "public"."payment"
		(payment_id, reservation_id, method, amount, status, external_ref, paid_at, notes, created_at, updated_at)
	VALUES
		(:payment_id, :reservation_id, :method, :amount, :status, :external_ref, :paid_at, :notes, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBPayment(p)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) && dupErr.Column == "uq_payment_reservation" {
			return fmt.Errorf("namedexeccontext: %w", paymentbus.ErrDuplicatePayment)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a payment.
func (s *Store) Update(ctx context.Context, p paymentbus.Payment) error {
	const q = `
	UPDATE
		"public"."payment"
	SET
		status = :status,
		external_ref = :external_ref,
		paid_at = :paid_at,
		notes = :notes,
		updated_at = :updated_at
	WHERE
		payment_id = :payment_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBPayment(p)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing payments from the database.
func (s *Store) Query(ctx context.Context, tenantID uuid.UUID, filter paymentbus.QueryFilter, orderBy order.By, page page.Page) ([]paymentbus.Payment, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	buf := bytes.NewBufferString(selectPayment)
	applyFilter(tenantID, filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbPays []paymentDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbPays); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusPayments(dbPays)
}

// Count returns the number of payments matching the filter.
func (s *Store) Count(ctx context.Context, tenantID uuid.UUID, filter paymentbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		"public"."payment" AS p
	JOIN
		"public"."reservation" AS r ON r.reservation_id = p.reservation_id`

	buf := bytes.NewBufferString(q)
	applyFilter(tenantID, filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryByID gets the specified payment from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (paymentbus.Payment, error) {
	return s.queryOne(ctx, tenantID, paymentbus.QueryFilter{ID: &paymentID}, "")
}

// QueryByIDForUpdate gets the specified payment and locks its row until the
// transaction ends.
func (s *Store) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (paymentbus.Payment, error) {
	return s.queryOne(ctx, tenantID, paymentbus.QueryFilter{ID: &paymentID}, " FOR UPDATE OF p")
}

// QueryByReservation gets the payment of the specified reservation.
func (s *Store) QueryByReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (paymentbus.Payment, error) {
	return s.queryOne(ctx, tenantID, paymentbus.QueryFilter{ReservationID: &reservationID}, "")
}

// QueryByExternalRef gets the payment carrying the external reference.
func (s *Store) QueryByExternalRef(ctx context.Context, tenantID uuid.UUID, ref string) (paymentbus.Payment, error) {
	return s.queryOne(ctx, tenantID, paymentbus.QueryFilter{ExternalRef: &ref}, "")
}

func (s *Store) queryOne(ctx context.Context, tenantID uuid.UUID, filter paymentbus.QueryFilter, lock string) (paymentbus.Payment, error) {
	data := map[string]any{}

	buf := bytes.NewBufferString(selectPayment)
	applyFilter(tenantID, filter, data, buf)
	buf.WriteString(lock)

	var dbPay paymentDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &dbPay); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return paymentbus.Payment{}, fmt.Errorf("db: %w", paymentbus.ErrNotFound)
		}
		return paymentbus.Payment{}, fmt.Errorf("db: %w", err)
	}

	return toBusPayment(dbPay)
}

// Revenue sums the amounts of the PAID payments of the tenant.
func (s *Store) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	data := map[string]any{
		"tenant_id": tenantID.String(),
		"paid":      status.Paid.String(),
	}

	const q = `
	SELECT
		COALESCE(sum(p.amount), 0) AS revenue
	FROM
		"public"."payment" AS p
	JOIN
		"public"."reservation" AS r ON r.reservation_id = p.reservation_id
	WHERE
		r.tenant_id = :tenant_id AND p.status = :paid`

	var result struct {
		Revenue decimal.Decimal `db:"revenue"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		return decimal.Zero, fmt.Errorf("db: %w", err)
	}

	return result.Revenue, nil
}
