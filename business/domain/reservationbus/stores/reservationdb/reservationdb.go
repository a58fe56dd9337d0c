// Package reservationdb contains reservation related CRUD functionality.
package reservationdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const columns = `reservation_id, tenant_id, user_id, umbrella_id, start_date, end_date, booking_type, total_price, status, notes, booking_code, created_at, updated_at`

// Store manages the set of APIs for reservation database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (reservationbus.Storer, error) {
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

// Create inserts a new reservation into the database.
func (s *Store) Create(ctx context.Context, r reservationbus.Reservation) error {
	const q = `
	INSERT INTO "public"."reservation"
		(reservation_id, tenant_id, user_id, umbrella_id, start_date, end_date, booking_type, total_price, status, notes, booking_code, created_at, updated_at)
	VALUES
		(:reservation_id, :tenant_id, :user_id, :umbrella_id, :start_date, :end_date, :booking_type, :total_price, :status, :notes, :booking_code, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBReservation(r)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", mapConstraint(err))
	}

	return nil
}

// Update replaces the mutable fields of a reservation.
func (s *Store) Update(ctx context.Context, r reservationbus.Reservation) error {
	const q = `
	UPDATE
		"public"."reservation"
	SET
		status = :status,
		notes = :notes,
		updated_at = :updated_at
	WHERE
		reservation_id = :reservation_id AND tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBReservation(r)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", mapConstraint(err))
	}

	return nil
}

// Query retrieves a list of existing reservations from the database.
func (s *Store) Query(ctx context.Context, tenantID uuid.UUID, filter reservationbus.QueryFilter, orderBy order.By, page page.Page) ([]reservationbus.Reservation, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."reservation"`

	buf := bytes.NewBufferString(q)
	applyFilter(tenantID, filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbRess []reservationDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbRess); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusReservations(dbRess)
}

// Count returns the number of reservations matching the filter.
func (s *Store) Count(ctx context.Context, tenantID uuid.UUID, filter reservationbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		"public"."reservation"`

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

// QueryByID gets the specified reservation from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (reservationbus.Reservation, error) {
	return s.queryByID(ctx, tenantID, reservationID, "")
}

// QueryByIDForUpdate gets the specified reservation and locks its row until
// the transaction ends.
func (s *Store) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (reservationbus.Reservation, error) {
	return s.queryByID(ctx, tenantID, reservationID, " FOR UPDATE")
}

func (s *Store) queryByID(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, lock string) (reservationbus.Reservation, error) {
	data := struct {
		ID       string `db:"reservation_id"`
		TenantID string `db:"tenant_id"`
	}{
		ID:       reservationID.String(),
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."reservation"
	WHERE
		reservation_id = :reservation_id AND tenant_id = :tenant_id`

	var dbRes reservationDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q+lock, data, &dbRes); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return reservationbus.Reservation{}, fmt.Errorf("db: %w", reservationbus.ErrNotFound)
		}
		return reservationbus.Reservation{}, fmt.Errorf("db: %w", err)
	}

	return toBusReservation(dbRes)
}

// QueryByCode gets the reservation with the specified booking code.
func (s *Store) QueryByCode(ctx context.Context, tenantID uuid.UUID, code string) (reservationbus.Reservation, error) {
	data := struct {
		Code     string `db:"booking_code"`
		TenantID string `db:"tenant_id"`
	}{
		Code:     code,
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."reservation"
	WHERE
		booking_code = :booking_code AND tenant_id = :tenant_id`

	var dbRes reservationDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbRes); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return reservationbus.Reservation{}, fmt.Errorf("db: %w", reservationbus.ErrNotFound)
		}
		return reservationbus.Reservation{}, fmt.Errorf("db: %w", err)
	}

	return toBusReservation(dbRes)
}

// CodeExists reports whether any tenant already holds the booking code.
func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	data := struct {
		Code string `db:"booking_code"`
	}{
		Code: code,
	}

	const q = `
	SELECT
		EXISTS (SELECT 1 FROM "public"."reservation" WHERE booking_code = :booking_code) AS found`

	var result struct {
		Found bool `db:"found"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		return false, fmt.Errorf("db: %w", err)
	}

	return result.Found, nil
}

// CountByStatus groups the reservations of the tenant by status.
func (s *Store) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[status.Status]int, error) {
	data := struct {
		TenantID string `db:"tenant_id"`
	}{
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		status, count(1) AS count
	FROM
		"public"."reservation"
	WHERE
		tenant_id = :tenant_id
	GROUP BY
		status`

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &rows); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	counts := make(map[status.Status]int, len(rows))
	for _, row := range rows {
		st, err := status.Parse(row.Status)
		if err != nil {
			return nil, fmt.Errorf("parse status: %w", err)
		}
		counts[st] = row.Count
	}

	return counts, nil
}

// Revenue sums the prices of the PAID and COMPLETED reservations.
func (s *Store) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	data := map[string]any{
		"tenant_id": tenantID.String(),
		"paid":      status.Paid.String(),
		"completed": status.Completed.String(),
	}

	const q = `
	SELECT
		COALESCE(sum(total_price), 0) AS revenue
	FROM
		"public"."reservation"
	WHERE
		tenant_id = :tenant_id AND status IN (:paid, :completed)`

	var result struct {
		Revenue decimal.Decimal `db:"revenue"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		return decimal.Zero, fmt.Errorf("db: %w", err)
	}

	return result.Revenue, nil
}

// QueryFinished returns PAID reservations of every tenant that ended before
// the specified day.
func (s *Store) QueryFinished(ctx context.Context, before time.Time, limit int) ([]reservationbus.Reservation, error) {
	data := map[string]any{
		"before": before,
		"paid":   status.Paid.String(),
		"limit":  limit,
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."reservation"
	WHERE
		status = :paid AND end_date < :before
	ORDER BY
		end_date, reservation_id
	LIMIT :limit`

	var dbRess []reservationDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbRess); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusReservations(dbRess)
}

// QueryStalePending returns PENDING reservations of every tenant created
// before the specified instant.
func (s *Store) QueryStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]reservationbus.Reservation, error) {
	data := map[string]any{
		"created_before": createdBefore.UTC(),
		"pending":        status.Pending.String(),
		"limit":          limit,
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."reservation"
	WHERE
		status = :pending AND created_at < :created_before
	ORDER BY
		created_at, reservation_id
	LIMIT :limit`

	var dbRess []reservationDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbRess); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusReservations(dbRess)
}

func mapConstraint(err error) error {
	var exErr sqldb.ErrDBExcluded
	if errors.As(err, &exErr) && exErr.Constraint == "ex_reservation_overlap" {
		return reservationbus.ErrDateRangeConflict
	}

	var dupErr sqldb.ErrDBDuplicatedEntry
	if errors.As(err, &dupErr) && dupErr.Column == "uq_reservation_booking_code" {
		return reservationbus.ErrDuplicateCode
	}

	return err
}
