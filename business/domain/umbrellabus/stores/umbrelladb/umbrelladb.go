// Package umbrelladb contains umbrella related CRUD functionality.
package umbrelladb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
)

const columns = `umbrella_id, tenant_id, number, row_label, umbrella_type, description, pos_x, pos_y, active, created_at, updated_at`

// Store manages the set of APIs for umbrella database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (umbrellabus.Storer, error) {
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

// Create inserts a new umbrella into the database.
func (s *Store) Create(ctx context.Context, u umbrellabus.Umbrella) error {
	const q = `
	INSERT INTO "public"."umbrella"
		(umbrella_id, tenant_id, number, row_label, umbrella_type, description, pos_x, pos_y, active, created_at, updated_at)
	VALUES
		(:umbrella_id, :tenant_id, :number, :row_label, :umbrella_type, :description, :pos_x, :pos_y, :active, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUmbrella(u)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", mapDuplicate(err))
	}

	return nil
}

// Update replaces an umbrella document in the database.
func (s *Store) Update(ctx context.Context, u umbrellabus.Umbrella) error {
	const q = `
	UPDATE
		"public"."umbrella"
	SET
		number = :number,
		row_label = :row_label,
		umbrella_type = :umbrella_type,
		description = :description,
		pos_x = :pos_x,
		pos_y = :pos_y,
		active = :active,
		updated_at = :updated_at
	WHERE
		umbrella_id = :umbrella_id AND tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUmbrella(u)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", mapDuplicate(err))
	}

	return nil
}

// Delete removes an umbrella from the database.
func (s *Store) Delete(ctx context.Context, u umbrellabus.Umbrella) error {
	const q = `
	DELETE FROM
		"public"."umbrella"
	WHERE
		umbrella_id = :umbrella_id AND tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUmbrella(u)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Query retrieves a list of existing umbrellas from the database.
func (s *Store) Query(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter, orderBy order.By, page page.Page) ([]umbrellabus.Umbrella, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."umbrella"`

	buf := bytes.NewBufferString(q)
	applyFilter(tenantID, filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbUmbs []umbrellaDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbUmbs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUmbrellas(dbUmbs)
}

// Count returns the number of umbrellas matching the filter.
func (s *Store) Count(ctx context.Context, tenantID uuid.UUID, filter umbrellabus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		"public"."umbrella"`

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

// QueryByID gets the specified umbrella from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	return s.queryByID(ctx, tenantID, umbrellaID, "")
}

// QueryByIDForUpdate gets the specified umbrella and locks its row until the
// transaction ends.
func (s *Store) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.Umbrella, error) {
	return s.queryByID(ctx, tenantID, umbrellaID, " FOR UPDATE")
}

func (s *Store) queryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, lock string) (umbrellabus.Umbrella, error) {
	data := struct {
		ID       string `db:"umbrella_id"`
		TenantID string `db:"tenant_id"`
	}{
		ID:       umbrellaID.String(),
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."umbrella"
	WHERE
		umbrella_id = :umbrella_id AND tenant_id = :tenant_id`

	var dbUmb umbrellaDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q+lock, data, &dbUmb); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", umbrellabus.ErrNotFound)
		}
		return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", err)
	}

	return toBusUmbrella(dbUmb)
}

// QueryByNumber gets the umbrella with the specified number.
func (s *Store) QueryByNumber(ctx context.Context, tenantID uuid.UUID, number int) (umbrellabus.Umbrella, error) {
	data := struct {
		Number   int    `db:"number"`
		TenantID string `db:"tenant_id"`
	}{
		Number:   number,
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		` + columns + `
	FROM
		"public"."umbrella"
	WHERE
		number = :number AND tenant_id = :tenant_id`

	var dbUmb umbrellaDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbUmb); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", umbrellabus.ErrNotFound)
		}
		return umbrellabus.Umbrella{}, fmt.Errorf("db: %w", err)
	}

	return toBusUmbrella(dbUmb)
}

// CountReservations reports how many reservations reference the umbrella
// and how many of those still hold it.
func (s *Store) CountReservations(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (umbrellabus.ReservationCount, error) {
	data := map[string]any{
		"umbrella_id": umbrellaID.String(),
		"tenant_id":   tenantID.String(),
		"pending":     status.Pending.String(),
		"confirmed":   status.Confirmed.String(),
		"paid":        status.Paid.String(),
	}

	const q = `
	SELECT
		count(1) FILTER (WHERE status IN (:pending, :confirmed, :paid)) AS active,
		count(1) AS total
	FROM
		"public"."reservation"
	WHERE
		umbrella_id = :umbrella_id AND tenant_id = :tenant_id`

	var result struct {
		Active int `db:"active"`
		Total  int `db:"total"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		return umbrellabus.ReservationCount{}, fmt.Errorf("db: %w", err)
	}

	return umbrellabus.ReservationCount{Active: result.Active, Total: result.Total}, nil
}

// LockInventory locks the tenant row so concurrent umbrella creations for
// the same tenant see each other's counts.
func (s *Store) LockInventory(ctx context.Context, tenantID uuid.UUID) error {
	data := struct {
		TenantID string `db:"tenant_id"`
	}{
		TenantID: tenantID.String(),
	}

	const q = `
	SELECT
		tenant_id
	FROM
		"public"."tenant"
	WHERE
		tenant_id = :tenant_id
	FOR UPDATE`

	var result struct {
		TenantID uuid.UUID `db:"tenant_id"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	return nil
}

func mapDuplicate(err error) error {
	var dupErr sqldb.ErrDBDuplicatedEntry
	if errors.As(err, &dupErr) && dupErr.Column == "uq_umbrella_tenant_number" {
		return umbrellabus.ErrDuplicateNumber
	}
	return err
}
