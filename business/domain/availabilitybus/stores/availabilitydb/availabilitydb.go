// Package availabilitydb runs the interval overlap queries behind the
// availability index.
package availabilitydb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for availability database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (availabilitybus.Storer, error) {
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

// CountOverlapping counts the reservations holding the umbrella on any day
// of dr. Two inclusive ranges overlap when each starts on or before the
// other ends.
func (s *Store) CountOverlapping(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, dr daterange.Range) (int, error) {
	data := map[string]any{
		"tenant_id":   tenantID.String(),
		"umbrella_id": umbrellaID.String(),
		"start_date":  dr.Start(),
		"end_date":    dr.End(),
		"cancelled":   status.Cancelled.String(),
		"refunded":    status.Refunded.String(),
	}

	const q = `
	SELECT
		count(1)
	FROM
		"public"."reservation"
	WHERE
		tenant_id = :tenant_id
		AND umbrella_id = :umbrella_id
		AND status NOT IN (:cancelled, :refunded)
		AND start_date <= :end_date
		AND end_date >= :start_date`

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// QueryAvailable returns the active umbrellas of the tenant with no
// overlapping reservation.
func (s *Store) QueryAvailable(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, filter availabilitybus.QueryFilter) ([]umbrellabus.Umbrella, error) {
	data := map[string]any{
		"tenant_id":  tenantID.String(),
		"start_date": dr.Start(),
		"end_date":   dr.End(),
		"cancelled":  status.Cancelled.String(),
		"refunded":   status.Refunded.String(),
	}

	const q = `
	SELECT
		u.umbrella_id, u.tenant_id, u.number, u.row_label, u.umbrella_type, u.description,
		u.pos_x, u.pos_y, u.active, u.created_at, u.updated_at
	FROM
		"public"."umbrella" AS u
	WHERE
		u.tenant_id = :tenant_id
		AND u.active = TRUE
		AND NOT EXISTS (
			SELECT 1
			FROM "public"."reservation" AS r
			WHERE
				r.umbrella_id = u.umbrella_id
				AND r.status NOT IN (:cancelled, :refunded)
				AND r.start_date <= :end_date
				AND r.end_date >= :start_date
		)`

	buf := bytes.NewBufferString(q)

	if filter.Type != nil {
		data["umbrella_type"] = filter.Type.String()
		buf.WriteString(" AND u.umbrella_type = :umbrella_type")
	}

	if filter.Row != nil {
		data["row_label"] = *filter.Row
		buf.WriteString(" AND u.row_label = :row_label")
	}

	buf.WriteString(" ORDER BY u.umbrella_id")

	var dbUmbs []umbrellaDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbUmbs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUmbrellas(dbUmbs)
}
