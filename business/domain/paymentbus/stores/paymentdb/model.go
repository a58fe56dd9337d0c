package paymentdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

type paymentDB struct {
	ID            uuid.UUID       `db:"payment_id"`
	TenantID      uuid.UUID       `db:"tenant_id"`
	ReservationID uuid.UUID       `db:"reservation_id"`
	Method        string          `db:"method"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	ExternalRef   sql.NullString  `db:"external_ref"`
	PaidAt        sql.NullTime    `db:"paid_at"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func toDBPayment(bus paymentbus.Payment) paymentDB {
	db := paymentDB{
		ID:            bus.ID,
		TenantID:      bus.TenantID,
		ReservationID: bus.ReservationID,
		Method:        bus.Method.String(),
		Amount:        bus.Amount,
		Status:        bus.Status.String(),
		ExternalRef:   sql.NullString{String: bus.ExternalRef, Valid: bus.ExternalRef != ""},
		Notes:         bus.Notes,
		CreatedAt:     bus.CreatedAt.UTC(),
		UpdatedAt:     bus.UpdatedAt.UTC(),
	}

	if bus.PaidAt != nil {
		db.PaidAt = sql.NullTime{Time: bus.PaidAt.UTC(), Valid: true}
	}

	return db
}

func toBusPayment(db paymentDB) (paymentbus.Payment, error) {
	method, err := paymethod.Parse(db.Method)
	if err != nil {
		return paymentbus.Payment{}, fmt.Errorf("parse method: %w", err)
	}

	st, err := status.Parse(db.Status)
	if err != nil {
		return paymentbus.Payment{}, fmt.Errorf("parse status: %w", err)
	}

	p := paymentbus.Payment{
		ID:            db.ID,
		TenantID:      db.TenantID,
		ReservationID: db.ReservationID,
		Method:        method,
		Amount:        db.Amount,
		Status:        st,
		ExternalRef:   db.ExternalRef.String,
		Notes:         db.Notes,
		CreatedAt:     db.CreatedAt.In(time.Local),
		UpdatedAt:     db.UpdatedAt.In(time.Local),
	}

	if db.PaidAt.Valid {
		paidAt := db.PaidAt.Time.In(time.Local)
		p.PaidAt = &paidAt
	}

	return p, nil
}

func toBusPayments(dbs []paymentDB) ([]paymentbus.Payment, error) {
	bus := make([]paymentbus.Payment, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusPayment(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
