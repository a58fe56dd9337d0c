package reservationdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

type reservationDB struct {
	ID          uuid.UUID       `db:"reservation_id"`
	TenantID    uuid.UUID       `db:"tenant_id"`
	UserID      uuid.UUID       `db:"user_id"`
	UmbrellaID  uuid.UUID       `db:"umbrella_id"`
	StartDate   time.Time       `db:"start_date"`
	EndDate     time.Time       `db:"end_date"`
	BookingType string          `db:"booking_type"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Status      string          `db:"status"`
	Notes       string          `db:"notes"`
	BookingCode string          `db:"booking_code"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func toDBReservation(bus reservationbus.Reservation) reservationDB {
	return reservationDB{
		ID:          bus.ID,
		TenantID:    bus.TenantID,
		UserID:      bus.UserID,
		UmbrellaID:  bus.UmbrellaID,
		StartDate:   bus.Dates.Start(),
		EndDate:     bus.Dates.End(),
		BookingType: bus.Type.String(),
		TotalPrice:  bus.TotalPrice,
		Status:      bus.Status.String(),
		Notes:       bus.Notes,
		BookingCode: bus.BookingCode,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusReservation(db reservationDB) (reservationbus.Reservation, error) {
	dates, err := daterange.New(db.StartDate, db.EndDate)
	if err != nil {
		return reservationbus.Reservation{}, fmt.Errorf("parse dates: %w", err)
	}

	typ, err := bookingtype.Parse(db.BookingType)
	if err != nil {
		return reservationbus.Reservation{}, fmt.Errorf("parse booking type: %w", err)
	}

	st, err := status.Parse(db.Status)
	if err != nil {
		return reservationbus.Reservation{}, fmt.Errorf("parse status: %w", err)
	}

	return reservationbus.Reservation{
		ID:          db.ID,
		TenantID:    db.TenantID,
		UserID:      db.UserID,
		UmbrellaID:  db.UmbrellaID,
		Dates:       dates,
		Type:        typ,
		TotalPrice:  db.TotalPrice,
		Status:      st,
		Notes:       db.Notes,
		BookingCode: db.BookingCode,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}, nil
}

func toBusReservations(dbs []reservationDB) ([]reservationbus.Reservation, error) {
	bus := make([]reservationbus.Reservation, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusReservation(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
