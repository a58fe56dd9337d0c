package reservationbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

// Reservation represents a booking of one umbrella for a range of days.
type Reservation struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	UserID      uuid.UUID
	UmbrellaID  uuid.UUID
	Dates       daterange.Range
	Type        bookingtype.Type
	TotalPrice  decimal.Decimal
	Status      status.Status
	Notes       string
	BookingCode string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReservation contains information needed to create a new reservation.
type NewReservation struct {
	UserID     uuid.UUID
	UmbrellaID uuid.UUID
	Dates      daterange.Range
	Type       bookingtype.Type
	Notes      string
}

// Stats summarizes the reservations of a tenant.
type Stats struct {
	ByStatus map[status.Status]int
	Revenue  decimal.Decimal
}
