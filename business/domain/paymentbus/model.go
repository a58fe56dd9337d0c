package paymentbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/shopspring/decimal"
)

// Payment represents the single settlement attached to a reservation. The
// tenant is the tenant of the reservation.
type Payment struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ReservationID uuid.UUID
	Method        paymethod.Method
	Amount        decimal.Decimal
	Status        status.Status
	ExternalRef   string
	PaidAt        *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewPayment contains information needed to create a new payment.
type NewPayment struct {
	ReservationID uuid.UUID
	Method        paymethod.Method
	Amount        decimal.Decimal
	ExternalRef   string
	Notes         string
}
