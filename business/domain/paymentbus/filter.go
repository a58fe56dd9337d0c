package paymentbus

import (
	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/status"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID            *uuid.UUID
	ReservationID *uuid.UUID
	Status        *status.Status
	Method        *paymethod.Method
	ExternalRef   *string
}
