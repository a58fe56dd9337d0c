package reservationbus

import (
	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/status"
)

// QueryFilter holds the available fields a query can be filtered on. The
// tenant is not part of the filter; every query takes it explicitly.
type QueryFilter struct {
	ID          *uuid.UUID
	UserID      *uuid.UUID
	UmbrellaID  *uuid.UUID
	BookingCode *string
	Statuses    []status.Status
	Overlaps    *daterange.Range
}
