package reservationbus

import "github.com/jcpaschoal/lido/business/types/status"

// allowedFrom lists, per target status, the statuses a reservation may move
// from. REFUNDED is absent: a refund cancels the reservation through the
// payment ledger.
var allowedFrom = map[status.Status][]status.Status{
	status.Confirmed: {status.Pending},
	status.Paid:      {status.Pending, status.Confirmed},
	status.Completed: {status.Paid},
	status.Cancelled: {status.Pending, status.Confirmed, status.Paid},
}

// CanTransition reports whether a reservation in from may move to to.
func CanTransition(from status.Status, to status.Status) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}
