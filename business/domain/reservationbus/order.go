package reservationbus

import "github.com/jcpaschoal/lido/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByStartDate, order.ASC)

// Set of fields that the results can be ordered by.
const (
	OrderByID         = "reservation_id"
	OrderByStartDate  = "start_date"
	OrderByCreatedAt  = "created_at"
	OrderByTotalPrice = "total_price"
	OrderByStatus     = "status"
)
