package paymentbus

import "github.com/jcpaschoal/lido/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByID        = "payment_id"
	OrderByCreatedAt = "created_at"
	OrderByAmount    = "amount"
	OrderByStatus    = "status"
)
