package umbrellabus

import "github.com/jcpaschoal/lido/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByNumber, order.ASC)

// Set of fields that the results can be ordered by.
const (
	OrderByID     = "umbrella_id"
	OrderByNumber = "number"
	OrderByRow    = "row"
	OrderByType   = "type"
)
