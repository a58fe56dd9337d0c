package reservationdb

import (
	"fmt"

	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
)

var orderByFields = map[string]string{
	reservationbus.OrderByID:         "reservation_id",
	reservationbus.OrderByStartDate:  "start_date",
	reservationbus.OrderByCreatedAt:  "created_at",
	reservationbus.OrderByTotalPrice: "total_price",
	reservationbus.OrderByStatus:     "status",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction + ", reservation_id", nil
}
