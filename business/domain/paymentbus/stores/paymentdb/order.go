package paymentdb

import (
	"fmt"

	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/sdk/order"
)

var orderByFields = map[string]string{
	paymentbus.OrderByID:        "p.payment_id",
	paymentbus.OrderByCreatedAt: "p.created_at",
	paymentbus.OrderByAmount:    "p.amount",
	paymentbus.OrderByStatus:    "p.status",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
