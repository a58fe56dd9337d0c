package umbrelladb

import (
	"fmt"

	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/order"
)

var orderByFields = map[string]string{
	umbrellabus.OrderByID:     "umbrella_id",
	umbrellabus.OrderByNumber: "number",
	umbrellabus.OrderByRow:    "row_label",
	umbrellabus.OrderByType:   "umbrella_type",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
