package umbrelladb

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
)

func applyFilter(tenantID uuid.UUID, filter umbrellabus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	data["tenant_id"] = tenantID.String()
	wc := []string{"tenant_id = :tenant_id"}

	if filter.ID != nil {
		data["umbrella_id"] = filter.ID.String()
		wc = append(wc, "umbrella_id = :umbrella_id")
	}

	if filter.Number != nil {
		data["number"] = *filter.Number
		wc = append(wc, "number = :number")
	}

	if filter.Row != nil {
		data["row_label"] = *filter.Row
		wc = append(wc, "row_label = :row_label")
	}

	if filter.Type != nil {
		data["umbrella_type"] = filter.Type.String()
		wc = append(wc, "umbrella_type = :umbrella_type")
	}

	if filter.Active != nil {
		data["active"] = *filter.Active
		wc = append(wc, "active = :active")
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(wc, " AND "))
}
