package paymentdb

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
)

func applyFilter(tenantID uuid.UUID, filter paymentbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	data["tenant_id"] = tenantID.String()
	wc := []string{"r.tenant_id = :tenant_id"}

	if filter.ID != nil {
		data["payment_id"] = filter.ID.String()
		wc = append(wc, "p.payment_id = :payment_id")
	}

	if filter.ReservationID != nil {
		data["reservation_id"] = filter.ReservationID.String()
		wc = append(wc, "p.reservation_id = :reservation_id")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "p.status = :status")
	}

	if filter.Method != nil {
		data["method"] = filter.Method.String()
		wc = append(wc, "p.method = :method")
	}

	if filter.ExternalRef != nil {
		data["external_ref"] = *filter.ExternalRef
		wc = append(wc, "p.external_ref = :external_ref")
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(wc, " AND "))
}
