package reservationdb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/types/status"
)

func applyFilter(tenantID uuid.UUID, filter reservationbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	data["tenant_id"] = tenantID.String()
	wc := []string{"tenant_id = :tenant_id"}

	if filter.ID != nil {
		data["reservation_id"] = filter.ID.String()
		wc = append(wc, "reservation_id = :reservation_id")
	}

	if filter.UserID != nil {
		data["user_id"] = filter.UserID.String()
		wc = append(wc, "user_id = :user_id")
	}

	if filter.UmbrellaID != nil {
		data["umbrella_id"] = filter.UmbrellaID.String()
		wc = append(wc, "umbrella_id = :umbrella_id")
	}

	if filter.BookingCode != nil {
		data["booking_code"] = *filter.BookingCode
		wc = append(wc, "booking_code = :booking_code")
	}

	if len(filter.Statuses) > 0 {
		wc = append(wc, "status IN ("+statusParams(filter.Statuses, data)+")")
	}

	if filter.Overlaps != nil {
		data["overlap_start"] = filter.Overlaps.Start()
		data["overlap_end"] = filter.Overlaps.End()
		wc = append(wc, "start_date <= :overlap_end AND end_date >= :overlap_start")
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(wc, " AND "))
}

// statusParams binds every status as its own named parameter, since sqlx
// named queries do not expand slices.
func statusParams(ss []status.Status, data map[string]any) string {
	names := make([]string, len(ss))
	for i, s := range ss {
		key := fmt.Sprintf("status_%d", i)
		data[key] = s.String()
		names[i] = ":" + key
	}

	return strings.Join(names, ", ")
}
