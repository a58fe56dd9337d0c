package pricing_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/domain/pricing"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name  string
		ut    umbrellatype.Type
		start string
		end   string
		bt    bookingtype.Type
		want  string
	}{
		{"week standard daily", umbrellatype.Standard, "2024-07-01", "2024-07-07", bookingtype.Daily, "210.00"},
		{"three days", umbrellatype.Standard, "2024-07-01", "2024-07-03", bookingtype.Daily, "90.00"},
		{"single day", umbrellatype.Standard, "2024-07-01", "2024-07-01", bookingtype.Daily, "30.00"},
		{"premium weekly", umbrellatype.Premium, "2024-07-01", "2024-07-07", bookingtype.Weekly, "283.50"},
		{"vip monthly", umbrellatype.VIP, "2024-07-01", "2024-07-31", bookingtype.Monthly, "1488.00"},
		{"family yearly", umbrellatype.Family, "2024-06-01", "2024-09-30", bookingtype.Yearly, "3952.80"},
		{"category ignores length", umbrellatype.Standard, "2024-07-01", "2024-07-02", bookingtype.Yearly, "36.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr := daterange.MustParse(tt.start, tt.end)
			got := pricing.Price(tt.ut, dr, tt.bt)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestPriceIsDeterministic(t *testing.T) {
	dr := daterange.MustParse("2024-07-01", "2024-07-07")

	first := pricing.Price(umbrellatype.Family, dr, bookingtype.Weekly)
	for i := 0; i < 100; i++ {
		assert.True(t, first.Equal(pricing.Price(umbrellatype.Family, dr, bookingtype.Weekly)))
	}
}
