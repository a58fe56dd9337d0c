// Package pricing computes reservation prices.
package pricing

import (
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/shopspring/decimal"
)

// DailyBaseRate is the price of one STANDARD umbrella for one day.
var DailyBaseRate = decimal.RequireFromString("30.00")

// Price returns the total for booking an umbrella of type ut over dr with
// booking type bt. The result is rounded half up to cents.
func Price(ut umbrellatype.Type, dr daterange.Range, bt bookingtype.Type) decimal.Decimal {
	days := decimal.NewFromInt(int64(dr.Days()))

	total := DailyBaseRate.
		Mul(days).
		Mul(ut.Multiplier()).
		Mul(bt.DiscountFactor())

	return total.Round(2)
}
