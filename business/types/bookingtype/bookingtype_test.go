package bookingtype_test

import (
	"testing"

	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscountFactors(t *testing.T) {
	tests := []struct {
		value string
		want  bookingtype.Type
		f     string
	}{
		{"GIORNALIERA", bookingtype.Daily, "1"},
		{"SETTIMANALE", bookingtype.Weekly, "0.9"},
		{"MENSILE", bookingtype.Monthly, "0.8"},
		{"ANNUALE", bookingtype.Yearly, "0.6"},
	}

	for _, tt := range tests {
		got, err := bookingtype.Parse(tt.value)
		require.NoError(t, err)
		assert.True(t, tt.want.Equal(got))
		assert.Equal(t, tt.f, got.DiscountFactor().String())
	}

	_, err := bookingtype.Parse("DAILY")
	assert.Error(t, err)
}
