package daterange_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r, err := daterange.Parse("2024-07-01", "2024-07-07")
	require.NoError(t, err)
	assert.Equal(t, 7, r.Days())
	assert.Equal(t, "2024-07-01..2024-07-07", r.String())

	r, err = daterange.New(time.Date(2024, 7, 1, 23, 59, 0, 0, time.UTC), time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Days())

	_, err = daterange.Parse("2024-07-02", "2024-07-01")
	require.ErrorIs(t, err, daterange.ErrInvalid)
}

func TestOverlaps(t *testing.T) {
	base := daterange.MustParse("2024-07-10", "2024-07-15")

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"before", "2024-07-01", "2024-07-09", false},
		{"touching start", "2024-07-01", "2024-07-10", true},
		{"inside", "2024-07-11", "2024-07-12", true},
		{"covering", "2024-07-01", "2024-07-31", true},
		{"touching end", "2024-07-15", "2024-07-20", true},
		{"after", "2024-07-16", "2024-07-20", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := daterange.MustParse(tt.start, tt.end)
			assert.Equal(t, tt.want, base.Overlaps(other))
			assert.Equal(t, tt.want, other.Overlaps(base))
		})
	}
}

func TestOverlapsMatchesDayWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		a := randomRange(rng, origin)
		b := randomRange(rng, origin)

		shared := false
		for d := a.Start(); !d.After(a.End()); d = d.AddDate(0, 0, 1) {
			if b.Contains(d) {
				shared = true
				break
			}
		}

		require.Equal(t, shared, a.Overlaps(b), "a=%s b=%s", a, b)
	}
}

func TestDaysAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skip("tzdata not available")
	}

	r, err := daterange.New(time.Date(2024, 3, 30, 12, 0, 0, 0, loc), time.Date(2024, 4, 1, 12, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Days())
}

func randomRange(rng *rand.Rand, origin time.Time) daterange.Range {
	start := origin.AddDate(0, 0, rng.Intn(30))
	return daterange.MustNew(start, start.AddDate(0, 0, rng.Intn(6)))
}
