package availabilitydb_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus/stores/availabilitydb"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus/stores/reservationdb"
	"github.com/jcpaschoal/lido/business/sdk/dbtest"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CountOverlapping(t *testing.T) {
	db := dbtest.NewPostgres(t, "Test_CountOverlapping")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "overlap", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 2, umbrellatype.Standard)

	r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[0].ID,
		Dates:      daterange.MustParse("2024-07-10", "2024-07-15"),
		Type:       bookingtype.Daily,
	})
	require.NoError(t, err)

	store := availabilitydb.NewStore(db.Log, db.SQL)

	table := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"ends on first day", "2024-07-05", "2024-07-10", 1},
		{"starts on last day", "2024-07-15", "2024-07-20", 1},
		{"inside", "2024-07-12", "2024-07-12", 1},
		{"covers", "2024-07-01", "2024-07-31", 1},
		{"day before", "2024-07-01", "2024-07-09", 0},
		{"day after", "2024-07-16", "2024-07-20", 0},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			n, err := store.CountOverlapping(ctx, tnt.ID, umbs[0].ID, daterange.MustParse(tt.start, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}

	n, err := store.CountOverlapping(ctx, uuid.New(), umbs[0].ID, r.Dates)
	require.NoError(t, err)
	assert.Zero(t, n, "another tenant sees no reservation")

	free, err := db.BusDomain.Availability.QueryAvailable(ctx, tnt.ID, daterange.MustParse("2024-07-15", "2024-07-15"))
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, umbs[1].ID, free[0].ID)
}

func Test_ReleasedDoNotBlock(t *testing.T) {
	db := dbtest.NewPostgres(t, "Test_ReleasedDoNotBlock")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "released", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 2, umbrellatype.Family)

	dates := daterange.MustParse("2024-08-01", "2024-08-03")

	var rs []reservationbus.Reservation
	for _, u := range umbs {
		r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
			UserID:     uuid.New(),
			UmbrellaID: u.ID,
			Dates:      dates,
			Type:       bookingtype.Daily,
		})
		require.NoError(t, err)
		rs = append(rs, r)
	}

	_, err := db.BusDomain.Reservation.Cancel(ctx, tnt.ID, rs[0].ID, "weather")
	require.NoError(t, err)

	// The state machine never writes REFUNDED, so it is set on the row.
	refunded := rs[1]
	refunded.Status = status.Refunded
	require.NoError(t, reservationdb.NewStore(db.Log, db.SQL).Update(ctx, refunded))

	store := availabilitydb.NewStore(db.Log, db.SQL)

	for _, u := range umbs {
		n, err := store.CountOverlapping(ctx, tnt.ID, u.ID, dates)
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	free, err := db.BusDomain.Availability.QueryAvailable(ctx, tnt.ID, dates)
	require.NoError(t, err)
	assert.Len(t, free, 2)
}
