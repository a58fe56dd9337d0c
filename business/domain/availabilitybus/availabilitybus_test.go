package availabilitybus_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/sdk/dbtest"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_IsAvailable(t *testing.T) {
	db := dbtest.New(t, "Test_IsAvailable")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "avail", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 1, umbrellatype.Standard)

	r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[0].ID,
		Dates:      daterange.MustParse("2024-07-10", "2024-07-12"),
		Type:       bookingtype.Daily,
	})
	require.NoError(t, err)

	table := []struct {
		name  string
		start string
		end   string
		free  bool
	}{
		{"before", "2024-07-01", "2024-07-09", true},
		{"touching start", "2024-07-05", "2024-07-10", false},
		{"inside", "2024-07-11", "2024-07-11", false},
		{"covering", "2024-07-01", "2024-07-31", false},
		{"touching end", "2024-07-12", "2024-07-15", false},
		{"after", "2024-07-13", "2024-07-20", true},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			free, err := db.BusDomain.Availability.IsAvailable(ctx, tnt.ID, umbs[0].ID, daterange.MustParse(tt.start, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.free, free)
		})
	}

	_, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r.ID, "weather")
	require.NoError(t, err)

	free, err := db.BusDomain.Availability.IsAvailable(ctx, tnt.ID, umbs[0].ID, r.Dates)
	require.NoError(t, err)
	assert.True(t, free, "a cancelled reservation releases the umbrella")
}

func Test_QueryAvailable(t *testing.T) {
	db := dbtest.New(t, "Test_QueryAvailable")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "list", plan.Basic)
	std := db.SeedUmbrellas(t, tnt, 3, umbrellatype.Standard)

	dr := daterange.MustParse("2024-08-01", "2024-08-07")

	_, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: std[0].ID,
		Dates:      daterange.MustParse("2024-08-05", "2024-08-06"),
		Type:       bookingtype.Daily,
	})
	require.NoError(t, err)

	_, err = db.BusDomain.Umbrella.Deactivate(ctx, std[1])
	require.NoError(t, err)

	umbs, err := db.BusDomain.Availability.QueryAvailable(ctx, tnt.ID, dr)
	require.NoError(t, err)
	require.Len(t, umbs, 1)
	assert.Equal(t, std[2].ID, umbs[0].ID)

	vip, err := db.BusDomain.Availability.QueryAvailableByType(ctx, tnt.ID, dr, umbrellatype.VIP)
	require.NoError(t, err)
	assert.Empty(t, vip)

	other := db.SeedTenant(t, "other", plan.Basic)
	umbs, err = db.BusDomain.Availability.QueryAvailable(ctx, other.ID, dr)
	require.NoError(t, err)
	assert.Empty(t, umbs)
}
