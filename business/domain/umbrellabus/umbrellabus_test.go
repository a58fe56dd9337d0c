package umbrellabus_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/dbtest"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Create(t *testing.T) {
	db := dbtest.New(t, "Test_Create")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "azzurro", plan.Basic)

	u, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{
		Number: 12,
		Row:    "A",
		Type:   umbrellatype.Standard,
	})
	require.NoError(t, err)

	assert.True(t, u.Active)
	assert.Equal(t, tnt.ID, u.TenantID)

	got, err := db.BusDomain.Umbrella.QueryByNumber(ctx, tnt.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: 12, Row: "B", Type: umbrellatype.VIP})
	require.ErrorIs(t, err, umbrellabus.ErrDuplicateNumber)
	assert.Equal(t, errs.DuplicateNumber, errs.KindOf(err))
}

func Test_NumberPerTenant(t *testing.T) {
	db := dbtest.New(t, "Test_NumberPerTenant")
	ctx := context.Background()
	a := db.SeedTenant(t, "a", plan.Basic)
	b := db.SeedTenant(t, "b", plan.Basic)

	nu := umbrellabus.NewUmbrella{Number: 1, Row: "A", Type: umbrellatype.Standard}

	_, err := db.BusDomain.Umbrella.Create(ctx, a.ID, nu)
	require.NoError(t, err)

	_, err = db.BusDomain.Umbrella.Create(ctx, b.ID, nu)
	require.NoError(t, err, "numbers are unique per tenant only")
}

func Test_Capacity(t *testing.T) {
	db := dbtest.New(t, "Test_Capacity")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "small", plan.Free)

	umbs := db.SeedUmbrellas(t, tnt, plan.Free.MaxUmbrellas(), umbrellatype.Standard)

	_, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: 99, Row: "Z", Type: umbrellatype.Standard})
	require.ErrorIs(t, err, umbrellabus.ErrCapacityExceeded)

	// Capacity counts active umbrellas only.
	_, err = db.BusDomain.Umbrella.Deactivate(ctx, umbs[0])
	require.NoError(t, err)

	u, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: 99, Row: "Z", Type: umbrellatype.Standard})
	require.NoError(t, err)

	inactive, err := db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, umbs[0].ID)
	require.NoError(t, err)

	_, err = db.BusDomain.Umbrella.Activate(ctx, inactive)
	require.ErrorIs(t, err, umbrellabus.ErrCapacityExceeded)

	n, err := db.BusDomain.Umbrella.CountActive(ctx, tnt.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Free.MaxUmbrellas(), n)
	assert.NotEqual(t, uuid.Nil, u.ID)
}

func Test_CreateBatchAtomic(t *testing.T) {
	db := dbtest.New(t, "Test_CreateBatchAtomic")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "batch", plan.Basic)

	_, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: 3, Row: "A", Type: umbrellatype.Standard})
	require.NoError(t, err)

	nus := []umbrellabus.NewUmbrella{
		{Number: 1, Row: "A", Type: umbrellatype.Standard},
		{Number: 2, Row: "A", Type: umbrellatype.Premium},
		{Number: 3, Row: "A", Type: umbrellatype.VIP},
	}

	_, err = db.BusDomain.Umbrella.CreateBatch(ctx, tnt.ID, nus)
	require.ErrorIs(t, err, umbrellabus.ErrDuplicateNumber)

	n, err := db.BusDomain.Umbrella.Count(ctx, tnt.ID, umbrellabus.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a failed batch leaves nothing behind")

	_, err = db.BusDomain.Umbrella.CreateBatch(ctx, tnt.ID, []umbrellabus.NewUmbrella{
		{Number: 7, Row: "B", Type: umbrellatype.Standard},
		{Number: 7, Row: "B", Type: umbrellatype.Standard},
	})
	require.ErrorIs(t, err, umbrellabus.ErrDuplicateNumber)
}

func Test_Update(t *testing.T) {
	db := dbtest.New(t, "Test_Update")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "update", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 2, umbrellatype.Standard)

	taken := umbs[1].Number
	_, err := db.BusDomain.Umbrella.Update(ctx, umbs[0], umbrellabus.UpdateUmbrella{Number: &taken})
	require.ErrorIs(t, err, umbrellabus.ErrDuplicateNumber)

	number := 40
	row := "C"
	typ := umbrellatype.Family
	u, err := db.BusDomain.Umbrella.Update(ctx, umbs[0], umbrellabus.UpdateUmbrella{Number: &number, Row: &row, Type: &typ})
	require.NoError(t, err)

	got, err := db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Number)
	assert.Equal(t, "C", got.Row)
	assert.True(t, got.Type.Equal(umbrellatype.Family))

	same := got.Number
	_, err = db.BusDomain.Umbrella.Update(ctx, got, umbrellabus.UpdateUmbrella{Number: &same})
	require.NoError(t, err, "keeping the own number is not a duplicate")
}

func Test_StaleCopy(t *testing.T) {
	db := dbtest.New(t, "Test_StaleCopy")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "stale", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 1, umbrellatype.Standard)

	stale := umbs[0]

	desc := "next to the bar"
	_, err := db.BusDomain.Umbrella.Update(ctx, stale, umbrellabus.UpdateUmbrella{Description: &desc})
	require.NoError(t, err)

	_, err = db.BusDomain.Umbrella.Deactivate(ctx, stale)
	require.NoError(t, err)

	got, err := db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, stale.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, desc, got.Description, "deactivate must not revert the description")

	row := "Z"
	u, err := db.BusDomain.Umbrella.Update(ctx, stale, umbrellabus.UpdateUmbrella{Row: &row})
	require.NoError(t, err)
	assert.False(t, u.Active, "update must not reactivate the umbrella")
	assert.Equal(t, desc, u.Description)

	u, err = db.BusDomain.Umbrella.Activate(ctx, stale)
	require.NoError(t, err)
	assert.True(t, u.Active)
	assert.Equal(t, "Z", u.Row, "activate must not revert the row")

	got, err = db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, stale.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, "Z", got.Row)
	assert.Equal(t, desc, got.Description)
}

func Test_Query(t *testing.T) {
	db := dbtest.New(t, "Test_Query")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "query", plan.Basic)

	_, err := db.BusDomain.Umbrella.CreateBatch(ctx, tnt.ID, []umbrellabus.NewUmbrella{
		{Number: 3, Row: "A", Type: umbrellatype.VIP},
		{Number: 1, Row: "A", Type: umbrellatype.Standard},
		{Number: 2, Row: "B", Type: umbrellatype.VIP},
	})
	require.NoError(t, err)

	pg := page.MustParse("1", "10")

	rowA, err := db.BusDomain.Umbrella.QueryByRow(ctx, tnt.ID, "A", pg)
	require.NoError(t, err)
	require.Len(t, rowA, 2)
	assert.Equal(t, 1, rowA[0].Number)
	assert.Equal(t, 3, rowA[1].Number)

	vip, err := db.BusDomain.Umbrella.QueryByType(ctx, tnt.ID, umbrellatype.VIP, pg)
	require.NoError(t, err)
	require.Len(t, vip, 2)
	assert.Equal(t, 2, vip[0].Number)

	first, err := db.BusDomain.Umbrella.Query(ctx, tnt.ID, umbrellabus.QueryFilter{}, umbrellabus.DefaultOrderBy, page.MustParse("2", "2"))
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 3, first[0].Number)

	other := db.SeedTenant(t, "other", plan.Basic)
	none, err := db.BusDomain.Umbrella.Query(ctx, other.ID, umbrellabus.QueryFilter{}, umbrellabus.DefaultOrderBy, pg)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = db.BusDomain.Umbrella.QueryByID(ctx, other.ID, rowA[0].ID)
	require.ErrorIs(t, err, umbrellabus.ErrNotFound)
}

func Test_Delete(t *testing.T) {
	db := dbtest.New(t, "Test_Delete")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "delete", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 3, umbrellatype.Standard)

	require.NoError(t, db.BusDomain.Umbrella.Delete(ctx, umbs[0]))

	_, err := db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, umbs[0].ID)
	require.ErrorIs(t, err, umbrellabus.ErrNotFound)

	r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[1].ID,
		Dates:      daterange.MustParse("2024-07-01", "2024-07-03"),
		Type:       bookingtype.Daily,
	})
	require.NoError(t, err)

	err = db.BusDomain.Umbrella.Delete(ctx, umbs[1])
	require.ErrorIs(t, err, umbrellabus.ErrHasActiveBookings)
	assert.Equal(t, errs.HasActiveBookings, errs.KindOf(err))

	_, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r.ID, "changed plans")
	require.NoError(t, err)

	err = db.BusDomain.Umbrella.Delete(ctx, umbs[1])
	require.ErrorIs(t, err, umbrellabus.ErrHasHistory)

	_, err = db.BusDomain.Umbrella.QueryByID(ctx, tnt.ID, umbs[1].ID)
	require.NoError(t, err)
}
