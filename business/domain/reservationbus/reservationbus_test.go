package reservationbus_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/domain/pricing"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/bookingcode"
	"github.com/jcpaschoal/lido/business/sdk/dbtest"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/types/bookingtype"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pg = page.MustParse("1", "100")

func book(t *testing.T, db *dbtest.Database, tnt tenantbus.Tenant, u umbrellabus.Umbrella, start string, end string) reservationbus.Reservation {
	t.Helper()

	r, err := db.BusDomain.Reservation.Create(context.Background(), tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: u.ID,
		Dates:      daterange.MustParse(start, end),
		Type:       bookingtype.Daily,
	})
	require.NoError(t, err)

	return r
}

func Test_HappyPath(t *testing.T) {
	db := dbtest.New(t, "Test_HappyPath")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "happy", plan.Basic)

	u, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: 12, Row: "A", Type: umbrellatype.Standard})
	require.NoError(t, err)

	userID := uuid.New()

	r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     userID,
		UmbrellaID: u.ID,
		Dates:      daterange.MustParse("2024-07-01", "2024-07-03"),
		Type:       bookingtype.Daily,
		Notes:      "near the bar",
	})
	require.NoError(t, err)

	assert.Equal(t, status.Pending, r.Status)
	assert.True(t, pricing.DailyBaseRate.Mul(decimal.NewFromInt(3)).Equal(r.TotalPrice), "got %s", r.TotalPrice)
	assert.True(t, strings.HasPrefix(r.BookingCode, bookingcode.Prefix))
	assert.Equal(t, "near the bar", r.Notes)

	r, err = db.BusDomain.Reservation.Confirm(ctx, tnt.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Confirmed, r.Status)

	p, err := db.BusDomain.Payment.Create(ctx, tnt.ID, paymentbus.NewPayment{
		ReservationID: r.ID,
		Method:        paymethod.MustParse("CARD"),
		Amount:        r.TotalPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, status.Pending, p.Status)

	p, err = db.BusDomain.Payment.ConfirmGeneric(ctx, tnt.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Paid, p.Status)
	require.NotNil(t, p.PaidAt)

	r, err = db.BusDomain.Reservation.QueryByID(ctx, tnt.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Paid, r.Status)

	r, err = db.BusDomain.Reservation.Complete(ctx, tnt.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Completed, r.Status)

	got, err := db.BusDomain.Reservation.QueryByCode(ctx, tnt.ID, r.BookingCode)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	mine, err := db.BusDomain.Reservation.QueryByUser(ctx, tnt.ID, userID, pg)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	assert.Equal(t, []string{
		notify.ReservationCreated,
		notify.ReservationConfirmed,
		notify.PaymentConfirmed,
		notify.ReservationCompleted,
	}, db.Events.Types())
}

func Test_CreateRejects(t *testing.T) {
	db := dbtest.New(t, "Test_CreateRejects")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "rejects", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 2, umbrellatype.Standard)

	_, err := db.BusDomain.Umbrella.Deactivate(ctx, umbs[0])
	require.NoError(t, err)

	nr := reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[0].ID,
		Dates:      daterange.MustParse("2024-07-01", "2024-07-03"),
		Type:       bookingtype.Daily,
	}

	_, err = db.BusDomain.Reservation.Create(ctx, tnt.ID, nr)
	require.ErrorIs(t, err, reservationbus.ErrResourceUnavailable)
	assert.Equal(t, errs.ResourceUnavailable, errs.KindOf(err))

	nr.UmbrellaID = uuid.New()
	_, err = db.BusDomain.Reservation.Create(ctx, tnt.ID, nr)
	require.ErrorIs(t, err, umbrellabus.ErrNotFound)

	nr.UmbrellaID = umbs[1].ID
	nr.Type = bookingtype.Type{}
	_, err = db.BusDomain.Reservation.Create(ctx, tnt.ID, nr)
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))

	nr.Type = bookingtype.Weekly
	_, err = db.BusDomain.Tenant.Suspend(ctx, tnt)
	require.NoError(t, err)

	_, err = db.BusDomain.Reservation.Create(ctx, tnt.ID, nr)
	require.ErrorIs(t, err, reservationbus.ErrTenantUnavailable)
	assert.Equal(t, errs.ResourceUnavailable, errs.KindOf(err))

	assert.Empty(t, db.Events.Types())
}

func Test_CancelGuard(t *testing.T) {
	db := dbtest.New(t, "Test_CancelGuard")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "cancel", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 4, umbrellatype.Premium)

	pending := book(t, db, tnt, umbs[0], "2024-07-01", "2024-07-02")

	confirmed := book(t, db, tnt, umbs[1], "2024-07-01", "2024-07-02")
	_, err := db.BusDomain.Reservation.Confirm(ctx, tnt.ID, confirmed.ID)
	require.NoError(t, err)

	paid := book(t, db, tnt, umbs[2], "2024-07-01", "2024-07-02")
	_, err = db.BusDomain.Reservation.MarkAsPaid(ctx, tnt.ID, paid.ID)
	require.NoError(t, err)

	completed := book(t, db, tnt, umbs[3], "2024-07-01", "2024-07-02")
	_, err = db.BusDomain.Reservation.MarkAsPaid(ctx, tnt.ID, completed.ID)
	require.NoError(t, err)
	_, err = db.BusDomain.Reservation.Complete(ctx, tnt.ID, completed.ID)
	require.NoError(t, err)

	for _, r := range []reservationbus.Reservation{pending, confirmed, paid} {
		got, err := db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r.ID, "customer request")
		require.NoError(t, err)
		assert.Equal(t, status.Cancelled, got.Status)
		assert.Contains(t, got.Notes, "Cancelled: customer request")

		_, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r.ID, "again")
		require.ErrorIs(t, err, reservationbus.ErrInvalidTransition, "cancelled exactly once")
	}

	_, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, completed.ID, "too late")
	require.ErrorIs(t, err, reservationbus.ErrInvalidTransition)
	assert.Equal(t, errs.InvalidTransition, errs.KindOf(err))

	got, err := db.BusDomain.Reservation.QueryByID(ctx, tnt.ID, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Completed, got.Status)
}

func Test_NotesAppend(t *testing.T) {
	db := dbtest.New(t, "Test_NotesAppend")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "notes", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 1, umbrellatype.Standard)

	r, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[0].ID,
		Dates:      daterange.MustParse("2024-07-01", "2024-07-01"),
		Type:       bookingtype.Daily,
		Notes:      "two chairs",
	})
	require.NoError(t, err)

	r, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r.ID, "rain")
	require.NoError(t, err)
	assert.Equal(t, "two chairs\nCancelled: rain", r.Notes)
}

func Test_Transitions(t *testing.T) {
	db := dbtest.New(t, "Test_Transitions")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "transitions", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 2, umbrellatype.Standard)

	r := book(t, db, tnt, umbs[0], "2024-07-01", "2024-07-02")

	_, err := db.BusDomain.Reservation.Complete(ctx, tnt.ID, r.ID)
	require.ErrorIs(t, err, reservationbus.ErrInvalidTransition, "complete needs PAID")

	_, err = db.BusDomain.Reservation.Confirm(ctx, tnt.ID, r.ID)
	require.NoError(t, err)

	_, err = db.BusDomain.Reservation.Confirm(ctx, tnt.ID, r.ID)
	require.ErrorIs(t, err, reservationbus.ErrInvalidTransition, "confirm needs PENDING")

	// A stray cascade must not resurrect a cancelled reservation.
	c := book(t, db, tnt, umbs[1], "2024-07-01", "2024-07-02")
	_, err = db.BusDomain.Reservation.Cancel(ctx, tnt.ID, c.ID, "no show")
	require.NoError(t, err)

	_, err = db.BusDomain.Reservation.MarkAsPaid(ctx, tnt.ID, c.ID)
	require.ErrorIs(t, err, reservationbus.ErrInvalidTransition)

	table := []struct {
		from status.Status
		to   status.Status
		ok   bool
	}{
		{status.Pending, status.Confirmed, true},
		{status.Pending, status.Paid, true},
		{status.Confirmed, status.Paid, true},
		{status.Paid, status.Completed, true},
		{status.Paid, status.Cancelled, true},
		{status.Confirmed, status.Completed, false},
		{status.Completed, status.Cancelled, false},
		{status.Cancelled, status.Paid, false},
		{status.Paid, status.Refunded, false},
		{status.Refunded, status.Cancelled, false},
	}

	for _, tt := range table {
		assert.Equal(t, tt.ok, reservationbus.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func Test_NoDoubleBooking(t *testing.T) {
	db := dbtest.New(t, "Test_NoDoubleBooking")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "property", plan.Enterprise)

	rnd := rand.New(rand.NewPCG(7, 11))
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	randomRange := func() daterange.Range {
		start := base.AddDate(0, 0, rnd.IntN(60))
		return daterange.MustNew(start, start.AddDate(0, 0, rnd.IntN(10)))
	}

	for i := range 200 {
		u, err := db.BusDomain.Umbrella.Create(ctx, tnt.ID, umbrellabus.NewUmbrella{Number: i + 1, Row: "P", Type: umbrellatype.Standard})
		require.NoError(t, err)

		first, second := randomRange(), randomRange()
		releaseFirst := rnd.IntN(4) == 0

		r1, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{UserID: uuid.New(), UmbrellaID: u.ID, Dates: first, Type: bookingtype.Daily})
		require.NoError(t, err)

		if releaseFirst {
			_, err := db.BusDomain.Reservation.Cancel(ctx, tnt.ID, r1.ID, "released")
			require.NoError(t, err)
		}

		_, err = db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{UserID: uuid.New(), UmbrellaID: u.ID, Dates: second, Type: bookingtype.Daily})

		msg := fmt.Sprintf("first[%s] second[%s] released[%t]", first, second, releaseFirst)
		if first.Overlaps(second) && !releaseFirst {
			require.ErrorIs(t, err, reservationbus.ErrDateRangeConflict, msg)
			assert.Equal(t, errs.DateRangeConflict, errs.KindOf(err), msg)
			continue
		}
		require.NoError(t, err, msg)
	}
}

func Test_ConcurrentConflict(t *testing.T) {
	db := dbtest.New(t, "Test_ConcurrentConflict")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "race", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 1, umbrellatype.VIP)

	const callers = 16

	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Date(2024, time.July, 1+i%3, 0, 0, 0, 0, time.UTC)
			_, err := db.BusDomain.Reservation.Create(ctx, tnt.ID, reservationbus.NewReservation{
				UserID:     uuid.New(),
				UmbrellaID: umbs[0].ID,
				Dates:      daterange.MustNew(start, start.AddDate(0, 0, 5)),
				Type:       bookingtype.Daily,
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		require.ErrorIs(t, err, reservationbus.ErrDateRangeConflict)
	}

	assert.Equal(t, 1, won)

	n, err := db.BusDomain.Reservation.Count(ctx, tnt.ID, reservationbus.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func Test_TenantIsolation(t *testing.T) {
	db := dbtest.New(t, "Test_TenantIsolation")
	ctx := context.Background()
	a := db.SeedTenant(t, "a", plan.Basic)
	b := db.SeedTenant(t, "b", plan.Basic)
	umbs := db.SeedUmbrellas(t, a, 1, umbrellatype.Standard)

	r := book(t, db, a, umbs[0], "2024-07-01", "2024-07-05")

	_, err := db.BusDomain.Reservation.QueryByID(ctx, b.ID, r.ID)
	require.ErrorIs(t, err, reservationbus.ErrNotFound)

	_, err = db.BusDomain.Reservation.QueryByCode(ctx, b.ID, r.BookingCode)
	require.ErrorIs(t, err, reservationbus.ErrNotFound)

	_, err = db.BusDomain.Reservation.Confirm(ctx, b.ID, r.ID)
	require.ErrorIs(t, err, reservationbus.ErrNotFound)

	_, err = db.BusDomain.Reservation.Cancel(ctx, b.ID, r.ID, "not mine")
	require.ErrorIs(t, err, reservationbus.ErrNotFound)

	_, err = db.BusDomain.Reservation.Create(ctx, b.ID, reservationbus.NewReservation{
		UserID:     uuid.New(),
		UmbrellaID: umbs[0].ID,
		Dates:      daterange.MustParse("2024-08-01", "2024-08-01"),
		Type:       bookingtype.Daily,
	})
	require.ErrorIs(t, err, umbrellabus.ErrNotFound, "cannot book another tenant's umbrella")

	for _, st := range []status.Status{status.Pending, status.Confirmed} {
		rs, err := db.BusDomain.Reservation.QueryByStatus(ctx, b.ID, st, pg)
		require.NoError(t, err)
		assert.Empty(t, rs)
	}

	rs, err := db.BusDomain.Reservation.QueryByDateRange(ctx, b.ID, r.Dates, pg)
	require.NoError(t, err)
	assert.Empty(t, rs)

	stats, err := db.BusDomain.Reservation.Stats(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.ByStatus[status.Pending])
}

func Test_Queries(t *testing.T) {
	db := dbtest.New(t, "Test_Queries")
	ctx := context.Background()
	tnt := db.SeedTenant(t, "queries", plan.Basic)
	umbs := db.SeedUmbrellas(t, tnt, 3, umbrellatype.Standard)

	late := book(t, db, tnt, umbs[0], "2024-07-20", "2024-07-25")
	early := book(t, db, tnt, umbs[1], "2024-07-02", "2024-07-04")
	mid := book(t, db, tnt, umbs[2], "2024-07-10", "2024-07-30")

	rs, err := db.BusDomain.Reservation.QueryByDateRange(ctx, tnt.ID, daterange.MustParse("2024-07-01", "2024-07-21"), pg)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.Equal(t, []uuid.UUID{early.ID, mid.ID, late.ID}, []uuid.UUID{rs[0].ID, rs[1].ID, rs[2].ID})

	_, err = db.BusDomain.Reservation.Confirm(ctx, tnt.ID, mid.ID)
	require.NoError(t, err)
	_, err = db.BusDomain.Reservation.MarkAsPaid(ctx, tnt.ID, late.ID)
	require.NoError(t, err)

	day := time.Date(2024, time.July, 22, 15, 30, 0, 0, time.UTC)
	active, err := db.BusDomain.Reservation.QueryActiveOn(ctx, tnt.ID, day, pg)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, mid.ID, active[0].ID)
	assert.Equal(t, late.ID, active[1].ID)

	active, err = db.BusDomain.Reservation.QueryActiveOn(ctx, tnt.ID, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), pg)
	require.NoError(t, err)
	assert.Empty(t, active, "pending reservations are not active")

	byUmbrella, err := db.BusDomain.Reservation.QueryByUmbrella(ctx, tnt.ID, umbs[1].ID, pg)
	require.NoError(t, err)
	require.Len(t, byUmbrella, 1)
	assert.Equal(t, early.ID, byUmbrella[0].ID)

	_, err = db.BusDomain.Reservation.QueryByCode(ctx, tnt.ID, "not-a-code")
	require.ErrorIs(t, err, reservationbus.ErrNotFound)

	stats, err := db.BusDomain.Reservation.Stats(ctx, tnt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus[status.Pending])
	assert.Equal(t, 1, stats.ByStatus[status.Confirmed])
	assert.Equal(t, 1, stats.ByStatus[status.Paid])
	assert.Equal(t, 0, stats.ByStatus[status.Completed])
	assert.True(t, late.TotalPrice.Equal(stats.Revenue), "revenue counts PAID and COMPLETED only")
}
