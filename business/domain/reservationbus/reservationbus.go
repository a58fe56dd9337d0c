// Package reservationbus provides business access to the reservation
// lifecycle.
package reservationbus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/availabilitybus"
	"github.com/jcpaschoal/lido/business/domain/pricing"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/bookingcode"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/metrics"
	"github.com/jcpaschoal/lido/business/sdk/notes"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
	"github.com/shopspring/decimal"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound            = errs.Newf(errs.NotFound, "reservation not found")
	ErrResourceUnavailable = errs.Newf(errs.ResourceUnavailable, "umbrella is not available for booking")
	ErrTenantUnavailable   = errs.Newf(errs.ResourceUnavailable, "tenant is not taking reservations")
	ErrDateRangeConflict   = errs.Newf(errs.DateRangeConflict, "umbrella already booked for the selected dates")
	ErrInvalidTransition   = errs.Newf(errs.InvalidTransition, "reservation status does not allow this operation")
	ErrInvalidBookingType  = errs.Newf(errs.InvalidArgument, "booking type is required")
	ErrDuplicateCode       = errs.Newf(errs.Internal, "booking code already in use")
	ErrCodeExhausted       = errs.Newf(errs.Internal, "could not generate a unique booking code")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, r Reservation) error
	Update(ctx context.Context, r Reservation) error
	Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Reservation, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error)
	QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error)
	QueryByCode(ctx context.Context, tenantID uuid.UUID, code string) (Reservation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[status.Status]int, error)
	Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	QueryFinished(ctx context.Context, before time.Time, limit int) ([]Reservation, error)
	QueryStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]Reservation, error)
}

// Core manages the set of APIs for reservation access.
type Core struct {
	log             *logger.Logger
	beginner        sqldb.Beginner
	storer          Storer
	tenantBus       *tenantbus.Core
	umbrellaBus     *umbrellabus.Core
	availabilityBus *availabilitybus.Core
	codes           *bookingcode.Generator
	notifier        *notify.Notifier
}

// NewCore constructs a reservation core API for use.
func NewCore(log *logger.Logger, beginner sqldb.Beginner, storer Storer, tenantBus *tenantbus.Core, umbrellaBus *umbrellabus.Core, availabilityBus *availabilitybus.Core, codes *bookingcode.Generator, notifier *notify.Notifier) *Core {
	return &Core{
		log:             log,
		beginner:        beginner,
		storer:          storer,
		tenantBus:       tenantBus,
		umbrellaBus:     umbrellaBus,
		availabilityBus: availabilityBus,
		codes:           codes,
		notifier:        notifier,
	}
}

// NewWithTx constructs a new Core value that will use the specified
// transaction in any store related calls. The returned core sends no
// notifications; the owner of the transaction reports the outcome after it
// commits.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	umbrellaBus, err := c.umbrellaBus.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	availabilityBus, err := c.availabilityBus.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, sqldb.NestedBeginner(tx), storer, c.tenantBus, umbrellaBus, availabilityBus, c.codes, nil), nil
}

// Create books an umbrella for a range of days. The umbrella row stays
// locked from the availability check until the insert commits, so of two
// overlapping requests for the same umbrella only one can succeed.
func (c *Core) Create(ctx context.Context, tenantID uuid.UUID, nr NewReservation) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.create")
	defer span.End()

	if nr.Type.IsZero() {
		return Reservation{}, fmt.Errorf("create: %w", ErrInvalidBookingType)
	}

	if nr.Dates.IsZero() {
		return Reservation{}, fmt.Errorf("create: %w", errs.New(errs.InvalidArgument, daterange.ErrInvalid))
	}

	var r Reservation

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		umbrellaBus, err := c.umbrellaBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		availabilityBus, err := c.availabilityBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		u, err := umbrellaBus.QueryByIDForUpdate(ctx, tenantID, nr.UmbrellaID)
		if err != nil {
			return err
		}

		if !u.Active {
			return fmt.Errorf("umbrellaID[%s]: %w", u.ID, ErrResourceUnavailable)
		}

		t, err := c.tenantBus.QueryByID(ctx, tenantID)
		if err != nil {
			return err
		}

		if !t.Status.CanOperate() {
			return fmt.Errorf("tenant status[%s]: %w", t.Status, ErrTenantUnavailable)
		}

		free, err := availabilityBus.IsAvailable(ctx, tenantID, u.ID, nr.Dates)
		if err != nil {
			return err
		}

		if !free {
			metrics.BookingConflict()
			return fmt.Errorf("umbrellaID[%s] range[%s]: %w", u.ID, nr.Dates, ErrDateRangeConflict)
		}

		code, err := c.uniqueCode(ctx, storer)
		if err != nil {
			return err
		}

		now := time.Now()

		r = Reservation{
			ID:          uuid.New(),
			TenantID:    tenantID,
			UserID:      nr.UserID,
			UmbrellaID:  u.ID,
			Dates:       nr.Dates,
			Type:        nr.Type,
			TotalPrice:  pricing.Price(u.Type, nr.Dates, nr.Type),
			Status:      status.Pending,
			Notes:       notes.Append("", nr.Notes),
			BookingCode: code,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := storer.Create(ctx, r); err != nil {
			if errs.IsKind(err, errs.DateRangeConflict) {
				metrics.BookingConflict()
			}
			return err
		}

		return nil
	})
	if err != nil {
		return Reservation{}, fmt.Errorf("create: %w", err)
	}

	metrics.ReservationCreated()
	c.notify(ctx, notify.ReservationCreated, r, "")

	return r, nil
}

// Confirm moves a PENDING reservation to CONFIRMED.
func (c *Core) Confirm(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.confirm")
	defer span.End()

	r, err := c.transition(ctx, tenantID, reservationID, status.Confirmed, "")
	if err != nil {
		return Reservation{}, fmt.Errorf("confirm: %w", err)
	}

	c.notify(ctx, notify.ReservationConfirmed, r, "")

	return r, nil
}

// MarkAsPaid moves a PENDING or CONFIRMED reservation to PAID. The payment
// ledger calls it when a payment is confirmed.
func (c *Core) MarkAsPaid(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.markAsPaid")
	defer span.End()

	r, err := c.transition(ctx, tenantID, reservationID, status.Paid, "")
	if err != nil {
		return Reservation{}, fmt.Errorf("markAsPaid: %w", err)
	}

	return r, nil
}

// Complete moves a PAID reservation to COMPLETED.
func (c *Core) Complete(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.complete")
	defer span.End()

	r, err := c.transition(ctx, tenantID, reservationID, status.Completed, "")
	if err != nil {
		return Reservation{}, fmt.Errorf("complete: %w", err)
	}

	c.notify(ctx, notify.ReservationCompleted, r, "")

	return r, nil
}

// Cancel moves a PENDING, CONFIRMED or PAID reservation to CANCELLED and
// records the reason in the notes.
func (c *Core) Cancel(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, reason string) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.cancel")
	defer span.End()

	r, err := c.transition(ctx, tenantID, reservationID, status.Cancelled, notes.Cancelled(reason))
	if err != nil {
		return Reservation{}, fmt.Errorf("cancel: %w", err)
	}

	c.notify(ctx, notify.ReservationCancelled, r, reason)

	return r, nil
}

// CancelWithNote cancels like Cancel but records note verbatim. The payment
// ledger uses it to record refunds.
func (c *Core) CancelWithNote(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, note string) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.cancelWithNote")
	defer span.End()

	r, err := c.transition(ctx, tenantID, reservationID, status.Cancelled, note)
	if err != nil {
		return Reservation{}, fmt.Errorf("cancel: %w", err)
	}

	c.notify(ctx, notify.ReservationCancelled, r, note)

	return r, nil
}

// Expire cancels the reservation with reason when it is still PENDING and
// was created before olderThan. The row is locked before the check, so a
// reservation confirmed or paid meanwhile is left alone. It reports whether
// the reservation was expired.
func (c *Core) Expire(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, olderThan time.Time, reason string) (Reservation, bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.expire")
	defer span.End()

	var r Reservation
	var expired bool

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		r, err = storer.QueryByIDForUpdate(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}

		if !r.Status.Equal(status.Pending) || !r.CreatedAt.Before(olderThan) {
			return nil
		}

		r.Status = status.Cancelled
		r.Notes = notes.Append(r.Notes, notes.Cancelled(reason))
		r.UpdatedAt = time.Now()

		if err := storer.Update(ctx, r); err != nil {
			return err
		}

		expired = true
		return nil
	})
	if err != nil {
		return Reservation{}, false, fmt.Errorf("expire: %w", err)
	}

	if expired {
		metrics.ReservationTransition(status.Cancelled.String())
		c.notify(ctx, notify.ReservationCancelled, r, reason)
	}

	return r, expired, nil
}

func (c *Core) transition(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, to status.Status, note string) (Reservation, error) {
	var r Reservation

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		r, err = storer.QueryByIDForUpdate(ctx, tenantID, reservationID)
		if err != nil {
			return err
		}

		if !CanTransition(r.Status, to) {
			return fmt.Errorf("reservationID[%s] %s -> %s: %w", r.ID, r.Status, to, ErrInvalidTransition)
		}

		r.Status = to
		r.Notes = notes.Append(r.Notes, note)
		r.UpdatedAt = time.Now()

		return storer.Update(ctx, r)
	})
	if err != nil {
		return Reservation{}, err
	}

	metrics.ReservationTransition(to.String())

	return r, nil
}

// =============================================================================

// Query retrieves a list of existing reservations of the tenant.
func (c *Core) Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.query")
	defer span.End()

	rs, err := c.storer.Query(ctx, tenantID, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return rs, nil
}

// Count returns the number of reservations matching the filter.
func (c *Core) Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.count")
	defer span.End()

	return c.storer.Count(ctx, tenantID, filter)
}

// QueryByID finds the reservation by the specified ID. A reservation of a
// different tenant is reported as not found.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.queryByID")
	defer span.End()

	r, err := c.storer.QueryByID(ctx, tenantID, reservationID)
	if err != nil {
		return Reservation{}, fmt.Errorf("query: reservationID[%s]: %w", reservationID, err)
	}

	return r, nil
}

// QueryByIDForUpdate finds the reservation and holds a lock on it until the
// surrounding transaction ends.
func (c *Core) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.queryByIDForUpdate")
	defer span.End()

	r, err := c.storer.QueryByIDForUpdate(ctx, tenantID, reservationID)
	if err != nil {
		return Reservation{}, fmt.Errorf("query for update: reservationID[%s]: %w", reservationID, err)
	}

	return r, nil
}

// QueryByCode finds the reservation by its booking code.
func (c *Core) QueryByCode(ctx context.Context, tenantID uuid.UUID, code string) (Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.queryByCode")
	defer span.End()

	if _, err := bookingcode.Parse(code); err != nil {
		return Reservation{}, fmt.Errorf("query: code[%s]: %w", code, ErrNotFound)
	}

	r, err := c.storer.QueryByCode(ctx, tenantID, code)
	if err != nil {
		return Reservation{}, fmt.Errorf("query: code[%s]: %w", code, err)
	}

	return r, nil
}

// QueryByUser returns the reservations of a customer.
func (c *Core) QueryByUser(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, page page.Page) ([]Reservation, error) {
	return c.Query(ctx, tenantID, QueryFilter{UserID: &userID}, DefaultOrderBy, page)
}

// QueryByStatus returns the reservations in a status.
func (c *Core) QueryByStatus(ctx context.Context, tenantID uuid.UUID, st status.Status, page page.Page) ([]Reservation, error) {
	return c.Query(ctx, tenantID, QueryFilter{Statuses: []status.Status{st}}, DefaultOrderBy, page)
}

// QueryByUmbrella returns the reservations of an umbrella.
func (c *Core) QueryByUmbrella(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, page page.Page) ([]Reservation, error) {
	return c.Query(ctx, tenantID, QueryFilter{UmbrellaID: &umbrellaID}, DefaultOrderBy, page)
}

// QueryByDateRange returns the reservations sharing a day with dr, in any
// status, ordered by start date.
func (c *Core) QueryByDateRange(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, page page.Page) ([]Reservation, error) {
	return c.Query(ctx, tenantID, QueryFilter{Overlaps: &dr}, DefaultOrderBy, page)
}

// QueryActiveOn returns the CONFIRMED and PAID reservations covering day.
func (c *Core) QueryActiveOn(ctx context.Context, tenantID uuid.UUID, day time.Time, page page.Page) ([]Reservation, error) {
	dr := daterange.Single(day)
	filter := QueryFilter{
		Statuses: []status.Status{status.Confirmed, status.Paid},
		Overlaps: &dr,
	}

	return c.Query(ctx, tenantID, filter, DefaultOrderBy, page)
}

// QueryActiveToday returns the CONFIRMED and PAID reservations covering
// the current day.
func (c *Core) QueryActiveToday(ctx context.Context, tenantID uuid.UUID, page page.Page) ([]Reservation, error) {
	return c.QueryActiveOn(ctx, tenantID, time.Now(), page)
}

// CountByStatus returns how many reservations the tenant has per status.
// Statuses with no reservation are reported as zero.
func (c *Core) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[status.Status]int, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.countByStatus")
	defer span.End()

	counts, err := c.storer.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("countByStatus: %w", err)
	}

	for _, s := range status.All {
		if _, exists := counts[s]; !exists {
			counts[s] = 0
		}
	}

	return counts, nil
}

// Revenue returns the sum of the prices of PAID and COMPLETED reservations.
func (c *Core) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.revenue")
	defer span.End()

	rev, err := c.storer.Revenue(ctx, tenantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("revenue: %w", err)
	}

	return rev.Round(2), nil
}

// Stats returns the counts per status together with the revenue.
func (c *Core) Stats(ctx context.Context, tenantID uuid.UUID) (Stats, error) {
	counts, err := c.CountByStatus(ctx, tenantID)
	if err != nil {
		return Stats{}, err
	}

	rev, err := c.Revenue(ctx, tenantID)
	if err != nil {
		return Stats{}, err
	}

	return Stats{ByStatus: counts, Revenue: rev}, nil
}

// QueryFinished returns, across tenants, PAID reservations whose last day
// is before the day of now.
func (c *Core) QueryFinished(ctx context.Context, now time.Time, limit int) ([]Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.queryFinished")
	defer span.End()

	rs, err := c.storer.QueryFinished(ctx, daterange.Day(now), limit)
	if err != nil {
		return nil, fmt.Errorf("queryFinished: %w", err)
	}

	return rs, nil
}

// QueryStalePending returns, across tenants, PENDING reservations created
// before createdBefore.
func (c *Core) QueryStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]Reservation, error) {
	ctx, span := otel.AddSpan(ctx, "business.reservationbus.queryStalePending")
	defer span.End()

	rs, err := c.storer.QueryStalePending(ctx, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("queryStalePending: %w", err)
	}

	return rs, nil
}

// =============================================================================

func (c *Core) uniqueCode(ctx context.Context, storer Storer) (string, error) {
	const attempts = 3

	for range attempts {
		code := c.codes.Next()

		exists, err := storer.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}

		c.log.Warn(ctx, "booking code collision", "code", code)
	}

	return "", ErrCodeExhausted
}

func (c *Core) notify(ctx context.Context, typ string, r Reservation, reason string) {
	c.notifier.Notify(ctx, notify.Event{
		Type:          typ,
		TenantID:      r.TenantID,
		UserID:        r.UserID,
		ReservationID: r.ID,
		BookingCode:   r.BookingCode,
		Status:        r.Status.String(),
		Reason:        reason,
	})
}
