// Package paymentbus provides business access to the payment ledger.
package paymentbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/metrics"
	"github.com/jcpaschoal/lido/business/sdk/notes"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/paymethod"
	"github.com/jcpaschoal/lido/business/types/status"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
	"github.com/shopspring/decimal"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound            = errs.Newf(errs.NotFound, "payment not found")
	ErrReservationNotFound = errs.Newf(errs.NotFound, "reservation not found")
	ErrDuplicatePayment    = errs.Newf(errs.DuplicatePayment, "a payment already exists for this reservation")
	ErrAmountMismatch      = errs.Newf(errs.AmountMismatch, "amount does not match the reservation price")
	ErrWrongMethod         = errs.Newf(errs.WrongMethod, "payment method does not match")
	ErrAlreadyConfirmed    = errs.Newf(errs.AlreadyConfirmed, "payment already confirmed")
	ErrAlreadyPaid         = errs.Newf(errs.AlreadyPaid, "payment already paid")
	ErrNotPaid             = errs.Newf(errs.NotPaid, "only paid payments can be refunded")
	ErrInvalidTransition   = errs.Newf(errs.InvalidTransition, "payment status does not allow this operation")
	ErrInvalidMethod       = errs.Newf(errs.InvalidArgument, "payment method is required")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, p Payment) error
	Update(ctx context.Context, p Payment) error
	Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Payment, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (Payment, error)
	QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (Payment, error)
	QueryByReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Payment, error)
	QueryByExternalRef(ctx context.Context, tenantID uuid.UUID, ref string) (Payment, error)
	Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}

// Core manages the set of APIs for payment access.
type Core struct {
	log            *logger.Logger
	beginner       sqldb.Beginner
	storer         Storer
	reservationBus *reservationbus.Core
	notifier       *notify.Notifier
}

// NewCore constructs a payment core API for use.
func NewCore(log *logger.Logger, beginner sqldb.Beginner, storer Storer, reservationBus *reservationbus.Core, notifier *notify.Notifier) *Core {
	return &Core{
		log:            log,
		beginner:       beginner,
		storer:         storer,
		reservationBus: reservationBus,
		notifier:       notifier,
	}
}

// NewWithTx constructs a new Core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	reservationBus, err := c.reservationBus.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, sqldb.NestedBeginner(tx), storer, reservationBus, nil), nil
}

// Create records a PENDING payment for a reservation. The reservation row
// is locked while the checks run so two payments for it cannot race.
func (c *Core) Create(ctx context.Context, tenantID uuid.UUID, np NewPayment) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.create")
	defer span.End()

	if np.Method.IsZero() {
		return Payment{}, fmt.Errorf("create: %w", ErrInvalidMethod)
	}

	var p Payment

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		reservationBus, err := c.reservationBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		r, err := reservationBus.QueryByIDForUpdate(ctx, tenantID, np.ReservationID)
		if err != nil {
			if errors.Is(err, reservationbus.ErrNotFound) {
				return fmt.Errorf("reservationID[%s]: %w", np.ReservationID, ErrReservationNotFound)
			}
			return err
		}

		switch _, err := storer.QueryByReservation(ctx, tenantID, r.ID); {
		case err == nil:
			return fmt.Errorf("reservationID[%s]: %w", r.ID, ErrDuplicatePayment)
		case !errors.Is(err, ErrNotFound):
			return err
		}

		if !np.Amount.Equal(r.TotalPrice) {
			return fmt.Errorf("amount[%s] price[%s]: %w", np.Amount.StringFixed(2), r.TotalPrice.StringFixed(2), ErrAmountMismatch)
		}

		now := time.Now()

		p = Payment{
			ID:            uuid.New(),
			TenantID:      tenantID,
			ReservationID: r.ID,
			Method:        np.Method,
			Amount:        np.Amount,
			Status:        status.Pending,
			ExternalRef:   np.ExternalRef,
			Notes:         notes.Append("", np.Notes),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		return storer.Create(ctx, p)
	})
	if err != nil {
		return Payment{}, fmt.Errorf("create: %w", err)
	}

	return p, nil
}

// ConfirmGeneric marks the payment PAID whatever its method and marks the
// reservation PAID in the same transaction.
func (c *Core) ConfirmGeneric(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.confirmGeneric")
	defer span.End()

	p, err := c.confirm(ctx, tenantID, paymentID, nil, "")
	if err != nil {
		return Payment{}, fmt.Errorf("confirmGeneric: %w", err)
	}

	return p, nil
}

// ConfirmPayPal confirms a PAYPAL payment and records the transaction id.
func (c *Core) ConfirmPayPal(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID, transactionID string) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.confirmPayPal")
	defer span.End()

	p, err := c.confirm(ctx, tenantID, paymentID, &paymethod.PayPal, transactionID)
	if err != nil {
		return Payment{}, fmt.Errorf("confirmPayPal: %w", err)
	}

	return p, nil
}

// ConfirmBankTransfer confirms a BANK_TRANSFER payment and records the
// transfer reference.
func (c *Core) ConfirmBankTransfer(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID, reference string) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.confirmBankTransfer")
	defer span.End()

	p, err := c.confirm(ctx, tenantID, paymentID, &paymethod.BankTransfer, reference)
	if err != nil {
		return Payment{}, fmt.Errorf("confirmBankTransfer: %w", err)
	}

	return p, nil
}

func (c *Core) confirm(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID, method *paymethod.Method, ref string) (Payment, error) {
	var p Payment

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		reservationBus, err := c.reservationBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		p, err = storer.QueryByIDForUpdate(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}

		if method != nil && !p.Method.Equal(*method) {
			return fmt.Errorf("method[%s] want[%s]: %w", p.Method, method, ErrWrongMethod)
		}

		switch p.Status {
		case status.Pending:
		case status.Paid:
			return fmt.Errorf("paymentID[%s]: %w", p.ID, ErrAlreadyConfirmed)
		default:
			return fmt.Errorf("paymentID[%s] status[%s]: %w", p.ID, p.Status, ErrInvalidTransition)
		}

		now := time.Now()

		if ref != "" {
			p.ExternalRef = ref
		}
		p.Status = status.Paid
		p.PaidAt = &now
		p.UpdatedAt = now

		if err := storer.Update(ctx, p); err != nil {
			return err
		}

		if _, err := reservationBus.MarkAsPaid(ctx, tenantID, p.ReservationID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return Payment{}, err
	}

	metrics.PaymentConfirmed(p.Method.String())
	c.notify(ctx, notify.PaymentConfirmed, p, "")

	return p, nil
}

// Cancel cancels a payment that has not been paid.
func (c *Core) Cancel(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID, reason string) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.cancel")
	defer span.End()

	var p Payment

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		p, err = storer.QueryByIDForUpdate(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}

		return cancelPending(ctx, storer, &p, reason)
	})
	if err != nil {
		return Payment{}, fmt.Errorf("cancel: %w", err)
	}

	return p, nil
}

// CancelByReservation cancels the PENDING payment of a reservation, if there
// is one. It reports whether a payment was cancelled.
func (c *Core) CancelByReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, reason string) (bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.cancelByReservation")
	defer span.End()

	var cancelled bool

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		p, err := storer.QueryByReservation(ctx, tenantID, reservationID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}

		if !p.Status.Equal(status.Pending) {
			return nil
		}

		if err := cancelPending(ctx, storer, &p, reason); err != nil {
			return err
		}

		cancelled = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("cancelByReservation: %w", err)
	}

	return cancelled, nil
}

// ExpireReservation cancels a reservation left PENDING since before
// olderThan together with its PENDING payment, in one transaction. The
// payment row is locked before the reservation row, the same order payment
// confirmation takes them, so a reservation confirmed or paid after the
// sweep read it is seen as such and skipped. It reports whether the
// reservation was expired.
func (c *Core) ExpireReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID, olderThan time.Time, reason string) (bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.expireReservation")
	defer span.End()

	var r reservationbus.Reservation
	var expired bool

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		reservationBus, err := c.reservationBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		var p Payment
		var hasPayment bool

		found, err := storer.QueryByReservation(ctx, tenantID, reservationID)
		switch {
		case err == nil:
			p, err = storer.QueryByIDForUpdate(ctx, tenantID, found.ID)
			if err != nil {
				return err
			}
			hasPayment = true

		case !errors.Is(err, ErrNotFound):
			return err
		}

		r, expired, err = reservationBus.Expire(ctx, tenantID, reservationID, olderThan, reason)
		if err != nil || !expired {
			return err
		}

		if hasPayment && p.Status.Equal(status.Pending) {
			return cancelPending(ctx, storer, &p, reason)
		}

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("expireReservation: %w", err)
	}

	if expired {
		c.notifier.Notify(ctx, notify.Event{
			Type:          notify.ReservationCancelled,
			TenantID:      r.TenantID,
			UserID:        r.UserID,
			ReservationID: r.ID,
			BookingCode:   r.BookingCode,
			Status:        r.Status.String(),
			Reason:        reason,
		})
	}

	return expired, nil
}

func cancelPending(ctx context.Context, storer Storer, p *Payment, reason string) error {
	switch p.Status {
	case status.Pending:
	case status.Paid:
		return fmt.Errorf("paymentID[%s]: %w", p.ID, ErrAlreadyPaid)
	default:
		return fmt.Errorf("paymentID[%s] status[%s]: %w", p.ID, p.Status, ErrInvalidTransition)
	}

	p.Status = status.Cancelled
	p.Notes = notes.Append(p.Notes, notes.Cancelled(reason))
	p.UpdatedAt = time.Now()

	return storer.Update(ctx, *p)
}

// Refund refunds a PAID payment and cancels its reservation in the same
// transaction. The reservation notes record the refund reason.
func (c *Core) Refund(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID, reason string) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.refund")
	defer span.End()

	var p Payment
	var r reservationbus.Reservation

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		reservationBus, err := c.reservationBus.NewWithTx(tx)
		if err != nil {
			return err
		}

		p, err = storer.QueryByIDForUpdate(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}

		if !p.Status.Equal(status.Paid) {
			return fmt.Errorf("paymentID[%s] status[%s]: %w", p.ID, p.Status, ErrNotPaid)
		}

		p.Status = status.Refunded
		p.Notes = notes.Append(p.Notes, notes.Refunded(reason))
		p.UpdatedAt = time.Now()

		if err := storer.Update(ctx, p); err != nil {
			return err
		}

		r, err = reservationBus.CancelWithNote(ctx, tenantID, p.ReservationID, notes.Refunded(reason))
		return err
	})
	if err != nil {
		return Payment{}, fmt.Errorf("refund: %w", err)
	}

	metrics.PaymentRefunded()
	c.notify(ctx, notify.PaymentRefunded, p, reason)
	c.notifier.Notify(ctx, notify.Event{
		Type:          notify.ReservationCancelled,
		TenantID:      r.TenantID,
		UserID:        r.UserID,
		ReservationID: r.ID,
		PaymentID:     p.ID,
		BookingCode:   r.BookingCode,
		Status:        r.Status.String(),
		Reason:        notes.Refunded(reason),
	})

	return p, nil
}

// =============================================================================

// Query retrieves a list of existing payments of the tenant.
func (c *Core) Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.query")
	defer span.End()

	ps, err := c.storer.Query(ctx, tenantID, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return ps, nil
}

// Count returns the number of payments matching the filter.
func (c *Core) Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.count")
	defer span.End()

	return c.storer.Count(ctx, tenantID, filter)
}

// QueryByTenant returns every payment of the tenant.
func (c *Core) QueryByTenant(ctx context.Context, tenantID uuid.UUID, page page.Page) ([]Payment, error) {
	return c.Query(ctx, tenantID, QueryFilter{}, DefaultOrderBy, page)
}

// QueryByStatus returns the payments in a status.
func (c *Core) QueryByStatus(ctx context.Context, tenantID uuid.UUID, st status.Status, page page.Page) ([]Payment, error) {
	return c.Query(ctx, tenantID, QueryFilter{Status: &st}, DefaultOrderBy, page)
}

// QueryByMethod returns the payments made with a method.
func (c *Core) QueryByMethod(ctx context.Context, tenantID uuid.UUID, method paymethod.Method, page page.Page) ([]Payment, error) {
	return c.Query(ctx, tenantID, QueryFilter{Method: &method}, DefaultOrderBy, page)
}

// QueryByID finds the payment by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID, paymentID uuid.UUID) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.queryByID")
	defer span.End()

	p, err := c.storer.QueryByID(ctx, tenantID, paymentID)
	if err != nil {
		return Payment{}, fmt.Errorf("query: paymentID[%s]: %w", paymentID, err)
	}

	return p, nil
}

// QueryByReservation finds the payment of a reservation.
func (c *Core) QueryByReservation(ctx context.Context, tenantID uuid.UUID, reservationID uuid.UUID) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.queryByReservation")
	defer span.End()

	p, err := c.storer.QueryByReservation(ctx, tenantID, reservationID)
	if err != nil {
		return Payment{}, fmt.Errorf("query: reservationID[%s]: %w", reservationID, err)
	}

	return p, nil
}

// QueryByExternalRef finds the payment carrying the gateway or bank
// reference.
func (c *Core) QueryByExternalRef(ctx context.Context, tenantID uuid.UUID, ref string) (Payment, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.queryByExternalRef")
	defer span.End()

	p, err := c.storer.QueryByExternalRef(ctx, tenantID, ref)
	if err != nil {
		return Payment{}, fmt.Errorf("query: ref[%s]: %w", ref, err)
	}

	return p, nil
}

// Revenue returns the sum of the PAID payments of the tenant.
func (c *Core) Revenue(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := otel.AddSpan(ctx, "business.paymentbus.revenue")
	defer span.End()

	rev, err := c.storer.Revenue(ctx, tenantID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("revenue: %w", err)
	}

	return rev.Round(2), nil
}

func (c *Core) notify(ctx context.Context, typ string, p Payment, reason string) {
	c.notifier.Notify(ctx, notify.Event{
		Type:          typ,
		TenantID:      p.TenantID,
		ReservationID: p.ReservationID,
		PaymentID:     p.ID,
		Status:        p.Status.String(),
		Reason:        reason,
	})
}
