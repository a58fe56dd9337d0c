// Package sweepbus runs the periodic housekeeping over reservations that
// no caller drives: finishing stays that are over and expiring bookings
// that were never confirmed.
package sweepbus

import (
	"context"
	"time"

	"github.com/jcpaschoal/lido/business/domain/paymentbus"
	"github.com/jcpaschoal/lido/business/domain/reservationbus"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
)

// ExpiredReason is recorded on reservations cancelled by ExpirePending.
const ExpiredReason = "expired"

// DefaultBatchSize bounds the reservations handled in one sweep.
const DefaultBatchSize = 500

// Result counts the outcome of one sweep.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// Core manages the set of APIs for the sweeps.
type Core struct {
	log            *logger.Logger
	reservationBus *reservationbus.Core
	paymentBus     *paymentbus.Core
	batchSize      int
}

// NewCore constructs a sweep core API for use.
func NewCore(log *logger.Logger, reservationBus *reservationbus.Core, paymentBus *paymentbus.Core, batchSize int) *Core {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &Core{
		log:            log,
		reservationBus: reservationBus,
		paymentBus:     paymentBus,
		batchSize:      batchSize,
	}
}

// CompleteFinished moves every PAID reservation whose last day is before
// the day of now to COMPLETED. A reservation that fails is logged and
// skipped.
func (c *Core) CompleteFinished(ctx context.Context, now time.Time) (Result, error) {
	ctx, span := otel.AddSpan(ctx, "business.sweepbus.completeFinished")
	defer span.End()

	rs, err := c.reservationBus.QueryFinished(ctx, now, c.batchSize)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rs {
		if _, err := c.reservationBus.Complete(ctx, r.TenantID, r.ID); err != nil {
			c.log.Error(ctx, "sweep: complete", "reservationID", r.ID, "tenantID", r.TenantID, "ERROR", err)
			res.Failed++
			continue
		}
		res.Processed++
	}

	if len(rs) > 0 {
		c.log.Info(ctx, "sweep: complete finished", "processed", res.Processed, "failed", res.Failed)
	}

	return res, nil
}

// ExpirePending cancels every PENDING reservation created before olderThan
// together with its pending payment, if any. A reservation confirmed or paid
// after it was read is skipped.
func (c *Core) ExpirePending(ctx context.Context, olderThan time.Time) (Result, error) {
	ctx, span := otel.AddSpan(ctx, "business.sweepbus.expirePending")
	defer span.End()

	rs, err := c.reservationBus.QueryStalePending(ctx, olderThan, c.batchSize)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rs {
		expired, err := c.paymentBus.ExpireReservation(ctx, r.TenantID, r.ID, olderThan, ExpiredReason)
		if err != nil {
			c.log.Error(ctx, "sweep: expire", "reservationID", r.ID, "tenantID", r.TenantID, "ERROR", err)
			res.Failed++
			continue
		}

		if !expired {
			res.Skipped++
			continue
		}
		res.Processed++
	}

	if len(rs) > 0 {
		c.log.Info(ctx, "sweep: expire pending", "processed", res.Processed, "skipped", res.Skipped, "failed", res.Failed)
	}

	return res, nil
}
