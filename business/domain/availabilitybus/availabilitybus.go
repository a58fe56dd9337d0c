// Package availabilitybus answers which umbrellas are free for a range of
// days.
package availabilitybus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/daterange"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
)

// Storer interface declares the behavior this package needs to retrieve
// data. Reservations in CANCELLED or REFUNDED never hold an umbrella.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	CountOverlapping(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, dr daterange.Range) (int, error)
	QueryAvailable(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, filter QueryFilter) ([]umbrellabus.Umbrella, error)
}

// QueryFilter narrows the umbrellas considered by QueryAvailable.
type QueryFilter struct {
	Type *umbrellatype.Type
	Row  *string
}

// Core manages the set of APIs for availability access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs an availability core API for use.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// NewWithTx constructs a new Core value that will use the specified
// transaction in any store related calls. Reservation creation uses it so
// the check reads the same snapshot the insert writes to.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// IsAvailable reports whether no reservation holding the umbrella shares a
// day with dr.
func (c *Core) IsAvailable(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID, dr daterange.Range) (bool, error) {
	ctx, span := otel.AddSpan(ctx, "business.availabilitybus.isAvailable")
	defer span.End()

	n, err := c.storer.CountOverlapping(ctx, tenantID, umbrellaID, dr)
	if err != nil {
		return false, fmt.Errorf("countOverlapping: umbrellaID[%s] range[%s]: %w", umbrellaID, dr, err)
	}

	return n == 0, nil
}

// QueryAvailable returns the active umbrellas of the tenant that are free
// for every day of dr, ordered by umbrella id.
func (c *Core) QueryAvailable(ctx context.Context, tenantID uuid.UUID, dr daterange.Range) ([]umbrellabus.Umbrella, error) {
	return c.QueryAvailableFiltered(ctx, tenantID, dr, QueryFilter{})
}

// QueryAvailableByType returns the free umbrellas of one type.
func (c *Core) QueryAvailableByType(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, typ umbrellatype.Type) ([]umbrellabus.Umbrella, error) {
	return c.QueryAvailableFiltered(ctx, tenantID, dr, QueryFilter{Type: &typ})
}

// QueryAvailableFiltered returns the free umbrellas matching the filter.
func (c *Core) QueryAvailableFiltered(ctx context.Context, tenantID uuid.UUID, dr daterange.Range, filter QueryFilter) ([]umbrellabus.Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.availabilitybus.queryAvailable")
	defer span.End()

	umbs, err := c.storer.QueryAvailable(ctx, tenantID, dr, filter)
	if err != nil {
		return nil, fmt.Errorf("queryAvailable: range[%s]: %w", dr, err)
	}

	return umbs, nil
}
