// Package umbrellabus provides business access to the umbrella inventory of
// a tenant.
package umbrellabus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/order"
	"github.com/jcpaschoal/lido/business/sdk/page"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound          = errs.Newf(errs.NotFound, "umbrella not found")
	ErrDuplicateNumber   = errs.Newf(errs.DuplicateNumber, "umbrella number already in use")
	ErrCapacityExceeded  = errs.Newf(errs.CapacityExceeded, "plan umbrella limit reached")
	ErrHasActiveBookings = errs.Newf(errs.HasActiveBookings, "umbrella has active reservations")
	ErrHasHistory        = errs.Newf(errs.InvalidArgument, "umbrella has reservation history, deactivate it instead")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, u Umbrella) error
	Update(ctx context.Context, u Umbrella) error
	Delete(ctx context.Context, u Umbrella) error
	Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Umbrella, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (Umbrella, error)
	QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (Umbrella, error)
	QueryByNumber(ctx context.Context, tenantID uuid.UUID, number int) (Umbrella, error)
	CountReservations(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (ReservationCount, error)
	LockInventory(ctx context.Context, tenantID uuid.UUID) error
}

// ReservationCount reports how many reservations reference an umbrella.
type ReservationCount struct {
	Active int
	Total  int
}

// Core manages the set of APIs for umbrella access.
type Core struct {
	log       *logger.Logger
	beginner  sqldb.Beginner
	storer    Storer
	tenantBus *tenantbus.Core
}

// NewCore constructs an umbrella core API for use.
func NewCore(log *logger.Logger, beginner sqldb.Beginner, storer Storer, tenantBus *tenantbus.Core) *Core {
	return &Core{
		log:       log,
		beginner:  beginner,
		storer:    storer,
		tenantBus: tenantBus,
	}
}

// NewWithTx constructs a new Core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	tenantBus, err := c.tenantBus.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, sqldb.NestedBeginner(tx), storer, tenantBus), nil
}

// Create adds a new umbrella to the inventory of the tenant.
func (c *Core) Create(ctx context.Context, tenantID uuid.UUID, nu NewUmbrella) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.create")
	defer span.End()

	umbs, err := c.create(ctx, tenantID, []NewUmbrella{nu})
	if err != nil {
		return Umbrella{}, fmt.Errorf("create: %w", err)
	}

	return umbs[0], nil
}

// CreateBatch adds a set of umbrellas. Either all of them are created or
// none is.
func (c *Core) CreateBatch(ctx context.Context, tenantID uuid.UUID, nus []NewUmbrella) ([]Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.createBatch")
	defer span.End()

	umbs, err := c.create(ctx, tenantID, nus)
	if err != nil {
		return nil, fmt.Errorf("createBatch: %w", err)
	}

	return umbs, nil
}

func (c *Core) create(ctx context.Context, tenantID uuid.UUID, nus []NewUmbrella) ([]Umbrella, error) {
	seen := make(map[int]struct{}, len(nus))
	for _, nu := range nus {
		if _, exists := seen[nu.Number]; exists {
			return nil, fmt.Errorf("number[%d] repeated in batch: %w", nu.Number, ErrDuplicateNumber)
		}
		seen[nu.Number] = struct{}{}
	}

	now := time.Now()
	umbs := make([]Umbrella, 0, len(nus))

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		if err := c.checkCapacity(ctx, storer, tenantID, len(nus)); err != nil {
			return err
		}

		for _, nu := range nus {
			if err := checkNumberFree(ctx, storer, tenantID, nu.Number, uuid.Nil); err != nil {
				return err
			}

			u := Umbrella{
				ID:          uuid.New(),
				TenantID:    tenantID,
				Number:      nu.Number,
				Row:         nu.Row,
				Type:        nu.Type,
				Description: nu.Description,
				PosX:        nu.PosX,
				PosY:        nu.PosY,
				Active:      true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}

			if err := storer.Create(ctx, u); err != nil {
				return fmt.Errorf("number[%d]: %w", nu.Number, err)
			}

			umbs = append(umbs, u)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return umbs, nil
}

// Update modifies information about an umbrella. The changes are applied
// to the stored row, locked for the transaction, so fields not named in uu
// keep their current values even when u is stale.
func (c *Core) Update(ctx context.Context, u Umbrella, uu UpdateUmbrella) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.update")
	defer span.End()

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		u, err = storer.QueryByIDForUpdate(ctx, u.TenantID, u.ID)
		if err != nil {
			return err
		}

		if uu.Number != nil && *uu.Number != u.Number {
			if err := checkNumberFree(ctx, storer, u.TenantID, *uu.Number, u.ID); err != nil {
				return err
			}
			u.Number = *uu.Number
		}

		if uu.Row != nil {
			u.Row = *uu.Row
		}

		if uu.Type != nil {
			u.Type = *uu.Type
		}

		if uu.Description != nil {
			u.Description = *uu.Description
		}

		if uu.PosX != nil {
			u.PosX = uu.PosX
		}

		if uu.PosY != nil {
			u.PosY = uu.PosY
		}

		u.UpdatedAt = time.Now()

		return storer.Update(ctx, u)
	})
	if err != nil {
		return Umbrella{}, fmt.Errorf("update: %w", err)
	}

	return u, nil
}

// Activate puts an umbrella back into service. It counts against the plan
// limit like a new umbrella does.
func (c *Core) Activate(ctx context.Context, u Umbrella) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.activate")
	defer span.End()

	return c.setActive(ctx, u, true)
}

// Deactivate takes an umbrella out of service. Existing reservations are
// left untouched.
func (c *Core) Deactivate(ctx context.Context, u Umbrella) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.deactivate")
	defer span.End()

	return c.setActive(ctx, u, false)
}

func (c *Core) setActive(ctx context.Context, u Umbrella, active bool) (Umbrella, error) {
	op := "deactivate"
	if active {
		op = "activate"
	}

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		u, err = storer.QueryByIDForUpdate(ctx, u.TenantID, u.ID)
		if err != nil {
			return err
		}

		if u.Active == active {
			return nil
		}

		if active {
			if err := c.checkCapacity(ctx, storer, u.TenantID, 1); err != nil {
				return err
			}
		}

		u.Active = active
		u.UpdatedAt = time.Now()

		return storer.Update(ctx, u)
	})
	if err != nil {
		return Umbrella{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// Delete removes an umbrella that was never booked.
func (c *Core) Delete(ctx context.Context, u Umbrella) error {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.delete")
	defer span.End()

	err := sqldb.WithinTran(ctx, c.log, c.beginner, func(tx sqldb.CommitRollbacker) error {
		storer, err := c.storer.NewWithTx(tx)
		if err != nil {
			return err
		}

		if _, err := storer.QueryByIDForUpdate(ctx, u.TenantID, u.ID); err != nil {
			return err
		}

		rc, err := storer.CountReservations(ctx, u.TenantID, u.ID)
		if err != nil {
			return err
		}

		switch {
		case rc.Active > 0:
			return fmt.Errorf("umbrellaID[%s] active[%d]: %w", u.ID, rc.Active, ErrHasActiveBookings)
		case rc.Total > 0:
			return fmt.Errorf("umbrellaID[%s] total[%d]: %w", u.ID, rc.Total, ErrHasHistory)
		}

		return storer.Delete(ctx, u)
	})
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing umbrellas of the tenant.
func (c *Core) Query(ctx context.Context, tenantID uuid.UUID, filter QueryFilter, orderBy order.By, page page.Page) ([]Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.query")
	defer span.End()

	umbs, err := c.storer.Query(ctx, tenantID, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return umbs, nil
}

// QueryByRow returns the umbrellas of a row ordered by number.
func (c *Core) QueryByRow(ctx context.Context, tenantID uuid.UUID, row string, page page.Page) ([]Umbrella, error) {
	return c.Query(ctx, tenantID, QueryFilter{Row: &row}, DefaultOrderBy, page)
}

// QueryByType returns the umbrellas of a type ordered by number.
func (c *Core) QueryByType(ctx context.Context, tenantID uuid.UUID, typ umbrellatype.Type, page page.Page) ([]Umbrella, error) {
	return c.Query(ctx, tenantID, QueryFilter{Type: &typ}, DefaultOrderBy, page)
}

// Count returns the number of umbrellas matching the filter.
func (c *Core) Count(ctx context.Context, tenantID uuid.UUID, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.count")
	defer span.End()

	return c.storer.Count(ctx, tenantID, filter)
}

// CountActive returns the number of umbrellas in service.
func (c *Core) CountActive(ctx context.Context, tenantID uuid.UUID) (int, error) {
	active := true
	return c.Count(ctx, tenantID, QueryFilter{Active: &active})
}

// QueryByID finds the umbrella by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.queryByID")
	defer span.End()

	u, err := c.storer.QueryByID(ctx, tenantID, umbrellaID)
	if err != nil {
		return Umbrella{}, fmt.Errorf("query: umbrellaID[%s]: %w", umbrellaID, err)
	}

	return u, nil
}

// QueryByIDForUpdate finds the umbrella and holds a lock on it until the
// surrounding transaction ends. It serializes bookings of one umbrella.
func (c *Core) QueryByIDForUpdate(ctx context.Context, tenantID uuid.UUID, umbrellaID uuid.UUID) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.queryByIDForUpdate")
	defer span.End()

	u, err := c.storer.QueryByIDForUpdate(ctx, tenantID, umbrellaID)
	if err != nil {
		return Umbrella{}, fmt.Errorf("query for update: umbrellaID[%s]: %w", umbrellaID, err)
	}

	return u, nil
}

// QueryByNumber finds the umbrella with the specified number.
func (c *Core) QueryByNumber(ctx context.Context, tenantID uuid.UUID, number int) (Umbrella, error) {
	ctx, span := otel.AddSpan(ctx, "business.umbrellabus.queryByNumber")
	defer span.End()

	u, err := c.storer.QueryByNumber(ctx, tenantID, number)
	if err != nil {
		return Umbrella{}, fmt.Errorf("query: number[%d]: %w", number, err)
	}

	return u, nil
}

// =============================================================================

func (c *Core) checkCapacity(ctx context.Context, storer Storer, tenantID uuid.UUID, adding int) error {
	if err := storer.LockInventory(ctx, tenantID); err != nil {
		return err
	}

	t, err := c.tenantBus.QueryByID(ctx, tenantID)
	if err != nil {
		return err
	}

	active := true
	count, err := storer.Count(ctx, tenantID, QueryFilter{Active: &active})
	if err != nil {
		return err
	}

	if !t.Plan.Allows(count + adding) {
		return fmt.Errorf("plan[%s] max[%d] active[%d] adding[%d]: %w", t.Plan, t.Plan.MaxUmbrellas(), count, adding, ErrCapacityExceeded)
	}

	return nil
}

func checkNumberFree(ctx context.Context, storer Storer, tenantID uuid.UUID, number int, self uuid.UUID) error {
	existing, err := storer.QueryByNumber(ctx, tenantID, number)
	switch {
	case err == nil:
		if existing.ID != self {
			return fmt.Errorf("number[%d]: %w", number, ErrDuplicateNumber)
		}
		return nil

	case errs.IsKind(err, errs.NotFound):
		return nil

	default:
		return err
	}
}
