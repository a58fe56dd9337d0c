// Package tenantbus provides business access to tenant domain.
package tenantbus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/sdk/errs"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/tenantstatus"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jcpaschoal/lido/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound   = errs.Newf(errs.NotFound, "tenant not found")
	ErrUniqueSlug = errs.Newf(errs.InvalidArgument, "slug is not unique")
)

// Storer defines the behavior required by the tenantbus to interact with the database.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, t Tenant) error
	Update(ctx context.Context, t Tenant) error
	Delete(ctx context.Context, t Tenant) error
	QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error)
	QueryIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)
}

// Core manages the set of APIs for tenant access.
type Core struct {
	storer Storer
	log    *logger.Logger
}

// NewCore constructs a core for tenant api access.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		storer: storer,
		log:    log,
	}
}

// NewWithTx constructs a new Core value replacing the Storer
// value with a Storer value that is currently inside a transaction.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, fmt.Errorf("newWithTx: %w", err)
	}

	return NewCore(c.log, storer), nil
}

// Create adds a new tenant to the system. New tenants start on a trial.
func (c *Core) Create(ctx context.Context, nt NewTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.create")
	defer span.End()

	now := time.Now()

	t := Tenant{
		ID:        uuid.New(),
		Name:      nt.Name,
		Slug:      nt.Slug,
		Plan:      nt.Plan,
		Status:    tenantstatus.Trial,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("create: %w", err)
	}

	return t, nil
}

// Update modifies data about a tenant.
func (c *Core) Update(ctx context.Context, t Tenant, ut UpdateTenant) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.update")
	defer span.End()

	if ut.Name != nil {
		t.Name = *ut.Name
	}

	if ut.Plan != nil {
		t.Plan = *ut.Plan
	}

	if ut.Status != nil {
		t.Status = *ut.Status
	}

	t.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, t); err != nil {
		return Tenant{}, fmt.Errorf("update: %w", err)
	}

	return t, nil
}

// ChangePlan moves the tenant to a different subscription plan. A downgrade
// leaves existing umbrellas in place; the new ceiling applies to the next
// umbrella created.
func (c *Core) ChangePlan(ctx context.Context, t Tenant, p plan.Plan) (Tenant, error) {
	return c.Update(ctx, t, UpdateTenant{Plan: &p})
}

// Suspend stops the tenant from taking new reservations.
func (c *Core) Suspend(ctx context.Context, t Tenant) (Tenant, error) {
	s := tenantstatus.Suspended
	return c.Update(ctx, t, UpdateTenant{Status: &s})
}

// Activate puts the tenant back in business.
func (c *Core) Activate(ctx context.Context, t Tenant) (Tenant, error) {
	s := tenantstatus.Active
	return c.Update(ctx, t, UpdateTenant{Status: &s})
}

// Delete removes the specified tenant from the system.
func (c *Core) Delete(ctx context.Context, t Tenant) error {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, t); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the tenant by the specified ID.
func (c *Core) QueryByID(ctx context.Context, tenantID uuid.UUID) (Tenant, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryByID")
	defer span.End()

	tenant, err := c.storer.QueryByID(ctx, tenantID)
	if err != nil {
		return Tenant{}, fmt.Errorf("query: tenantID[%s]: %w", tenantID, err)
	}

	return tenant, nil
}

// QueryIDBySlug returns the tenant ID for the specified slug string.
func (c *Core) QueryIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	ctx, span := otel.AddSpan(ctx, "business.tenantbus.queryIDBySlug")
	defer span.End()

	id, err := c.storer.QueryIDBySlug(ctx, slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("query by slug[%s]: %w", slug, err)
	}

	return id, nil
}
