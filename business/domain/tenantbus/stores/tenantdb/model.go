package tenantdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/tenantstatus"
)

// tenantDB represents the structure of the tenant table in the database.
type tenantDB struct {
	ID        uuid.UUID `db:"tenant_id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Plan      string    `db:"plan"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toDBTenant(bus tenantbus.Tenant) tenantDB {
	return tenantDB{
		ID:        bus.ID,
		Name:      bus.Name,
		Slug:      bus.Slug,
		Plan:      bus.Plan.String(),
		Status:    bus.Status.String(),
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: bus.UpdatedAt.UTC(),
	}
}

func toBusTenant(db tenantDB) (tenantbus.Tenant, error) {
	p, err := plan.Parse(db.Plan)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse plan: %w", err)
	}

	st, err := tenantstatus.Parse(db.Status)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse status: %w", err)
	}

	return tenantbus.Tenant{
		ID:        db.ID,
		Name:      db.Name,
		Slug:      db.Slug,
		Plan:      p,
		Status:    st,
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}, nil
}
