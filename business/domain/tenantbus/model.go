package tenantbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/tenantstatus"
)

// Tenant represents a beach club using the system.
type Tenant struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	Plan      plan.Plan
	Status    tenantstatus.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTenant contains information needed to create a new tenant.
type NewTenant struct {
	Name string
	Slug string
	Plan plan.Plan
}

// UpdateTenant contains information needed to update a tenant.
type UpdateTenant struct {
	Name   *string
	Plan   *plan.Plan
	Status *tenantstatus.Status
}
