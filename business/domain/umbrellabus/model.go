package umbrellabus

import (
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
)

// Umbrella represents a bookable umbrella on the beach of a tenant.
type Umbrella struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Number      int
	Row         string
	Type        umbrellatype.Type
	Description string
	PosX        *int
	PosY        *int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUmbrella contains information needed to create a new umbrella.
type NewUmbrella struct {
	Number      int
	Row         string
	Type        umbrellatype.Type
	Description string
	PosX        *int
	PosY        *int
}

// UpdateUmbrella contains information needed to update an umbrella. Fields
// left nil are not changed.
type UpdateUmbrella struct {
	Number      *int
	Row         *string
	Type        *umbrellatype.Type
	Description *string
	PosX        *int
	PosY        *int
}
