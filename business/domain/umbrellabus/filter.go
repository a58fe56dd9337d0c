package umbrellabus

import (
	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
)

// QueryFilter holds the available fields a query can be filtered on.
// We are using pointer semantics because the With API mutates the value.
type QueryFilter struct {
	ID     *uuid.UUID
	Number *int
	Row    *string
	Type   *umbrellatype.Type
	Active *bool
}
