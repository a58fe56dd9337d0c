package availabilitydb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
)

type umbrellaDB struct {
	ID          uuid.UUID     `db:"umbrella_id"`
	TenantID    uuid.UUID     `db:"tenant_id"`
	Number      int           `db:"number"`
	Row         string        `db:"row_label"`
	Type        string        `db:"umbrella_type"`
	Description string        `db:"description"`
	PosX        sql.NullInt32 `db:"pos_x"`
	PosY        sql.NullInt32 `db:"pos_y"`
	Active      bool          `db:"active"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func toBusUmbrellas(dbs []umbrellaDB) ([]umbrellabus.Umbrella, error) {
	bus := make([]umbrellabus.Umbrella, len(dbs))

	for i, db := range dbs {
		typ, err := umbrellatype.Parse(db.Type)
		if err != nil {
			return nil, fmt.Errorf("parse type: %w", err)
		}

		bus[i] = umbrellabus.Umbrella{
			ID:          db.ID,
			TenantID:    db.TenantID,
			Number:      db.Number,
			Row:         db.Row,
			Type:        typ,
			Description: db.Description,
			PosX:        nullInt(db.PosX),
			PosY:        nullInt(db.PosY),
			Active:      db.Active,
			CreatedAt:   db.CreatedAt.In(time.Local),
			UpdatedAt:   db.UpdatedAt.In(time.Local),
		}
	}

	return bus, nil
}

func nullInt(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}
