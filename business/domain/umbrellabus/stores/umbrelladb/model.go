package umbrelladb

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

func toDBUmbrella(bus umbrellabus.Umbrella) umbrellaDB {
	return umbrellaDB{
		ID:          bus.ID,
		TenantID:    bus.TenantID,
		Number:      bus.Number,
		Row:         bus.Row,
		Type:        bus.Type.String(),
		Description: bus.Description,
		PosX:        toNullInt(bus.PosX),
		PosY:        toNullInt(bus.PosY),
		Active:      bus.Active,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusUmbrella(db umbrellaDB) (umbrellabus.Umbrella, error) {
	typ, err := umbrellatype.Parse(db.Type)
	if err != nil {
		return umbrellabus.Umbrella{}, fmt.Errorf("parse type: %w", err)
	}

	return umbrellabus.Umbrella{
		ID:          db.ID,
		TenantID:    db.TenantID,
		Number:      db.Number,
		Row:         db.Row,
		Type:        typ,
		Description: db.Description,
		PosX:        fromNullInt(db.PosX),
		PosY:        fromNullInt(db.PosY),
		Active:      db.Active,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}, nil
}

func toBusUmbrellas(dbs []umbrellaDB) ([]umbrellabus.Umbrella, error) {
	bus := make([]umbrellabus.Umbrella, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusUmbrella(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}

func toNullInt(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func fromNullInt(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}
