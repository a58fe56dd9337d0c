package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/domain/umbrellabus"
	"github.com/jcpaschoal/lido/business/types/plan"
	"github.com/jcpaschoal/lido/business/types/umbrellatype"
)

// SeedTenant creates a tenant on the specified plan.
func (db *Database) SeedTenant(t *testing.T, slug string, p plan.Plan) tenantbus.Tenant {
	t.Helper()

	nt := tenantbus.NewTenant{
		Name: "Lido " + slug,
		Slug: slug,
		Plan: p,
	}

	tnt, err := db.BusDomain.Tenant.Create(context.Background(), nt)
	if err != nil {
		t.Fatalf("seeding tenant %q: %s", slug, err)
	}

	return tnt
}

// SeedUmbrellas creates n umbrellas of the specified type numbered from 1
// in row A.
func (db *Database) SeedUmbrellas(t *testing.T, tnt tenantbus.Tenant, n int, typ umbrellatype.Type) []umbrellabus.Umbrella {
	t.Helper()

	nus := make([]umbrellabus.NewUmbrella, n)
	for i := range nus {
		nus[i] = umbrellabus.NewUmbrella{
			Number:      i + 1,
			Row:         "A",
			Type:        typ,
			Description: fmt.Sprintf("umbrella %d", i+1),
		}
	}

	umbs, err := db.BusDomain.Umbrella.CreateBatch(context.Background(), tnt.ID, nus)
	if err != nil {
		t.Fatalf("seeding umbrellas: %s", err)
	}

	return umbs
}
