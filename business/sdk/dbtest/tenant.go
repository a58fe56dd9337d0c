package dbtest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
)

type tenantStore struct {
	db *DB
}

func (s tenantStore) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	if err := s.db.checkTx(tx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s tenantStore) Create(ctx context.Context, t tenantbus.Tenant) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, t2 := range s.db.tenants {
		if t2.Slug == t.Slug {
			return fmt.Errorf("create: %w", tenantbus.ErrUniqueSlug)
		}
	}

	s.db.tenants[t.ID] = t
	return nil
}

func (s tenantStore) Update(ctx context.Context, t tenantbus.Tenant) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.tenants[t.ID]; exists {
		s.db.tenants[t.ID] = t
	}
	return nil
}

func (s tenantStore) Delete(ctx context.Context, t tenantbus.Tenant) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.tenants, t.ID)

	for id, u := range s.db.umbrellas {
		if u.TenantID == t.ID {
			delete(s.db.umbrellas, id)
		}
	}

	for id, r := range s.db.reservations {
		if r.TenantID == t.ID {
			delete(s.db.reservations, id)
		}
	}

	for id, p := range s.db.payments {
		if p.TenantID == t.ID {
			delete(s.db.payments, id)
		}
	}

	return nil
}

func (s tenantStore) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, exists := s.db.tenants[tenantID]
	if !exists {
		return tenantbus.Tenant{}, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
	}

	return t, nil
}

func (s tenantStore) QueryIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, t := range s.db.tenants {
		if t.Slug == slug {
			return t.ID, nil
		}
	}

	return uuid.Nil, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
}
