// Package tenantdb contains tenant related CRUD functionality.
package tenantdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/domain/tenantbus"
	"github.com/jcpaschoal/lido/business/sdk/sqldb"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for tenant database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (tenantbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create inserts a new tenant into the database.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	INSERT INTO "public"."tenant"
		(tenant_id, name, slug, plan, status, created_at, updated_at)
	VALUES
		(:tenant_id, :name, :slug, :plan, :status, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) {
			if dupErr.Column == "slug" || dupErr.Column == "uq_tenant_slug" {
				return fmt.Errorf("namedexeccontext: %w", tenantbus.ErrUniqueSlug)
			}
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a tenant document in the database.
func (s *Store) Update(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	UPDATE
		"public"."tenant"
	SET
		name = :name,
		plan = :plan,
		status = :status,
		updated_at = :updated_at
	WHERE
		tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes a tenant from the database.
func (s *Store) Delete(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	DELETE FROM
		"public"."tenant"
	WHERE
		tenant_id = :tenant_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTenant(t)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified tenant from the database.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	data := struct {
		ID string `db:"tenant_id"`
	}{
		ID: tenantID.String(),
	}

	const q = `
	SELECT
		tenant_id, name, slug, plan, status, created_at, updated_at
	FROM
		"public"."tenant"
	WHERE
		tenant_id = :tenant_id`

	var dbT tenantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbT); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenantbus.Tenant{}, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
		}
		return tenantbus.Tenant{}, fmt.Errorf("db: %w", err)
	}

	return toBusTenant(dbT)
}

// QueryIDBySlug retrieves the tenant ID for the specified slug.
func (s *Store) QueryIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	data := struct {
		Slug string `db:"slug"`
	}{
		Slug: slug,
	}

	const q = `
	SELECT
		tenant_id
	FROM
		"public"."tenant"
	WHERE
		slug = :slug`

	var result struct {
		ID uuid.UUID `db:"tenant_id"`
	}

	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &result); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return uuid.Nil, fmt.Errorf("db: %w", tenantbus.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("db: %w", err)
	}

	return result.ID, nil
}
