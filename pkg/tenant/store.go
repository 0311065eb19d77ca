package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgxpool.Pool the store needs, kept as an
// interface so tests can substitute a fake.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgx-backed tenant registry over the global "tenants" table.
// It implements Provider and additionally supports onboarding and
// enumeration for the schema backfill tool.
type Store struct {
	db querier
}

// NewStore creates a registry store. The tenants table is created by the
// global goose migrations, not here.
func NewStore(db querier) *Store {
	return &Store{db: db}
}

// Create registers a new tenant. An empty ID is assigned a fresh UUID.
// Subdomain collisions surface as a duplicate-key error from the driver.
func (s *Store) Create(ctx context.Context, t Tenant) (*Tenant, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tenants (id, subdomain, name, active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, subdomain, name, active, created_at`,
		t.ID, t.Subdomain, t.Name, t.Active, t.CreatedAt,
	)
	return scanTenant(row)
}

// GetByIdentifier implements Provider. The identifier may be the tenant id
// or the subdomain.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	if identifier == "" {
		return nil, ErrInvalidIdentifier
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, subdomain, name, active, created_at
		FROM tenants
		WHERE id = $1 OR subdomain = $1`,
		identifier,
	)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns all registered tenants in onboarding order. Used by the
// provisioning backfill tool to iterate every tenant.
func (s *Store) List(ctx context.Context) ([]Tenant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, subdomain, name, active, created_at
		FROM tenants
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Subdomain, &t.Name, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// SetActive toggles a tenant's active flag.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE tenants SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.Subdomain, &t.Name, &t.Active, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
