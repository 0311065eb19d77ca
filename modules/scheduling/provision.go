package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the single-statement execution surface the provisioner needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Provisioner creates and destroys tenant schemas. All DDL for one tenant
// is issued as a single batched script to keep round trips down.
type Provisioner struct {
	db      execer
	log     *slog.Logger
	timeout time.Duration
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionTimeout bounds each provisioning run. DDL is an
// all-or-nothing multi-statement operation, so it must not hang on a stuck
// connection indefinitely. Defaults to 30 seconds.
func WithProvisionTimeout(d time.Duration) ProvisionerOption {
	return func(p *Provisioner) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProvisionerLogger sets the logger used for provisioning events.
func WithProvisionerLogger(log *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProvisioner creates a schema provisioner over the shared pool.
func NewProvisioner(db execer, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		db:      db,
		log:     slog.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision creates the tenant's schema, enum types, tables and indexes.
// Schema and table creation are idempotent; enum-type creation is not, so
// provisioning an already-provisioned tenant fails with SQLSTATE 42710 on
// the first CREATE TYPE (detectable via pg.IsDuplicateObjectError). A
// failure part way through leaves the schema partially created and is
// reported unmodified, wrapped in ErrProvisioningFailed.
func (p *Provisioner) Provision(ctx context.Context, tenantID string) error {
	schema := SchemaName(tenantID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.db.Exec(ctx, provisionScript(schema)); err != nil {
		return errors.Join(ErrProvisioningFailed, err)
	}

	p.log.InfoContext(ctx, "tenant schema provisioned",
		slog.String("tenant_id", tenantID), slog.String("schema", schema))
	return nil
}

// Drop removes the tenant's schema and everything in it. Destructive and
// irreversible; the caller (operator tooling) owns any confirmation step.
func (p *Provisioner) Drop(ctx context.Context, tenantID string) error {
	schema := SchemaName(tenantID)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.db.Exec(ctx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %q CASCADE`, schema)); err != nil {
		return errors.Join(ErrDropFailed, err)
	}

	p.log.WarnContext(ctx, "tenant schema dropped",
		slog.String("tenant_id", tenantID), slog.String("schema", schema))
	return nil
}

// provisionScript renders the full DDL batch for one tenant schema. The
// schema argument comes from SchemaName and is safe to splice as an
// identifier; no caller-supplied value ever reaches this string.
func provisionScript(schema string) string {
	q := func(t Table) string { return t.Qualified(schema) }

	var b strings.Builder
	fmt.Fprintf(&b, `CREATE SCHEMA IF NOT EXISTS %q;

CREATE TYPE %q.request_status AS ENUM ('open', 'locked', 'archived');
CREATE TYPE %q.schedule_status AS ENUM ('draft', 'published');
`, schema, schema, schema)

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	week_start DATE NOT NULL,
	status %q.request_status NOT NULL DEFAULT 'open',
	deadline TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS availability_requests_week_start_idx
	ON %s (week_start);
`, q(TableAvailabilityRequests), schema, q(TableAvailabilityRequests))

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	request_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	entry_date DATE NOT NULL,
	blocks JSONB NOT NULL DEFAULT '{}'::jsonb,
	note TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (request_id, user_id, entry_date)
);
CREATE INDEX IF NOT EXISTS availability_entries_user_idx
	ON %s (user_id, entry_date);
`, q(TableAvailabilityEntries), q(TableAvailabilityRequests), q(TableAvailabilityEntries))

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	week_start DATE NOT NULL UNIQUE,
	status %q.schedule_status NOT NULL DEFAULT 'draft',
	"rows" JSONB NOT NULL DEFAULT '[]'::jsonb,
	"columns" JSONB NOT NULL DEFAULT '[]'::jsonb,
	published_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`, q(TableScheduleWeeks), schema)

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	week_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	shift_date DATE NOT NULL,
	position INT NOT NULL DEFAULT 0,
	role TEXT,
	start_time TEXT,
	end_time TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS shift_assignments_week_idx
	ON %s (week_id, shift_date, position);
`, q(TableShiftAssignments), q(TableScheduleWeeks), q(TableShiftAssignments))

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	"rows" JSONB NOT NULL DEFAULT '[]'::jsonb,
	"columns" JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`, q(TableScheduleTemplates))

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	template_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	position INT NOT NULL DEFAULT 0,
	slots JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (template_id, user_id, position)
);
`, q(TableTemplateAssignments), q(TableScheduleTemplates))

	fmt.Fprintf(&b, `
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	external_id TEXT,
	settings JSONB NOT NULL DEFAULT '{}'::jsonb,
	sync_token TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, provider)
);
`, q(TableCalendarIntegrations))

	return b.String()
}
