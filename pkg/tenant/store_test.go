package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterly/rosterly/pkg/tenant"
)

// fakeQuerier records statements and serves queued scan values.
type fakeQuerier struct {
	lastSQL  string
	lastArgs []any
	rows     [][]any
	execed   int64
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	if f.execed > 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return &tenantRows{rows: f.rows}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	if len(f.rows) == 0 {
		return tenantRow{err: pgx.ErrNoRows}
	}
	return tenantRow{vals: f.rows[0]}
}

type tenantRow struct {
	vals []any
	err  error
}

func (r tenantRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignTenant(dest, r.vals)
}

type tenantRows struct {
	rows [][]any
	idx  int
}

func (r *tenantRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *tenantRows) Scan(dest ...any) error { return assignTenant(dest, r.rows[r.idx-1]) }

func (r *tenantRows) Close()                                       {}
func (r *tenantRows) Err() error                                   { return nil }
func (r *tenantRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *tenantRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *tenantRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }
func (r *tenantRows) RawValues() [][]byte                          { return nil }
func (r *tenantRows) Conn() *pgx.Conn                              { return nil }

func assignTenant(dest, vals []any) error {
	if len(dest) != len(vals) {
		return errors.New("column count mismatch")
	}
	*dest[0].(*string) = vals[0].(string)
	*dest[1].(*string) = vals[1].(string)
	*dest[2].(*string) = vals[2].(string)
	*dest[3].(*bool) = vals[3].(bool)
	*dest[4].(*time.Time) = vals[4].(time.Time)
	return nil
}

func tenantValues(id, subdomain string, active bool) []any {
	return []any{id, subdomain, "Harbor Cafe", active, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)}
}

func TestStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("assigns id when empty", func(t *testing.T) {
		t.Parallel()

		db := &fakeQuerier{rows: [][]any{tenantValues("biz-1", "harbor", true)}}
		created, err := tenant.NewStore(db).Create(t.Context(), tenant.Tenant{Subdomain: "harbor", Active: true})
		require.NoError(t, err)
		assert.Equal(t, "biz-1", created.ID)

		require.NotEmpty(t, db.lastArgs)
		_, parseErr := uuid.Parse(db.lastArgs[0].(string))
		assert.NoError(t, parseErr, "generated id should be a uuid")
		assert.Contains(t, db.lastSQL, "INSERT INTO tenants")
	})

	t.Run("keeps an explicit id", func(t *testing.T) {
		t.Parallel()

		db := &fakeQuerier{rows: [][]any{tenantValues("biz-7", "harbor", true)}}
		_, err := tenant.NewStore(db).Create(t.Context(), tenant.Tenant{ID: "biz-7", Subdomain: "harbor"})
		require.NoError(t, err)
		assert.Equal(t, "biz-7", db.lastArgs[0])
	})
}

func TestStoreGetByIdentifier(t *testing.T) {
	t.Parallel()

	t.Run("matches id or subdomain with one query", func(t *testing.T) {
		t.Parallel()

		db := &fakeQuerier{rows: [][]any{tenantValues("biz-1", "harbor", true)}}
		got, err := tenant.NewStore(db).GetByIdentifier(t.Context(), "harbor")
		require.NoError(t, err)
		assert.Equal(t, "biz-1", got.ID)
		assert.Contains(t, db.lastSQL, "id = $1 OR subdomain = $1")
	})

	t.Run("unknown identifier maps to sentinel", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewStore(&fakeQuerier{}).GetByIdentifier(t.Context(), "ghost")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("empty identifier rejected", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewStore(&fakeQuerier{}).GetByIdentifier(t.Context(), "")
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})
}

func TestStoreList(t *testing.T) {
	t.Parallel()

	db := &fakeQuerier{rows: [][]any{
		tenantValues("biz-1", "harbor", true),
		tenantValues("biz-2", "dockside", false),
	}}
	tenants, err := tenant.NewStore(db).List(t.Context())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "biz-2", tenants[1].ID)
	assert.Contains(t, db.lastSQL, "ORDER BY created_at ASC")
}

func TestStoreSetActive(t *testing.T) {
	t.Parallel()

	t.Run("updates the flag", func(t *testing.T) {
		t.Parallel()

		db := &fakeQuerier{execed: 1}
		require.NoError(t, tenant.NewStore(db).SetActive(t.Context(), "biz-1", false))
		assert.Equal(t, []any{"biz-1", false}, db.lastArgs)
	})

	t.Run("missing tenant maps to sentinel", func(t *testing.T) {
		t.Parallel()

		err := tenant.NewStore(&fakeQuerier{}).SetActive(t.Context(), "ghost", true)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}
