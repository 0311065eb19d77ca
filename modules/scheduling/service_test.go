package scheduling_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterly/rosterly/modules/scheduling"
	"github.com/rosterly/rosterly/pkg/tenant"
)

// scriptedExec fails Exec calls whose SQL mentions one of the scripted
// schemas, standing in for per-tenant provisioning outcomes.
type scriptedExec struct {
	calls    []string
	failures map[string]error
}

func (e *scriptedExec) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	e.calls = append(e.calls, sql)
	for schema, err := range e.failures {
		if strings.Contains(sql, schema) {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("OK 1"), nil
}

// stubRegistry serves a fixed tenant list and records creations.
type stubRegistry struct {
	tenants []tenant.Tenant
	created []tenant.Tenant
	err     error
}

func (r *stubRegistry) Create(_ context.Context, t tenant.Tenant) (*tenant.Tenant, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, t)
	return &t, nil
}

func (r *stubRegistry) List(context.Context) ([]tenant.Tenant, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.tenants, nil
}

func newTestService(exec *scriptedExec, reg *stubRegistry) *scheduling.Service {
	return scheduling.NewService(
		scheduling.NewHandleCache(&fakeDB{}),
		scheduling.NewProvisioner(exec),
		reg,
	)
}

func TestService(t *testing.T) {
	t.Parallel()

	t.Run("get business db caches per tenant", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&scriptedExec{}, &stubRegistry{})
		defer svc.Close()

		first := svc.GetBusinessDB("biz-123")
		assert.Same(t, first, svc.GetBusinessDB("biz-123"))
		assert.NotSame(t, first, svc.GetBusinessDB("biz-456"))
	})

	t.Run("initialize provisions the tenant schema", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{}
		svc := newTestService(exec, &stubRegistry{})
		defer svc.Close()

		require.NoError(t, svc.InitializeBusinessDatabase(t.Context(), "biz-123"))
		require.Len(t, exec.calls, 1)
		assert.Contains(t, exec.calls[0], `CREATE SCHEMA IF NOT EXISTS "business_biz_123"`)
	})

	t.Run("drop evicts the cached handle", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{}
		svc := newTestService(exec, &stubRegistry{})
		defer svc.Close()

		before := svc.GetBusinessDB("biz-123")
		require.NoError(t, svc.DropBusinessSchema(t.Context(), "biz-123"))

		assert.Contains(t, exec.calls[0], `DROP SCHEMA IF EXISTS "business_biz_123" CASCADE`)
		assert.NotSame(t, before, svc.GetBusinessDB("biz-123"))
	})

	t.Run("onboard registers then provisions", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{}
		reg := &stubRegistry{}
		svc := newTestService(exec, reg)
		defer svc.Close()

		created, err := svc.Onboard(t.Context(), tenant.Tenant{ID: "biz-9", Name: "Harbor Cafe"})
		require.NoError(t, err)
		assert.Equal(t, "biz-9", created.ID)
		require.Len(t, reg.created, 1)
		require.Len(t, exec.calls, 1)
		assert.Contains(t, exec.calls[0], `"business_biz_9"`)
	})

	t.Run("onboard surfaces provisioning failure", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{failures: map[string]error{
			"business_biz_9": errors.New("connection reset"),
		}}
		svc := newTestService(exec, &stubRegistry{})
		defer svc.Close()

		_, err := svc.Onboard(t.Context(), tenant.Tenant{ID: "biz-9"})
		require.ErrorIs(t, err, scheduling.ErrProvisioningFailed)
	})

	t.Run("registry failure aborts onboarding before any ddl", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{}
		svc := newTestService(exec, &stubRegistry{err: errors.New("unique violation")})
		defer svc.Close()

		_, err := svc.Onboard(t.Context(), tenant.Tenant{ID: "biz-9"})
		require.Error(t, err)
		assert.Empty(t, exec.calls)
	})
}

func TestProvisionAll(t *testing.T) {
	t.Parallel()

	t.Run("classifies outcomes per tenant", func(t *testing.T) {
		t.Parallel()

		exec := &scriptedExec{failures: map[string]error{
			"business_existing": &pgconn.PgError{Code: "42710", Message: `type "request_status" already exists`},
			"business_broken":   errors.New("connection reset"),
		}}
		reg := &stubRegistry{tenants: []tenant.Tenant{
			{ID: "fresh-1"},
			{ID: "fresh-2"},
			{ID: "existing"},
			{ID: "broken"},
		}}
		svc := newTestService(exec, reg)
		defer svc.Close()

		report, err := svc.ProvisionAll(t.Context())
		require.NoError(t, err)
		assert.Equal(t, scheduling.ProvisionReport{Provisioned: 2, Existing: 1, Failed: 1}, report)
		assert.Len(t, exec.calls, 4)
	})

	t.Run("registry failure aborts the run", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&scriptedExec{}, &stubRegistry{err: errors.New("down")})
		defer svc.Close()

		_, err := svc.ProvisionAll(t.Context())
		require.Error(t, err)
	})
}
