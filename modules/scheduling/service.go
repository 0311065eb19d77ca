package scheduling

import (
	"context"
	"log/slog"

	"github.com/rosterly/rosterly/pkg/pg"
	"github.com/rosterly/rosterly/pkg/tenant"
)

// Registry is the slice of the tenant registry the service needs for
// onboarding and the provisioning backfill.
type Registry interface {
	Create(ctx context.Context, t tenant.Tenant) (*tenant.Tenant, error)
	List(ctx context.Context) ([]tenant.Tenant, error)
}

// Service is the external surface of the isolation layer: handle lookup
// for request handling, schema lifecycle for onboarding and operator
// tooling. Route handlers normally reach it through Middleware rather
// than directly.
type Service struct {
	cache       *HandleCache
	provisioner *Provisioner
	registry    Registry
	log         *slog.Logger
	metrics     *Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithServiceMetrics wires provisioning counters.
func WithServiceMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService assembles the isolation layer over the shared pool. The cache
// and provisioner are owned by the service; call Close on shutdown.
func NewService(cache *HandleCache, provisioner *Provisioner, registry Registry, opts ...ServiceOption) *Service {
	s := &Service{
		cache:       cache,
		provisioner: provisioner,
		registry:    registry,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetBusinessDB returns the tenant's data accessor, cached across requests.
func (s *Service) GetBusinessDB(tenantID string) *Store {
	return s.cache.Get(tenantID)
}

// InitializeBusinessDatabase provisions the tenant's schema. Invoked once
// at onboarding; re-invocation fails on the enum types (SQLSTATE 42710).
func (s *Service) InitializeBusinessDatabase(ctx context.Context, tenantID string) error {
	if err := s.provisioner.Provision(ctx, tenantID); err != nil {
		s.metrics.provisionResult("error")
		return err
	}
	s.metrics.provisionResult("ok")
	return nil
}

// DropBusinessSchema destroys the tenant's schema and evicts its cached
// handle. Operator tooling only; never wired to a request path.
func (s *Service) DropBusinessSchema(ctx context.Context, tenantID string) error {
	s.cache.Invalidate(tenantID)
	return s.provisioner.Drop(ctx, tenantID)
}

// Onboard registers a new tenant in the registry and provisions its
// schema. A provisioning failure after registration leaves the tenant
// registered but without a schema; the backfill tool repairs that state.
func (s *Service) Onboard(ctx context.Context, t tenant.Tenant) (*tenant.Tenant, error) {
	created, err := s.registry.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.InitializeBusinessDatabase(ctx, created.ID); err != nil {
		return nil, err
	}
	return created, nil
}

// ProvisionReport summarizes one backfill run over all registered tenants.
type ProvisionReport struct {
	Provisioned int
	Existing    int
	Failed      int
}

// ProvisionAll provisions the schema of every registered tenant, backfilling
// tenants created before schema provisioning existed. Tenants whose schema
// already exists (enum creation fails with 42710) count as existing.
// Individual failures are logged and do not abort the batch.
func (s *Service) ProvisionAll(ctx context.Context) (ProvisionReport, error) {
	tenants, err := s.registry.List(ctx)
	if err != nil {
		return ProvisionReport{}, err
	}

	var report ProvisionReport
	for _, t := range tenants {
		err := s.provisioner.Provision(ctx, t.ID)
		switch {
		case err == nil:
			report.Provisioned++
		case pg.IsDuplicateObjectError(err):
			report.Existing++
		default:
			report.Failed++
			s.log.ErrorContext(ctx, "tenant schema backfill failed",
				slog.String("tenant_id", t.ID), slog.Any("error", err))
		}
	}

	s.log.InfoContext(ctx, "tenant schema backfill finished",
		slog.Int("provisioned", report.Provisioned),
		slog.Int("existing", report.Existing),
		slog.Int("failed", report.Failed))
	return report, nil
}

// Close releases the handle cache's background resources.
func (s *Service) Close() error {
	return s.cache.Close()
}
