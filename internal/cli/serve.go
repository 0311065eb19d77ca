package cli

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rosterly/rosterly/modules/scheduling"
	"github.com/rosterly/rosterly/pkg/config"
	"github.com/rosterly/rosterly/pkg/httpserver"
	"github.com/rosterly/rosterly/pkg/logger"
	"github.com/rosterly/rosterly/pkg/pg"
	"github.com/rosterly/rosterly/pkg/tenant"
)

// ServeCmd runs the API server.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the rosterly API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			appCfg, log, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			var httpCfg httpserver.Config
			if err := config.Load(&httpCfg); err != nil {
				return err
			}

			registry := tenant.NewStore(pool)
			metrics := scheduling.NewMetrics(prometheus.DefaultRegisterer)
			cache := scheduling.NewHandleCache(pool, scheduling.WithCacheMetrics(metrics))
			provisioner := scheduling.NewProvisioner(pool, scheduling.WithProvisionerLogger(log))
			svc := scheduling.NewService(cache, provisioner, registry,
				scheduling.WithServiceLogger(log),
				scheduling.WithServiceMetrics(metrics),
			)
			defer svc.Close() //nolint:errcheck

			r := chi.NewRouter()
			r.Use(chimw.RealIP, chimw.Recoverer)

			r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
			r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool)))
			r.Handle("/metrics", promhttp.Handler())

			r.Post("/tenants", onboardHandler(svc, log))

			r.Route("/api", func(r chi.Router) {
				r.Use(tenant.Middleware(newResolver(appCfg), registry))
				r.Use(scheduling.Middleware(cache))
				r.Mount("/", scheduling.Router())
			})

			srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
			return srv.Run(ctx, r)
		},
	}
}

// newResolver layers the configured identity sources: bearer-token claims
// when a signing key is set, then the header, then the subdomain when a
// suffix is configured.
func newResolver(cfg appConfig) tenant.Resolver {
	resolvers := make([]tenant.Resolver, 0, 3)
	if cfg.JWTSigningKey != "" {
		resolvers = append(resolvers, tenant.NewClaimsResolver([]byte(cfg.JWTSigningKey)))
	}
	resolvers = append(resolvers, tenant.NewHeaderResolver(cfg.TenantHeader))
	if cfg.SubdomainSuffix != "" {
		resolvers = append(resolvers, tenant.NewSubdomainResolver(cfg.SubdomainSuffix))
	}
	return tenant.NewCompositeResolver(resolvers...)
}

type onboardRequest struct {
	Subdomain string `json:"subdomain"`
	Name      string `json:"name"`
}

// onboardHandler registers a tenant and provisions its schema in one call.
func onboardHandler(svc *scheduling.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req onboardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Subdomain == "" {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		created, err := svc.Onboard(r.Context(), tenant.Tenant{
			Subdomain: req.Subdomain,
			Name:      req.Name,
			Active:    true,
		})
		if err != nil {
			log.ErrorContext(r.Context(), "tenant onboarding failed", logger.Error(err))
			http.Error(w, "onboarding failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(created)
	}
}
