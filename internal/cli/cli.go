// Package cli assembles the rosterly commands: the API server, global
// migrations and the tenant-schema operator tools.
package cli

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosterly/rosterly/pkg/config"
	"github.com/rosterly/rosterly/pkg/logger"
	"github.com/rosterly/rosterly/pkg/pg"
	"github.com/rosterly/rosterly/pkg/tenant"
)

type appConfig struct {
	ServiceName string     `env:"SERVICE_NAME" envDefault:"rosterly"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string     `env:"LOG_FORMAT" envDefault:"json"`

	// Tenant identity resolution for the API server.
	TenantHeader    string `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	SubdomainSuffix string `env:"TENANT_SUBDOMAIN_SUFFIX"`
	JWTSigningKey   string `env:"JWT_SIGNING_KEY"`
}

func newLogger(cfg appConfig) *slog.Logger {
	format := logger.FormatJSON
	if cfg.LogFormat == "text" {
		format = logger.FormatText
	}
	log := logger.New(
		logger.WithLevel(cfg.LogLevel),
		logger.WithFormat(format),
		logger.WithService(cfg.ServiceName),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)
	return log
}

// bootstrap loads the shared configuration and opens the connection pool.
// Every command starts here.
func bootstrap(ctx context.Context) (appConfig, *slog.Logger, *pgxpool.Pool, error) {
	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return appConfig{}, nil, nil, err
	}
	log := newLogger(appCfg)

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return appConfig{}, nil, nil, err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return appConfig{}, nil, nil, err
	}
	return appCfg, log, pool, nil
}
