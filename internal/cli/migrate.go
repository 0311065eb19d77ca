package cli

import (
	"github.com/spf13/cobra"

	"github.com/rosterly/rosterly/pkg/config"
	"github.com/rosterly/rosterly/pkg/pg"
)

// MigrateCmd applies the global-table goose migrations. Per-tenant schemas
// are provisioned by the scheduling module, not here.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply global database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, log, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return err
			}

			if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
				return err
			}
			log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
