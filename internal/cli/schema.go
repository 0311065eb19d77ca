package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterly/rosterly/modules/scheduling"
	"github.com/rosterly/rosterly/pkg/tenant"
)

// DropSchemaCmd destroys one tenant's schema and everything in it.
// Operator tooling only; requires --yes because the drop cascades.
func DropSchemaCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "drop-schema <tenant-id>",
		Short: "Drop a tenant's schema (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := args[0]
			if !confirmed {
				return fmt.Errorf("refusing to drop schema %q without --yes", scheduling.SchemaName(tenantID))
			}

			ctx := cmd.Context()
			_, log, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := scheduling.NewService(
				scheduling.NewHandleCache(pool),
				scheduling.NewProvisioner(pool, scheduling.WithProvisionerLogger(log)),
				tenant.NewStore(pool),
				scheduling.WithServiceLogger(log),
			)
			defer svc.Close() //nolint:errcheck

			if err := svc.DropBusinessSchema(ctx, tenantID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped schema %s\n", scheduling.SchemaName(tenantID))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the destructive drop")
	return cmd
}
