package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterly/rosterly/modules/scheduling"
	"github.com/rosterly/rosterly/pkg/tenant"
)

// ProvisionTenantsCmd backfills schemas for every registered tenant.
// Tenants whose schema already exists are skipped; individual failures are
// logged without aborting the run.
func ProvisionTenantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision-tenants",
		Short: "Provision schemas for all registered tenants",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			report, err := svc.ProvisionAll(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "provisioned %d, existing %d, failed %d\n",
				report.Provisioned, report.Existing, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d tenant(s) failed to provision", report.Failed)
			}
			return nil
		},
	}
}
