package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rosterly/rosterly/internal/cli"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rosterly",
		Short: "Rosterly workforce scheduling backend",
	}

	rootCmd.AddCommand(
		cli.ServeCmd(),
		cli.MigrateCmd(),
		cli.ProvisionTenantsCmd(),
		cli.DropSchemaCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
