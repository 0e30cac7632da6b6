package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run the maintenance jobs once",
	Long: `Runs one scheduler cycle, the same one the API server runs on its
interval. On postgres and sqlite stores it purges expired sessions and
idempotency records.`,
	Args: cobra.NoArgs,
	RunE: runMaintenance,
}

func runMaintenance(cmd *cobra.Command, args []string) error {
	scheduler, err := application.Maintenance(loadedConfig, logg)
	if err != nil {
		return err
	}
	if err := scheduler.RunOnce(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "maintenance cycle complete")
	return nil
}
