package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the order collection with the demo catalog",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	orders, err := application.Adapter.Reseed(cmd.Context())
	if err != nil {
		return fmt.Errorf("reseed: %w", err)
	}
	if err := application.State.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("reload state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d demo orders\n", len(orders))
	return nil
}
