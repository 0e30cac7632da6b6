package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/barribox/barribox-backend/internal/app"
	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/logger"
)

var (
	memoryStore bool
	verbose     bool

	logg         *logger.Logger
	loadedConfig *config.Config
	application  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "barribox",
	Short: "Operate a BarriBox deployment from the terminal",
	Long: `barribox talks to the same store the API server uses.

It can reseed the demo catalog, inspect orders and pickup points, and run
the assistant either one question at a time or as a voice loop over stdin.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&memoryStore, "memory", false, "use an in-process store instead of the configured driver")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(seedCmd, ordersCmd, pointsCmd, assistantCmd, maintenanceCmd)
}

func bootstrap(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loadedConfig = cfg
	level := logger.ParseLevel(cfg.App.LogLevel)
	if verbose {
		level = logger.ParseLevel("debug")
	}
	logg = logger.New(logger.Options{
		ServiceName: "cli",
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
	})

	var opts []app.Option
	if memoryStore {
		opts = append(opts, app.WithStore(kv.NewMemory()))
	}
	application, err = app.Open(cmd.Context(), cfg, logg, opts...)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
