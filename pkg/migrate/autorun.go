package migrate

import (
	"context"
	"fmt"

	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/db"
	"github.com/barribox/barribox-backend/pkg/logger"
)

// MaybeRun applies pending migrations at boot when the store is gorm-backed
// and either the app runs in dev with auto-migrate on, or the driver is
// sqlite (a local file nobody migrates by hand).
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil || !cfg.Store.NeedsDB() {
		return nil
	}
	sqlite := client.Dialect() == "sqlite3"
	if !sqlite && !(cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate) {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})
	logg.Info(ctx, "running goose migrations at boot")

	if err := Run(ctx, sqlDB, client.Dialect(), DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
