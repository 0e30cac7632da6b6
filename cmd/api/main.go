package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/barribox/barribox-backend/api/controllers"
	"github.com/barribox/barribox-backend/api/routes"
	"github.com/barribox/barribox-backend/internal/app"
	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/maps"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap application", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logg.Error(context.Background(), "error closing stores", err)
		}
	}()

	infra := routes.Infra{
		Store:    application.Store,
		Sessions: application.Sessions,
		Lookup:   application.State,
		Gatherer: application.Registry,
	}
	if application.Redis != nil {
		infra.Limiter = application.Redis
	}
	var places controllers.PlacesClient
	if cfg.GoogleMaps.APIKey != "" {
		client, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(ctx, "failed to create places client", err)
			os.Exit(1)
		}
		places = client
	}
	infra.Places = places

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
		"genai":        cfg.GenAI.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, infra, routes.Services{
			Users:     application.Users,
			Orders:    application.Orders,
			Assistant: application.Assistant,
			Support:   application.Support,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Maintenance.Enabled {
		scheduler, err := application.Maintenance(cfg, logg)
		if err != nil {
			logg.Error(ctx, "failed to create maintenance scheduler", err)
			os.Exit(1)
		}
		go func() {
			_ = scheduler.Run(ctx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
