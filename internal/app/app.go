// Package app assembles the store backend, shared state and domain services
// from config. The API server and the CLI both boot through it.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/barribox/barribox-backend/internal/assistant"
	"github.com/barribox/barribox-backend/internal/cron"
	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/persistence"
	"github.com/barribox/barribox-backend/internal/state"
	"github.com/barribox/barribox-backend/internal/support"
	"github.com/barribox/barribox-backend/internal/users"
	"github.com/barribox/barribox-backend/pkg/auth/session"
	"github.com/barribox/barribox-backend/pkg/config"
	"github.com/barribox/barribox-backend/pkg/db"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/llm"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/metrics"
	"github.com/barribox/barribox-backend/pkg/migrate"
	"github.com/barribox/barribox-backend/pkg/redis"
)

// App holds everything a process needs after boot.
type App struct {
	Store    kv.Store
	Redis    *redis.Client
	DB       *db.Client
	Adapter  *persistence.Adapter
	State    *state.Store
	Sessions *session.Manager
	Registry *prometheus.Registry

	Users     users.Service
	Orders    orders.Service
	Assistant assistant.Service
	Support   support.Service
}

type options struct {
	store kv.Store
}

type Option func(*options)

// WithStore bypasses driver selection and uses the given backend.
func WithStore(store kv.Store) Option {
	return func(o *options) { o.store = store }
}

// Open connects the configured store driver and wires the services.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Registry: prometheus.NewRegistry()}
	a.Store = o.store
	if a.Store == nil {
		if err := a.openStore(ctx, cfg, logg); err != nil {
			return nil, multierr.Append(err, a.Close())
		}
	}

	if err := a.wire(ctx, cfg, logg); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		a.Redis = client
		a.Store = client.StateStore()
	case config.StoreDriverPostgres, config.StoreDriverSQLite:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return fmt.Errorf("bootstrap database: %w", err)
		}
		a.DB = client
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return fmt.Errorf("boot migrations: %w", err)
		}
		a.Store = client.StateStore()
	case config.StoreDriverMemory:
		a.Store = kv.NewMemory()
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	// Rate limiting needs redis even when collections live elsewhere.
	if a.Redis == nil && cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, rate limiting disabled")
			return nil
		}
		a.Redis = client
	}
	return nil
}

func (a *App) wire(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	var persistOpts []persistence.Option
	if !cfg.Store.SeedDemo {
		persistOpts = append(persistOpts, persistence.WithoutDemoSeed())
	}
	adapter, err := persistence.New(a.Store, cfg.Store.KeyPrefix, logg, persistOpts...)
	if err != nil {
		return err
	}
	a.Adapter = adapter

	if a.State, err = state.Open(ctx, adapter, logg); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if a.Sessions, err = session.NewManager(adapter, cfg.JWT); err != nil {
		return err
	}

	if a.Users, err = users.NewService(a.State, logg); err != nil {
		return err
	}
	orderMetrics := metrics.NewOrderMetrics(a.Registry)
	if a.Orders, err = orders.NewService(a.State, logg, orders.WithRecorder(orderMetrics)); err != nil {
		return err
	}
	if a.Support, err = support.NewService(a.State, logg); err != nil {
		return err
	}

	generator, err := llm.New(ctx, cfg.GenAI, logg)
	if err != nil {
		return fmt.Errorf("bootstrap genai: %w", err)
	}
	assistantMetrics := metrics.NewAssistantMetrics(a.Registry)
	if a.Assistant, err = assistant.NewService(a.Orders, generator, logg, assistant.WithRecorder(assistantMetrics)); err != nil {
		return err
	}
	return nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var err error
	if a.Redis != nil {
		err = multierr.Append(err, a.Redis.Close())
	}
	if a.DB != nil {
		err = multierr.Append(err, a.DB.Close())
	}
	return err
}

// Maintenance builds the job scheduler. Redis provides the cross-instance
// lock when present.
func (a *App) Maintenance(cfg *config.Config, logg *logger.Logger) (*cron.Service, error) {
	registry := cron.NewRegistry()
	if a.DB != nil {
		job, err := cron.NewExpiredEntriesJob(cron.ExpiredEntriesJobParams{
			Logger: logg,
			Store:  a.DB.StateStore(),
		})
		if err != nil {
			return nil, err
		}
		registry.Register(job)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if a.Redis != nil {
		redisLock, err := cron.NewRedisLock(a.Redis, cfg.Maintenance.LockKey, 0)
		if err != nil {
			return nil, err
		}
		lock = redisLock
	}

	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(a.Registry),
		Interval: cfg.Maintenance.Interval,
	})
}
