package cron

import (
	"context"
	"fmt"

	"github.com/barribox/barribox-backend/pkg/logger"
)

// expiredEntriesPurger is implemented by the gorm key-value store. Redis
// expires keys on its own and has no equivalent.
type expiredEntriesPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type ExpiredEntriesJobParams struct {
	Logger *logger.Logger
	Store  expiredEntriesPurger
}

// NewExpiredEntriesJob deletes session and idempotency rows whose TTL has
// elapsed. Reads already ignore them; this only reclaims space.
func NewExpiredEntriesJob(params ExpiredEntriesJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	return &expiredEntriesJob{logg: params.Logger, store: params.Store}, nil
}

type expiredEntriesJob struct {
	logg  *logger.Logger
	store expiredEntriesPurger
}

func (j *expiredEntriesJob) Name() string { return "kv-expired-entries" }

func (j *expiredEntriesJob) Run(ctx context.Context) error {
	deleted, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired entries: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "cron.expired_entries_purged")
	return nil
}
