// Package maintenance prunes aged summaries from the store on a schedule.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"condenser/internal/database"
)

const (
	hourlyPruneSpec       = "0 * * * *"
	timezone              = "UTC"
	timezoneOffsetSeconds = 0
	pruneTimeout          = time.Minute
)

type Janitor struct {
	ctx       context.Context
	cron      *cron.Cron
	db        *database.Database
	retention time.Duration
	log       *slog.Logger
}

func New(
	ctx context.Context,
	db *database.Database,
	retention time.Duration,
	log *slog.Logger,
) *Janitor {
	c := cron.New(cron.WithLocation(time.FixedZone(timezone, timezoneOffsetSeconds)))

	return &Janitor{
		ctx:       ctx,
		cron:      c,
		db:        db,
		retention: retention,
		log:       log,
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(hourlyPruneSpec, j.prune); err != nil {
		return err
	}

	j.cron.Start()

	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) prune() {
	ctx, cancel := context.WithTimeout(j.ctx, pruneTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.retention)

	removed, err := j.db.PruneOlderThan(ctx, cutoff)
	if err != nil {
		j.log.ErrorContext(ctx, "Failed to prune summaries",
			"error", err,
			"cutoff", cutoff)

		return
	}

	remaining, err := j.db.CountSummaries(ctx)
	if err != nil {
		j.log.WarnContext(ctx, "Failed to count summaries",
			"error", err)
	}

	j.log.InfoContext(ctx, "Summary store pruned",
		"removed", removed,
		"remaining", remaining,
		"cutoff", cutoff)
}
