package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"imposter/internal/store"
)

// Janitor periodically drops rooms nobody has touched for a while. Stores
// that expire documents on their own, like redis, do not need one.
type Janitor struct {
	purger  store.Purger
	maxIdle time.Duration
	now     func() time.Time
	logger  *zap.Logger
	cron    *cron.Cron
}

// New creates a janitor purging rooms idle for longer than maxIdle
func New(purger store.Purger, maxIdle time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		purger:  purger,
		maxIdle: maxIdle,
		now:     time.Now,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start runs the purge on schedule, a standard cron spec or descriptor such
// as "@every 5m"
func (j *Janitor) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	j.cron.Start()
	j.logger.Info("Janitor started",
		zap.String("schedule", schedule),
		zap.Duration("max_idle", j.maxIdle),
	)
	return nil
}

// Stop stops the schedule and waits for a running purge to finish
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// Run purges once and returns how many rooms were dropped
func (j *Janitor) Run(ctx context.Context) int {
	before := j.now().Add(-j.maxIdle)
	n, err := j.purger.PurgeIdle(ctx, before)
	if err != nil {
		j.logger.Error("Failed to purge idle rooms", zap.Error(err))
		return 0
	}
	if n > 0 {
		j.logger.Info("Purged idle rooms", zap.Int("count", n), zap.Time("idle_before", before))
	}
	return n
}
