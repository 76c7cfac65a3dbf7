package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingExpirer cancels PENDING bookings older than the given age.
type PendingExpirer interface {
	ExpireStalePending(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StartReaper schedules the stale-booking sweep and starts the cron runner.
// Callers stop it via the returned cron's Stop method during shutdown.
func StartReaper(schedule string, ttl time.Duration, expirer PendingExpirer) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := expirer.ExpireStalePending(ctx, ttl); err != nil {
			zap.L().Error("pending booking reaper run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule pending booking reaper failed: %w", err)
	}

	c.Start()
	zap.L().Info("pending booking reaper started",
		zap.String("schedule", schedule),
		zap.Duration("ttl", ttl))
	return c, nil
}
