package service

import (
	"context"
	"time"

	"github.com/kbecker/mrs/internal/master/core"
	"github.com/kbecker/mrs/internal/shared/logging"
)

// HealthChecker ticks core.Scheduler.CheckHeartbeats on an interval,
// generalized from the teacher's WorkerHealthChecker: where the teacher
// drove two services (requeue tasks, then remove the worker) from one
// stale-worker scan, the scheduler already folds slave-loss handling and
// task requeue into a single CheckHeartbeats call, so this type is a plain
// ticker loop around it.
type HealthChecker struct {
	interval  time.Duration
	scheduler *core.Scheduler
	logger    logging.Logger
}

func NewHealthChecker(interval time.Duration, scheduler *core.Scheduler, logger logging.Logger) *HealthChecker {
	return &HealthChecker{interval: interval, scheduler: scheduler, logger: logger}
}

func (h *HealthChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.scheduler.CheckHeartbeats()
		}
	}
}
