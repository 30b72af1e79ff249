package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/worker"
)

// LogMsgScheduledJobFailed is logged when a scheduled run returns an error
const LogMsgScheduledJobFailed = "Scheduled job failed"

// Scheduler runs jobs on recurring timers. Jobs run on the timer goroutine,
// so they should hand long work to a worker pool.
type Scheduler struct {
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a new scheduler
func New() *Scheduler {
	return &Scheduler{
		quit: make(chan struct{}),
	}
}

// Schedule runs job after initialDelay and then every interval until Stop
// or until ctx is done. A run that overlaps the next tick delays it; ticks are not queued.
func (s *Scheduler) Schedule(ctx context.Context, initialDelay, interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(initialDelay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-s.quit:
			return
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := job.Process(ctx); err != nil {
				logger.FromContext(ctx).Error(LogMsgScheduledJobFailed, "error", err)
			}

			select {
			case <-ticker.C:
			case <-s.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops all scheduled jobs and waits for a running one to return
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
}
