// internal/submission/janitor.go
//
// Retention for the submission log.
//
// The rate limiter only ever reads the trailing window, so rows older than
// the retention period are dead weight.  Janitor deletes them once at start
// and then every interval until its context is cancelled.  Purge failures
// are logged and retried on the next tick.
package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/perks/internal/metrics"
)

// Purger is the slice of *Log the janitor needs.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically purges old submission-log rows.
type Janitor struct {
	log       Purger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewJanitor builds a janitor keeping retention worth of rows.
func NewJanitor(log Purger, retention, interval time.Duration) *Janitor {
	return &Janitor{log: log, retention: retention, interval: interval, now: time.Now}
}

// Run blocks until ctx is done.  It always returns nil so an errgroup
// does not treat shutdown as failure.
func (j *Janitor) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	j.PurgeOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			j.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce deletes rows older than now − retention.
func (j *Janitor) PurgeOnce(ctx context.Context) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.log.PurgeBefore(ctx, cutoff)
	if err != nil {
		zap.S().Warnw("submission log purge failed", "cutoff", cutoff, "err", err)
		return
	}
	if n > 0 {
		metrics.SubmissionLogPurgedTotal.Add(float64(n))
		zap.S().Infow("submission log purged", "rows", n, "cutoff", cutoff)
	}
}
