// internal/guard/ratelimit.go
//
// Sliding-window submission cap keyed by (client address, endpoint).
//
// Context
// -------
// The limiter counts submission-log rows for the exact pair inside the
// trailing window and allows the request while the count is below the cap.
// Counting is done by the store, so every replica sees the same window.
//
// A store that errors or outlives StoreTimeout must not take the forms
// down: Allow then answers true, logs a warning, and bumps
// ratelimit_fail_open_total.
//
// Notes
// -----
// • Check-then-record is not atomic; two concurrent posts at count
//   cap-1 may both pass.  The cap is advisory at that granularity.
package guard

import (
	"context"
	"time"

	"github.com/yanizio/perks/internal/config"
	"github.com/yanizio/perks/internal/logger"
	"github.com/yanizio/perks/internal/metrics"
	"github.com/yanizio/perks/internal/submission"
)

// LogStore is the slice of *submission.Log the limiter needs.
type LogStore interface {
	CountSince(ctx context.Context, address, endpoint string, since time.Time) (int, error)
	Append(ctx context.Context, e submission.LogEntry) error
}

// Limiter enforces the per-address, per-endpoint cap.
type Limiter struct {
	log     LogStore
	window  time.Duration
	cap     int
	timeout time.Duration
	now     func() time.Time
}

// NewLimiter builds a Limiter from configuration.
func NewLimiter(log LogStore, cfg config.RateLimit) *Limiter {
	return &Limiter{
		log:     log,
		window:  cfg.Window,
		cap:     cfg.Cap,
		timeout: cfg.StoreTimeout,
		now:     time.Now,
	}
}

// Allow reports whether another submission from address to endpoint fits
// inside the window.
func (l *Limiter) Allow(ctx context.Context, address, endpoint string) bool {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	since := l.now().Add(-l.window)
	n, err := l.log.CountSince(ctx, address, endpoint, since)
	if err != nil {
		metrics.RateLimitFailOpenTotal.Inc()
		logger.FromContext(ctx).Warnw("rate check failed, allowing",
			"client_address", address, "endpoint", endpoint, "err", err)
		return true
	}
	return n < l.cap
}

// Record appends the log entry Allow counts.  Failures are logged only;
// the submission has already been stored.
func (l *Limiter) Record(ctx context.Context, address, endpoint string) {
	e := submission.LogEntry{Address: address, Endpoint: endpoint, CreatedAt: l.now()}
	if err := l.log.Append(ctx, e); err != nil {
		logger.FromContext(ctx).Warnw("submission log append failed",
			"client_address", address, "endpoint", endpoint, "err", err)
	}
}
