// internal/submission/log.go
//
// Submission log: the append-only audit trail the rate limiter counts.
package submission

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Log appends and counts submission-log entries.
type Log struct {
	db *sqlx.DB
}

// NewLog wraps db.
func NewLog(db *sqlx.DB) *Log { return &Log{db: db} }

// Append records one accepted attempt.
func (l *Log) Append(ctx context.Context, e LogEntry) error {
	const q = `INSERT INTO submission_log (client_address, endpoint, created_at)
	           VALUES (?, ?, ?)`
	_, err := l.db.ExecContext(ctx, q, e.Address, e.Endpoint, e.CreatedAt.UTC())
	return err
}

// CountSince counts entries for the exact (address, endpoint) pair with
// created_at ≥ since.
func (l *Log) CountSince(ctx context.Context, address, endpoint string, since time.Time) (int, error) {
	const q = `SELECT COUNT(*)
	             FROM submission_log
	            WHERE client_address = ?
	              AND endpoint       = ?
	              AND created_at    >= ?`
	var n int
	if err := l.db.GetContext(ctx, &n, q, address, endpoint, since.UTC()); err != nil {
		return 0, err
	}
	return n, nil
}

// PurgeBefore deletes entries older than cutoff and reports how many went.
func (l *Log) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM submission_log WHERE created_at < ?`
	res, err := l.db.ExecContext(ctx, q, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
