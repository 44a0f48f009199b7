// Package database centralises sqlx connection helpers.  Two drivers are
// registered: go-sql-driver/mysql for production (MariaDB works too) and
// the pure-Go modernc.org/sqlite for single-node and development runs.
//
// Public entry points:
//
//	Open(ctx, driver, dsn)                 – conservative pool sizes.
//	OpenWithOptions(ctx, driver, dsn, o)   – fine-grained control.
//	Migrate(ctx, db, stmts)                – idempotent schema bootstrap.
//
// Both openers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options tunes the pool and the initial connect retry.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, a
// 30-minute connection lifetime, and two connect retries.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, driver, dsn, Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         2,
		RetryBackoff:    500 * time.Millisecond,
	})
}

// OpenWithOptions lets callers tune the pool.  SQLite is pinned to one open
// connection that is never recycled: the file lock serialises writers
// anyway, and a :memory: database lives only as long as its connection.
func OpenWithOptions(ctx context.Context, driver, dsn string, o Options) (*sqlx.DB, error) {
	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		o.MaxOpenConns, o.MaxIdleConns = 1, 1
		o.ConnMaxLifetime = 0
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)

	for attempt := 0; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= o.Retries {
			break
		}
		zap.S().Warnw("database ping failed, retrying",
			"driver", driver, "attempt", attempt+1, "err", err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(o.RetryBackoff):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping %s: %w", driver, err)
}

// normalizeDSN forces parseTime and UTC on MySQL DSNs so DATETIME columns
// scan into time.Time.  Other drivers pass through.
func normalizeDSN(driver, dsn string) (string, error) {
	if driver != DriverMySQL {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// Migrate executes schema statements in order.  Statements must be
// idempotent (CREATE … IF NOT EXISTS).
func Migrate(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
