package submission

import "github.com/yanizio/perks/internal/database"

// Schema returns idempotent DDL for driver.  MySQL declares indexes inline
// because it lacks CREATE INDEX IF NOT EXISTS.
func Schema(driver string) []string {
	if driver == database.DriverSQLite {
		return []string{
			`CREATE TABLE IF NOT EXISTS form_submission (
			    id         TEXT     PRIMARY KEY,
			    form_kind  TEXT     NOT NULL,
			    data       TEXT     NOT NULL,
			    created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_form_submission_kind_created
			     ON form_submission (form_kind, created_at)`,
			`CREATE TABLE IF NOT EXISTS submission_log (
			    id             INTEGER  PRIMARY KEY AUTOINCREMENT,
			    client_address TEXT     NOT NULL,
			    endpoint       TEXT     NOT NULL,
			    created_at     DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_submission_log_lookup
			     ON submission_log (client_address, endpoint, created_at)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS form_submission (
		    id         CHAR(36)    NOT NULL PRIMARY KEY,
		    form_kind  VARCHAR(32) NOT NULL,
		    data       TEXT        NOT NULL,
		    created_at DATETIME(6) NOT NULL,
		    INDEX idx_form_submission_kind_created (form_kind, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS submission_log (
		    id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		    client_address VARCHAR(64)     NOT NULL,
		    endpoint       VARCHAR(32)     NOT NULL,
		    created_at     DATETIME(6)     NOT NULL,
		    INDEX idx_submission_log_lookup (client_address, endpoint, created_at)
		)`,
	}
}
