// internal/content/store.go
//
// SQL store for page sections.  Replace swaps a page's sections inside one
// transaction so readers never see a half-written page.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/perks/internal/database"
)

// Store reads and replaces page sections.
type Store struct {
	db *sqlx.DB
	id func() string
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db, id: uuid.NewString} }

// Sections returns the sections of page ordered by position.  An unknown
// page yields an empty slice.
func (s *Store) Sections(ctx context.Context, page string) ([]Section, error) {
	const q = `SELECT id, page, type, position, data
	             FROM page_section
	            WHERE page = ?
	         ORDER BY position`
	var rows []sectionRow
	if err := s.db.SelectContext(ctx, &rows, q, page); err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.section())
	}
	return out, nil
}

// Replace deletes every section of page and inserts in, in order.  Any
// failure rolls the whole change back.
func (s *Store) Replace(ctx context.Context, page string, in []Input) (out []Section, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM page_section WHERE page = ?`, page); err != nil {
		return nil, fmt.Errorf("clear page %s: %w", page, err)
	}

	const ins = `INSERT INTO page_section (id, page, type, position, data)
	             VALUES (?, ?, ?, ?, ?)`
	out = make([]Section, 0, len(in))
	for i, sec := range in {
		row := Section{ID: s.id(), Page: page, Type: sec.Type, Position: i, Data: sec.Data}
		if _, err = tx.ExecContext(ctx, ins, row.ID, row.Page, row.Type, row.Position, []byte(row.Data)); err != nil {
			return nil, fmt.Errorf("insert section %d: %w", i, err)
		}
		out = append(out, row)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// Schema returns idempotent DDL for driver.
func Schema(driver string) []string {
	if driver == database.DriverSQLite {
		return []string{
			`CREATE TABLE IF NOT EXISTS page_section (
			    id       TEXT    PRIMARY KEY,
			    page     TEXT    NOT NULL,
			    type     TEXT    NOT NULL,
			    position INTEGER NOT NULL,
			    data     TEXT    NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_page_section_page
			     ON page_section (page, position)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS page_section (
		    id       CHAR(36)     NOT NULL PRIMARY KEY,
		    page     VARCHAR(100) NOT NULL,
		    type     VARCHAR(50)  NOT NULL,
		    position INT          NOT NULL,
		    data     TEXT         NOT NULL,
		    INDEX idx_page_section_page (page, position)
		)`,
	}
}
