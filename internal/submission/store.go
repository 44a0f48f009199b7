// internal/submission/store.go
//
// SQL store for accepted submissions.
//
// Context
// -------
// Every form kind shares one table; the sanitized field map is stored as
// a JSON object, the same layout the form `store` action used.  Listing is
// newest first.  Deletion is unconditional: any caller that reached the
// admin route may delete any row, and deleting a missing id is not an
// error.
//
// Notes
// -----
// • Placeholders are `?`, valid for both MySQL and SQLite.
// • Errors are returned verbatim; the handler decides how to surface them.
package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/perks/internal/form"
)

// ErrNotFound is returned by Get when no row matches.
var ErrNotFound = errors.New("submission not found")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// IsDuplicate reports whether err is a MySQL duplicate-key error.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// Store persists submissions.  Zero value is unusable; use NewStore.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
	id  func() string
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now, id: uuid.NewString}
}

// ListFilter narrows List.  Limit ≤ 0 means no limit.
type ListFilter struct {
	Kind  form.Kind
	Limit int
}

// Record inserts a submission of kind with the given sanitized fields and
// returns the stored row.
func (s *Store) Record(ctx context.Context, kind form.Kind, fields map[string]string) (*Submission, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	sub := &Submission{
		ID:        s.id(),
		Kind:      kind,
		Fields:    fields,
		CreatedAt: s.now().UTC(),
	}

	const q = `INSERT INTO form_submission (id, form_kind, data, created_at)
	           VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, sub.ID, string(kind), data, sub.CreatedAt); err != nil {
		return nil, err
	}
	return sub, nil
}

// List returns submissions matching f, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Submission, error) {
	q := `SELECT id, form_kind, data, created_at
	        FROM form_submission
	       WHERE form_kind = ?
	    ORDER BY created_at DESC`
	args := []any{string(f.Kind)}
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}

	out := make([]Submission, 0, len(rows))
	for _, r := range rows {
		sub, err := r.submission()
		if err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", r.ID, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

// Delete removes submission id of kind.
func (s *Store) Delete(ctx context.Context, kind form.Kind, id string) error {
	const q = `DELETE FROM form_submission WHERE id = ? AND form_kind = ?`
	_, err := s.db.ExecContext(ctx, q, id, string(kind))
	return err
}

// Get returns submission id of kind, or ErrNotFound.
func (s *Store) Get(ctx context.Context, kind form.Kind, id string) (*Submission, error) {
	const q = `SELECT id, form_kind, data, created_at
	             FROM form_submission
	            WHERE id = ? AND form_kind = ?`
	var r row
	if err := s.db.GetContext(ctx, &r, q, id, string(kind)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sub, err := r.submission()
	if err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", r.ID, err)
	}
	return &sub, nil
}
