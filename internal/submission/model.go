// internal/submission/model.go
//
// Submission and submission-log row models.
//
// Schema reference
//
//	CREATE TABLE form_submission (
//	    id          CHAR(36)     PRIMARY KEY,
//	    form_kind   VARCHAR(32)  NOT NULL,
//	    data        TEXT         NOT NULL,   -- JSON object of sanitized fields
//	    created_at  DATETIME(6)  NOT NULL
//	);
//
//	CREATE TABLE submission_log (
//	    id              BIGINT       PRIMARY KEY AUTO_INCREMENT,
//	    client_address  VARCHAR(64)  NOT NULL,
//	    endpoint        VARCHAR(32)  NOT NULL,
//	    created_at      DATETIME(6)  NOT NULL
//	);
//
// Notes
// -----
// • A Submission is immutable after creation.  Admins may delete it.
// • Log entries are append-only and read only as a windowed count.  They
//   are not joined to submissions.
// • All timestamps are stored in UTC.
package submission

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/yanizio/perks/internal/form"
)

// Submission is one accepted form post.
type Submission struct {
	ID        string
	Kind      form.Kind
	Fields    map[string]string
	CreatedAt time.Time
}

// MarshalJSON flattens Fields next to id and created_at, the shape the
// admin UI and the create response expect.
func (s Submission) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	out["id"] = s.ID
	out["created_at"] = s.CreatedAt.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// row mirrors form_submission for sqlx scans.
type row struct {
	ID        string    `db:"id"`
	Kind      string    `db:"form_kind"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

func (r row) submission() (Submission, error) {
	fields := map[string]string{}
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return Submission{}, err
	}
	return Submission{
		ID:        r.ID,
		Kind:      form.Kind(r.Kind),
		Fields:    fields,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

// LogEntry is one accepted attempt on a rate-limited endpoint.
type LogEntry struct {
	Address   string    `db:"client_address"`
	Endpoint  string    `db:"endpoint"`
	CreatedAt time.Time `db:"created_at"`
}
