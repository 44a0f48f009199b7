// internal/content/section.go
//
// Page content sections.
//
// Context
// -------
// A public page is an ordered list of typed sections (hero, perk grid,
// FAQ, footer links, ...).  Each section carries an opaque JSON document
// the front end renders by type.  Admins replace a page's sections as a
// whole; there is no per-section edit.
//
// Schema reference
//
//	CREATE TABLE page_section (
//	    id        CHAR(36)     PRIMARY KEY,
//	    page      VARCHAR(100) NOT NULL,
//	    type      VARCHAR(50)  NOT NULL,
//	    position  INT          NOT NULL,
//	    data      TEXT         NOT NULL
//	);
package content

import (
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/yanizio/perks/internal/form"
)

// Section is one stored block of page content.
type Section struct {
	ID       string          `json:"id"`
	Page     string          `json:"page"`
	Type     string          `json:"type"`
	Position int             `json:"position"`
	Data     json.RawMessage `json:"data"`
}

// sectionRow mirrors page_section for sqlx scans.  Data is a plain byte
// slice so TEXT columns scan from both drivers.
type sectionRow struct {
	ID       string `db:"id"`
	Page     string `db:"page"`
	Type     string `db:"type"`
	Position int    `db:"position"`
	Data     []byte `db:"data"`
}

func (r sectionRow) section() Section {
	return Section{ID: r.ID, Page: r.Page, Type: r.Type, Position: r.Position, Data: json.RawMessage(r.Data)}
}

// Input is one section in a replace request.  Position is implied by
// order.
type Input struct {
	Type string          `json:"type" validate:"required,max=50"`
	Data json.RawMessage `json:"data"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,99}$`)

// ValidSlug reports whether slug names a page.
func ValidSlug(slug string) bool { return slugPattern.MatchString(slug) }

var v = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every input and returns all violations.  Field names
// are indexed, e.g. "sections[2].type".
func Validate(in []Input) []form.FieldError {
	var errs []form.FieldError
	for i, s := range in {
		if err := v.Struct(s); err != nil {
			errs = append(errs, form.FieldError{
				Field:   fmt.Sprintf("sections[%d].type", i),
				Message: "Type is required and at most 50 characters.",
			})
		}
		if len(s.Data) == 0 || !json.Valid(s.Data) {
			errs = append(errs, form.FieldError{
				Field:   fmt.Sprintf("sections[%d].data", i),
				Message: "Data must be a JSON value.",
			})
		}
	}
	return errs
}
