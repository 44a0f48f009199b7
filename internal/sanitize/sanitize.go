// Package sanitize strips markup from user input before it is stored or
// emailed.
//
// Two policies exist.  Plain removes every tag.  Inline keeps b, i, em,
// strong, br, and p with every attribute removed; it is meant for long-form
// fields such as a contact message or a partner offer.  Both policies are
// bluemonday policies, built once and safe for concurrent use.
package sanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// InlineTags is the allow-list for long-form fields.
var InlineTags = []string{"b", "i", "em", "strong", "br", "p"}

var (
	plain  = bluemonday.StrictPolicy()
	inline = newInline()
)

func newInline() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(InlineTags...)
	return p
}

// Plain returns s with all markup removed.
func Plain(s string) string { return plain.Sanitize(s) }

// Inline returns s keeping only InlineTags, without attributes.
func Inline(s string) string { return inline.Sanitize(s) }

// Text renders already sanitized output as plain text for the text/plain
// part of an email: tags dropped, entities decoded.
func Text(s string) string { return html.UnescapeString(plain.Sanitize(s)) }

// Fields returns a sanitized copy of fields.  rich reports whether a field
// uses the inline policy.
func Fields(fields map[string]string, rich func(string) bool) map[string]string {
	out := make(map[string]string, len(fields))
	for k, val := range fields {
		if rich != nil && rich(k) {
			out[k] = Inline(val)
			continue
		}
		out[k] = Plain(val)
	}
	return out
}
