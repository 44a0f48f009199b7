// internal/form/definition.go
//
// Forms subsystem: per-kind rule tables.
//
// Context
//   Every public form is declared as a Go struct whose `validate` tags are
//   the rule table for that form.  The JSON tag is the wire name and the
//   name reported in field errors.  At init we reflect over each struct once
//   and register a Definition holding the field order, the label used in
//   admin messages, and which fields are long-form (inline markup allowed).
//
// Rule tables
//   contact  name 2–100, email, subject 3–200, message 5–5000
//   partner  company 2–100, contact 2–100, email, website URL ≤500,
//            offer 5–5000
//   lead     email ≤254, optional name ≤100, optional source ≤100
//   any      recaptchaToken non-empty
//
//------------------------------------------------------------------------------

package form

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Kind names a public form.  It doubles as the endpoint identifier used by
// the rate limiter and as the stored form_kind column.
type Kind string

const (
	KindContact Kind = "contact"
	KindPartner Kind = "partner"
	KindLead    Kind = "lead"
)

// TokenField is the wire name of the attestation token on every form.
const TokenField = "recaptchaToken"

// Contact is the contact-page form.
type Contact struct {
	Name           string `json:"name"           validate:"required,min=2,max=100"`
	Email          string `json:"email"          validate:"required,email"`
	Subject        string `json:"subject"        validate:"required,min=3,max=200"`
	Message        string `json:"message"        validate:"required,min=5,max=5000" form:"rich"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

// Partner is the "become a partner" application.
type Partner struct {
	Company        string `json:"company"        validate:"required,min=2,max=100"`
	Contact        string `json:"contact"        validate:"required,min=2,max=100"`
	Email          string `json:"email"          validate:"required,email"`
	Website        string `json:"website"        validate:"required,url,max=500"`
	Offer          string `json:"offer"          validate:"required,min=5,max=5000" form:"rich"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

// Lead is the lead-capture (newsletter / gated content) form.
type Lead struct {
	Email          string `json:"email"          validate:"required,email,max=254"`
	Name           string `json:"name"           validate:"omitempty,max=100"`
	Source         string `json:"source"         validate:"omitempty,max=100"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
}

// Definition is the parsed view of one form struct.
type Definition struct {
	Kind   Kind
	Label  string   // "Contact", used in admin responses and email subjects
	Fields []string // stored fields in declaration order, token excluded

	rich  map[string]bool
	proto reflect.Type
}

// IsRich reports whether field keeps the inline markup allow-list.
func (d *Definition) IsRich(field string) bool { return d.rich[field] }

// newValue returns a pointer to a zero form struct.
func (d *Definition) newValue() reflect.Value { return reflect.New(d.proto) }

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]*Definition)
)

func init() {
	register(KindContact, "Contact", Contact{})
	register(KindPartner, "Partner", Partner{})
	register(KindLead, "Lead", Lead{})
}

func register(kind Kind, label string, proto any) {
	t := reflect.TypeOf(proto)
	d := &Definition{
		Kind:  kind,
		Label: label,
		rich:  make(map[string]bool),
		proto: t,
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := jsonName(f)
		if name == TokenField {
			continue
		}
		d.Fields = append(d.Fields, name)
		if f.Tag.Get("form") == "rich" {
			d.rich[name] = true
		}
	}

	registryMu.Lock()
	registry[kind] = d
	registryMu.Unlock()
}

// Lookup returns the Definition for kind.  The boolean is false when the
// kind is unknown.
func Lookup(kind Kind) (*Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[kind]
	return d, ok
}

// Kinds lists every registered kind, sorted.
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// jsonName returns the wire name of a struct field.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
