// internal/form/validate.go
//
// Forms subsystem: server-side validation.
//
// Context
//   The browser posts a JSON object.  ValidateForm checks it against the
//   rule table of its kind and returns either a Clean value that business
//   logic can trust or the complete list of field violations, never just
//   the first, so the client can highlight every field at once.
//
// Workflow
//   •  Raw values are copied into the kind's struct.  A present value that
//      is not a string is a type violation for that field.
//   •  go-playground/validator runs the struct's tag rules.
//   •  Violations are merged and reported in field declaration order.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError wraps []FieldError and satisfies the error interface so
// callers can tell user input errors from system failures.
type ValidationError struct{ Fields []FieldError }

func (ve ValidationError) Error() string { return "Validation failed" }

// Clean is a validated submission ready for the guard and sanitizer.
type Clean struct {
	Kind   Kind
	Token  string
	Fields map[string]string // keyed by wire name, token excluded
}

// -----------------------------------------------------------------------------
// Validator instance
// -----------------------------------------------------------------------------

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(jsonName)
	return val
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// ValidateForm validates raw for kind.  A non-empty error slice means the
// Clean value is nil and nothing downstream may run.
func ValidateForm(kind Kind, raw map[string]any) (*Clean, []FieldError) {
	def, ok := Lookup(kind)
	if !ok {
		return nil, []FieldError{{Field: "", Message: "Unknown form."}}
	}

	ptr := def.newValue()
	msgs := decodeStrings(ptr.Elem(), raw)

	if err := v.Struct(ptr.Interface()); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, []FieldError{{Field: "", Message: err.Error()}}
		}
		for _, fe := range verrs {
			if _, typed := msgs[fe.Field()]; typed {
				continue // type violation already reported
			}
			msgs[fe.Field()] = ruleMessage(fe)
		}
	}

	if len(msgs) > 0 {
		return nil, ordered(def.proto, msgs)
	}

	clean := &Clean{Kind: kind, Fields: make(map[string]string, len(def.Fields))}
	elem := ptr.Elem()
	for i := 0; i < elem.NumField(); i++ {
		name := jsonName(def.proto.Field(i))
		val := elem.Field(i).String()
		if name == TokenField {
			clean.Token = val
			continue
		}
		clean.Fields[name] = val
	}
	return clean, nil
}

// Validate is ValidateForm with the field list folded into a
// ValidationError.
func Validate(kind Kind, raw map[string]any) (*Clean, error) {
	clean, errs := ValidateForm(kind, raw)
	if len(errs) > 0 {
		return nil, ValidationError{Fields: errs}
	}
	return clean, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// decodeStrings copies string values from raw into the struct and returns
// type violations keyed by field.  Absent and null values are left zero so
// the `required` rule reports them.
func decodeStrings(elem reflect.Value, raw map[string]any) map[string]string {
	msgs := make(map[string]string)
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		val, present := raw[name]
		if !present || val == nil {
			continue
		}
		s, ok := val.(string)
		if !ok {
			msgs[name] = "Expected string."
			continue
		}
		elem.Field(i).SetString(s)
	}
	return msgs
}

// ordered returns msgs as a slice in struct declaration order.
func ordered(t reflect.Type, msgs map[string]string) []FieldError {
	out := make([]FieldError, 0, len(msgs))
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		if m, ok := msgs[name]; ok {
			out = append(out, FieldError{Field: name, Message: m})
		}
	}
	return out
}

// ruleMessage maps a validator tag to a user-facing message.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	default:
		return "Invalid input."
	}
}
