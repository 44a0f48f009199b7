// internal/form/submit.go
//
// Forms subsystem: request body decoding.
//
// Context
//   Handlers want one call that reads the JSON body under a size cap and
//   returns the raw record, leaving validation to Validate.  The body
//   must be a single JSON object; anything else is a malformed request.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
)

// ErrBadBody is returned for unreadable, oversized, or non-object bodies.
var ErrBadBody = errors.New("Invalid request body")

// DecodeBody reads r's JSON object body, limited to maxBytes.
func DecodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, ErrBadBody
	}

	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil, ErrBadBody
	}
	return raw, nil
}

// AsValidationError unwraps the field list from a failed Validate.
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
