// Package httpx holds the JSON response helpers every handler uses.  Bodies
// are encoded with goccy/go-json; encode failures after the header is out
// can only be logged.
package httpx

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/yanizio/perks/internal/logger"
)

// ErrorBody is the shape of every non-2xx response.
type ErrorBody struct {
	Error      string `json:"error"`
	Details    any    `json:"details,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// MessageBody is a plain acknowledgement, optionally with data.
type MessageBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(ctx).Warnw("encode response", "status", status, "err", err)
	}
}

// Error writes {"error": msg}.
func Error(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	WriteJSON(ctx, w, status, ErrorBody{Error: msg})
}
