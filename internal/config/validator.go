// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree.  Any tag mismatch aborts startup, so the binary never runs
// with partial or malformed configuration.  Besides the built-in rules we
// rely on `gtefield` to keep the submission-log retention at least as long
// as the rate-limit window.

package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
