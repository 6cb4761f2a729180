// internal/config/validator.go
//
// Config validation shares the request-schema validator, so the custom
// `region` and `loglevel` tags are available on the model.

package config

import "github.com/AdeptTravel/apiguard/internal/validation"

var v = validation.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
