// internal/schema/schema.go
//
// Request schemas for the apiguard endpoints.
//
// Context
// -------
// Handlers never look at raw query strings or bodies.  They declare a
// struct, call Query or Decode, and either get a fully validated value or
// an error they can hand straight to api.writeError:
//
//   • *Error               – one or more field rules failed  (400)
//   • *validation.SizeError – body over the configured limit (413)
//   • anything else        – malformed JSON, unknown fields,
//                            or trailing data                 (400)
//
// Notes
// -----
//   • Query only understands string fields.  Every schema here is flat.

package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/AdeptTravel/apiguard/internal/validation"
)

/*──────────────────────────── schemas ──────────────────────────────────────*/

// ProxyArgs are the query arguments of the /api forwarding endpoint.
type ProxyArgs struct {
	Path   string `query:"path"   validate:"required,safepath"`
	Region string `query:"region" validate:"omitempty,region"`
}

// ClusterArgs address one cluster by name.
type ClusterArgs struct {
	Name   string `query:"name"   validate:"required,alnumhyphen"`
	Region string `query:"region" validate:"omitempty,region"`
}

// LogEntry is one client-side log line pushed to /logs.
type LogEntry struct {
	Level   string         `json:"level"   validate:"required,loglevel"`
	Message string         `json:"message" validate:"required"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// PushLogRequest is the /logs body.
type PushLogRequest struct {
	Entries []LogEntry `json:"logs" validate:"required,min=1,dive"`
}

/*──────────────────────────── errors ───────────────────────────────────────*/

// Error wraps field-level failures and satisfies the error interface.
type Error struct {
	Fields []validation.FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "request validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "request validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is a user-input problem rather than
// a system failure.
func IsValidationError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

/*──────────────────────────── decode ───────────────────────────────────────*/

var v = validation.New()

// ErrTrailingData is returned when a body holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON document")

// Decode reads exactly one JSON document from r into dst, enforces the
// size guard on the decoded value, and validates dst.  Fields dst does not
// declare are rejected, so everything the client sent is measured.
// Numbers inside free-form maps stay json.Number and re-encode as sent.
func Decode(r io.Reader, dst any, maxBytes int) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	switch _, err := dec.Token(); {
	case err == io.EOF:
	case err != nil:
		return fmt.Errorf("decode body: %w", err)
	default:
		return fmt.Errorf("decode body: %w", ErrTrailingData)
	}
	if err := validation.SizeNotExceeding(dst, maxBytes); err != nil {
		return err
	}
	return check(dst)
}

// Query fills the string fields of dst (a pointer to struct) from values
// using their `query` tags, then validates dst.
func Query(values url.Values, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("schema: Query needs a pointer to struct, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name := rt.Field(i).Tag.Get("query")
		if name == "" || rv.Field(i).Kind() != reflect.String {
			continue
		}
		if val := values.Get(name); val != "" {
			rv.Field(i).SetString(val)
		}
	}
	return check(dst)
}

// Validate runs struct validation on an already-populated value.
func Validate(dst any) error { return check(dst) }

func check(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	if fields := validation.Fields(err); fields != nil {
		return &Error{Fields: fields}
	}
	return err
}
