// internal/validation/tags.go
//
// go-playground/validator integration.
//
// Context
// -------
// Request schemas and the config model declare rules as struct tags, e.g.
//
//	Region string `query:"region" validate:"omitempty,region"`
//
// New() returns a validator with the predicates from validators.go
// registered under these tags:
//
//	alnumhyphen  →  IsAlphanumericWithHyphen
//	region       →  IsRegion
//	loglevel     →  IsLogLevel
//	safepath     →  IsSafePath
//
// The size guard is not a tag.  It measures a whole payload, not a field,
// so schema.Decode calls SizeNotExceeding directly.
//
// Notes
// -----
//   • Field names in errors come from the json, koanf, or query tag, in
//     that order, so messages match what the caller actually sent.
//   • Tags fail on non-string fields rather than panic.

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tag names registered by New.
const (
	TagAlnumHyphen = "alnumhyphen"
	TagRegion      = "region"
	TagLogLevel    = "loglevel"
	TagSafePath    = "safepath"
)

var predicates = map[string]func(string) bool{
	TagAlnumHyphen: IsAlphanumericWithHyphen,
	TagRegion:      IsRegion,
	TagLogLevel:    IsLogLevel,
	TagSafePath:    IsSafePath,
}

// New returns a *validator.Validate with the apiguard tags registered.
// The returned value is safe for concurrent use.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	for tag, pred := range predicates {
		// Registration only fails on an empty tag or nil func.
		if err := v.RegisterValidation(tag, stringRule(pred)); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}
	return v
}

func stringRule(pred func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return pred(f.String())
	}
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "koanf", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

/*──────────────────────────── error flattening ─────────────────────────────*/

// FieldError is one failed rule, ready for a JSON response body.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Fields flattens validator.ValidationErrors into []FieldError.  Any other
// error yields nil.
func Fields(err error) []FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the leading struct name: "PushLogRequest.entries[0].level"
// becomes "entries[0].level".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case TagAlnumHyphen:
		return "must start with a letter and contain only letters, digits, and hyphens"
	case TagRegion:
		return "is not a supported region"
	case TagLogLevel:
		return "must be one of " + strings.Join(logLevels, ", ")
	case TagSafePath:
		return "must not contain path traversal sequences"
	case "url":
		return "must be a valid URL"
	case "hostname_port":
		return "must be host:port"
	case "min":
		return "must have length of at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
