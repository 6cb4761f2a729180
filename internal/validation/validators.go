// internal/validation/validators.go
//
// Field-level predicates for API input.
//
// Context
// -------
// Every handler in apiguard eventually asks one of five questions about a
// caller-supplied value:
//
//   • Is this a name?       (letter first, then letters, digits, hyphens)
//   • Is this a region?     (one of the fixed region identifiers)
//   • Is this a log level?  (case-insensitive)
//   • Is this body too big? (dumps-style JSON byte length against a limit)
//   • Is this path safe?    (no "../" or "..\" anywhere)
//
// The first four are total predicates.  The size guard returns a
// *SizeError and nothing else.
//
// Notes
// -----
//   • IsSafePath is a literal substring check.  It does not decode or
//     normalise, so percent-encoded or exotic separators pass through.
//     Callers that need more must canonicalise first.
//   • Tables below are read-only after init; all functions are reentrant.
//   • Oxford commas, two spaces after periods.

package validation

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

/*──────────────────────────── lookup tables ────────────────────────────────*/

var regions = []string{
	"us-east-2", "us-east-1", "us-west-1", "us-west-2",
	"af-south-1", "ap-east-1", "ap-south-1", "ap-northeast-2",
	"ap-southeast-1", "ap-southeast-2", "ap-northeast-1",
	"ca-central-1", "cn-north-1", "cn-northwest-1",
	"eu-central-1", "eu-west-1", "eu-west-2",
	"eu-south-1", "eu-west-3", "eu-north-1", "me-south-1",
	"sa-east-1", "us-gov-east-1", "us-gov-west-1",
}

var logLevels = []string{"debug", "info", "warning", "error", "critical"}

var (
	regionSet   = toSet(regions)
	logLevelSet = toSet(logLevels)
)

var (
	nameRE      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]+$`)
	traversalRE = regexp.MustCompile(`\.\.[\\/]`)
)

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, s := range list {
		m[s] = struct{}{}
	}
	return m
}

/*──────────────────────────── predicates ───────────────────────────────────*/

// IsAlphanumericWithHyphen reports whether s is an ASCII letter followed by
// at least one ASCII letter, digit, or hyphen.
func IsAlphanumericWithHyphen(s string) bool {
	return nameRE.MatchString(s)
}

// IsRegion reports whether s is exactly one of the known region identifiers.
func IsRegion(s string) bool {
	_, ok := regionSet[s]
	return ok
}

// Regions returns the known region identifiers in display order.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// IsLogLevel lower-cases s and reports whether it names a valid log level.
func IsLogLevel(s string) bool {
	_, ok := logLevelSet[strings.ToLower(s)]
	return ok
}

// LogLevels returns the valid log level names, least severe first.
func LogLevels() []string {
	out := make([]string, len(logLevels))
	copy(out, logLevels)
	return out
}

// IsSafePath reports whether p is free of "../" and "..\" sequences.
//
//	"/v3/clusters"          → true
//	"v3/clusters"           → true
//	"../stage/v3/clusters"  → false
func IsSafePath(p string) bool {
	return !traversalRE.MatchString(p)
}

/*──────────────────────────── size guard ───────────────────────────────────*/

// SizeNotExceeding serialises v with Dumps and returns a *SizeError when
// the encoded length is greater than max bytes.  Values that cannot be
// encoded are not a size violation and yield nil.
func SizeNotExceeding(v any, max int) error {
	b, err := Dumps(v)
	if err != nil {
		return nil
	}
	if len(b) > max {
		return &SizeError{Limit: max, Size: len(b)}
	}
	return nil
}

// Dumps renders v as JSON text in the conventional "dumps" layout:
//
//	{"a": 1, "b": [2, 3]}
//
// Items are separated by ", " and keys by ": ", every non-ASCII rune and
// DEL are written as \uXXXX escapes (surrogate pairs above U+FFFF), and
// HTML characters stay literal.  The result is pure ASCII, so its length
// is also its UTF-8 byte count.  Floats use Go's shortest formatting;
// decode with json.Number to keep client literals as sent.
func Dumps(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder always terminates with '\n'.
	return spaced(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// spaced rewrites compact encoder output into the dumps layout.
func spaced(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString := false
	for i := 0; i < len(compact); {
		c := compact[i]
		if !inString {
			switch c {
			case '"':
				inString = true
				out = append(out, c)
			case ',':
				out = append(out, ',', ' ')
			case ':':
				out = append(out, ':', ' ')
			default:
				out = append(out, c)
			}
			i++
			continue
		}

		switch {
		case c == '\\':
			// Escapes emitted by the encoder are ASCII; copy the pair.
			out = append(out, c, compact[i+1])
			i += 2
		case c == '"':
			inString = false
			out = append(out, c)
			i++
		case c == 0x7f:
			out = appendEscape(out, 0x7f)
			i++
		case c < utf8.RuneSelf:
			out = append(out, c)
			i++
		default:
			r, size := utf8.DecodeRune(compact[i:])
			if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
				out = appendEscape(appendEscape(out, r1), r2)
			} else {
				out = appendEscape(out, r)
			}
			i += size
		}
	}
	return out
}

func appendEscape(out []byte, r rune) []byte {
	const hex = "0123456789abcdef"
	return append(out, '\\', 'u',
		hex[r>>12&0xf], hex[r>>8&0xf], hex[r>>4&0xf], hex[r&0xf])
}
