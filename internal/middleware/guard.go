// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AdeptTravel/apiguard/internal/metrics"
	"github.com/AdeptTravel/apiguard/internal/validation"
)

// SafePath answers 400 when the request path contains a traversal
// sequence.  Both the decoded path and the raw escaped form are checked.
func SafePath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validation.IsSafePath(r.URL.Path) || !validation.IsSafePath(r.URL.RawPath) {
			zap.S().Infow("unsafe path rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			Reject(w, http.StatusBadRequest, validation.TagSafePath,
				"request path must not contain path traversal sequences")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BodyLimit caps request bodies at max bytes.  Reads past the cap fail with
// *http.MaxBytesError, which handlers map to 413.
func BodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > max {
				Reject(w, http.StatusRequestEntityTooLarge, "size",
					(&validation.SizeError{Limit: int(max)}).Error())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}

// Reject writes a JSON error body and counts the rejection under rule.
func Reject(w http.ResponseWriter, status int, rule, msg string) {
	metrics.RejectedTotal.WithLabelValues(rule).Inc()
	WriteJSON(w, status, map[string]any{"message": msg})
}

// WriteJSON encodes body as the response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Warnw("response encode failed", "err", err)
	}
}
