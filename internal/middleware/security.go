// internal/middleware/security.go
//
// Response-header middleware for a JSON API.
//
// Injects on every response:
//
//   • X-Content-Type-Options  –  MIME-sniffing defence
//   • X-Frame-Options         –  API bodies are never framed
//   • Cache-Control           –  no-store, responses carry cluster state
//   • Referrer-Policy         –  no Referer leaks to upstream links
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP, since proxied responses flush
//   headers on first write.  A value the handler (or upstream) sets later
//   wins.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

var apiHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Cache-Control", "no-store"},
	{"Referrer-Policy", "no-referrer"},
}

// Headers sets the default API response headers.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range apiHeaders {
			if h.Get(kv[0]) == "" {
				h.Set(kv[0], kv[1])
			}
		}
		next.ServeHTTP(w, r)
	})
}
