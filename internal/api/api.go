// internal/api/api.go
//
// HTTP surface of apiguard.
//
/*
Context
--------
The router exposes a handful of endpoints that all follow the same shape:
declare a schema, let schema.Query or schema.Decode validate it, then act.

  GET  /healthz            liveness check
  GET  /regions            known region identifiers
  GET  /loglevels          accepted log level names
  ANY  /api?path=&region=  forward to <upstream><path>
  GET  /clusters/{name}    forward to <upstream>/v3/clusters/<name>
  POST /logs               ingest client log entries

Middleware order: request ID, panic recovery, logging, the optional HTTPS
redirect, headers, and the traversal guard.  The guard runs on the URL path; the `path` query
argument of /api is checked by the ProxyArgs schema.

Notes
-----
  • Error bodies are `{"message": …, "errors": […]}`.
*/
package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AdeptTravel/apiguard/internal/logger"
	"github.com/AdeptTravel/apiguard/internal/metrics"
	"github.com/AdeptTravel/apiguard/internal/middleware"
	"github.com/AdeptTravel/apiguard/internal/schema"
	"github.com/AdeptTravel/apiguard/internal/validation"
)

// Options configures a Handler.
type Options struct {
	Upstream        *url.URL
	DefaultRegion   string
	MaxBodyBytes    int   // size-guard limit on /logs
	MaxRequestBytes int64 // raw body cap
	ForceHTTPS      bool  // 308 plain-HTTP callers to https
	Transport       http.RoundTripper
}

// Handler owns the router dependencies.  Options sit behind an atomic
// pointer so a config reload applies to the next request.
type Handler struct {
	opts  atomic.Pointer[Options]
	log   *zap.SugaredLogger
	proxy *proxy
}

// New builds a Handler.  A nil Transport uses http.DefaultTransport.
func New(opts Options, log *zap.SugaredLogger) *Handler {
	h := &Handler{
		log:   log,
		proxy: newProxy(opts.Transport, log),
	}
	h.opts.Store(&opts)
	return h
}

// Update swaps the upstream, default region, body limits, and HTTPS
// redirect.  The
// Transport chosen at New stays in place.
func (h *Handler) Update(opts Options) {
	h.opts.Store(&opts)
	h.log.Infow("api options updated",
		"upstream", opts.Upstream.String(),
		"default_region", opts.DefaultRegion,
		"max_body_bytes", opts.MaxBodyBytes,
		"force_https", opts.ForceHTTPS,
	)
}

func (h *Handler) current() *Options { return h.opts.Load() }

// Routes returns the full router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(h.log))
	r.Use(h.forceHTTPS)
	r.Use(middleware.Headers)
	r.Use(middleware.SafePath)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/regions", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string][]string{"regions": validation.Regions()})
	})
	r.Get("/loglevels", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string][]string{"levels": validation.LogLevels()})
	})

	r.HandleFunc("/api", h.forwardAPI)
	r.Get("/clusters/{name}", h.forwardCluster)
	r.With(h.bodyLimit).Post("/logs", h.pushLogs)

	return r
}

/*──────────────────────────── handlers ─────────────────────────────────────*/

func (h *Handler) forwardAPI(w http.ResponseWriter, r *http.Request) {
	var args schema.ProxyArgs
	if err := schema.Query(r.URL.Query(), &args); err != nil {
		h.writeError(w, err)
		return
	}
	q := r.URL.Query()
	q.Del("path")
	h.setRegion(q, args.Region)
	h.proxy.forward(w, r, h.current().Upstream, args.Path, q)
}

func (h *Handler) forwardCluster(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("name", chi.URLParam(r, "name"))

	var args schema.ClusterArgs
	if err := schema.Query(q, &args); err != nil {
		h.writeError(w, err)
		return
	}
	q.Del("name")
	h.setRegion(q, args.Region)
	h.proxy.forward(w, r, h.current().Upstream, "/v3/clusters/"+args.Name, q)
}

func (h *Handler) pushLogs(w http.ResponseWriter, r *http.Request) {
	var req schema.PushLogRequest
	if err := schema.Decode(r.Body, &req, h.current().MaxBodyBytes); err != nil {
		h.writeError(w, err)
		return
	}
	for _, e := range req.Entries {
		kv := []any{"source", "client", "remote", r.RemoteAddr}
		if len(e.Extra) > 0 {
			kv = append(kv, "extra", e.Extra)
		}
		logger.LogAt(h.log, e.Level, e.Message, kv...)
		metrics.ClientLogEntriesTotal.WithLabelValues(strings.ToLower(e.Level)).Inc()
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"accepted": len(req.Entries)})
}

func (h *Handler) setRegion(q url.Values, region string) {
	if region == "" {
		region = h.current().DefaultRegion
	}
	if region != "" {
		q.Set("region", region)
	}
}

// bodyLimit applies the raw body cap in force when the request arrives.
func (h *Handler) bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.BodyLimit(h.current().MaxRequestBytes)(next).ServeHTTP(w, r)
	})
}

// forceHTTPS redirects plain-HTTP callers while the option is on.
func (h *Handler) forceHTTPS(next http.Handler) http.Handler {
	redirect := middleware.ForceHTTPS(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.current().ForceHTTPS {
			redirect.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*──────────────────────────── errors ───────────────────────────────────────*/

// writeError maps decode and validation failures to 400 or 413.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		se  *schema.Error
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &se):
		for _, f := range se.Fields {
			metrics.RejectedTotal.WithLabelValues(f.Rule).Inc()
		}
		h.log.Infow("request rejected", "fields", se.Fields)
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"message": "request validation failed",
			"errors":  se.Fields,
		})
	case errors.Is(err, validation.ErrPayloadTooLarge):
		middleware.Reject(w, http.StatusRequestEntityTooLarge, "size", err.Error())
	case errors.As(err, &mbe):
		middleware.Reject(w, http.StatusRequestEntityTooLarge, "size",
			(&validation.SizeError{Limit: int(mbe.Limit)}).Error())
	default:
		h.log.Debugw("malformed request", "err", err)
		middleware.Reject(w, http.StatusBadRequest, "decode", "malformed request body")
	}
}
