package api

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AdeptTravel/apiguard/internal/metrics"
	"github.com/AdeptTravel/apiguard/internal/middleware"
)

type targetKey struct{}

// target is the upstream base plus the validated path and query for one
// request.
type target struct {
	base  *url.URL
	path  string
	query url.Values
}

// proxy forwards validated requests to the upstream base URL in force.
type proxy struct {
	rp *httputil.ReverseProxy
}

func newProxy(transport http.RoundTripper, log *zap.SugaredLogger) *proxy {
	rp := &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			t, _ := pr.In.Context().Value(targetKey{}).(target)
			pr.Out.URL.Path = t.path
			pr.Out.URL.RawPath = ""
			pr.SetURL(t.base) // joins base.Path + t.path
			pr.Out.URL.RawQuery = t.query.Encode()
			pr.SetXForwarded()
		},
		ModifyResponse: func(resp *http.Response) error {
			metrics.ProxiedTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warnw("upstream request failed", "path", r.URL.Path, "err", err)
			metrics.ProxiedTotal.WithLabelValues("error").Inc()
			middleware.WriteJSON(w, http.StatusBadGateway,
				map[string]string{"message": "upstream unavailable"})
		},
	}
	return &proxy{rp: rp}
}

// forward sends r to <base><path>?<query>.
func (p *proxy) forward(w http.ResponseWriter, r *http.Request, base *url.URL, path string, query url.Values) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	ctx := context.WithValue(r.Context(), targetKey{}, target{base: base, path: path, query: query})
	p.rp.ServeHTTP(w, r.WithContext(ctx))
}
