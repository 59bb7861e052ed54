package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

var buckets = metrics.ExponentialBuckets(1e-3, 5, 6) //nolint: mnd // arbitrary

// Metrics counts requests and records their duration in set, labelled by
// method, matched route pattern and status.
func Metrics(set *metrics.Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			labels := joinQuote("{method=", r.Method, ",path=", routePattern(r), ",status=", strconv.Itoa(status(ww)), "}")
			set.GetOrCreateCounter("http_requests_total" + labels).Inc()
			set.GetOrCreatePrometheusHistogramExt("http_request_duration_seconds"+labels, buckets).UpdateDuration(start)
		})
	}
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	pattern := rctx.RoutePattern()
	if pattern == "" || strings.HasSuffix(pattern, "/*") {
		return "unmatched"
	}
	return pattern
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }
