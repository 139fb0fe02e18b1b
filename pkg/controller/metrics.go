package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"verifier/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request latency per route, method and status code.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request duration histogram with reg. When the
// histogram is already registered the existing collector is reused.
func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "verifier",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   metrics.DefaultBuckets,
	}, []string{"route", "method", "code"})

	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err //nolint: wrapcheck
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err //nolint: wrapcheck
		}
		duration = existing
	}

	return &HTTPMetrics{duration: duration}, nil
}

// Wrap returns a middleware observing requests handled by next under the
// given route label.
func (m *HTTPMetrics) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.duration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
