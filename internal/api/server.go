// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the verification service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"verifier/internal/api/handler/v1handler"
	"verifier/internal/config"
	"verifier/pkg/controller"
	"verifier/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Handler configures upload and download handling.
	Handler v1handler.Options

	// Addr is the TCP address the server listens on, e.g. ":5001".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout bounds the context of an upload request. Downloads stream
	// and are bounded by WriteTimeout only.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// AllowedOrigins lists the CORS origins; empty or "*" allows any.
	AllowedOrigins []string
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Handler: v1handler.NewOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
	}
}

type Deps struct {
	v1handler.Deps

	// Registerer receives the HTTP metrics; Gatherer is served on MetricsPath.
	// Both default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - upload and download routes
// - pprof endpoints for profiling
// It also wraps the mux with CORS and logging middlewares; uploads run under RequestTimeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	// prometheus metrics server
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	httpMetrics, err := controller.NewHTTPMetrics(deps.Registerer)
	if err != nil {
		return nil, fmt.Errorf("could not register http metrics: %w", err)
	}

	// v1 specs file
	mux.HandleFunc("GET /specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Contact List Verifier",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	// v1 api
	h := v1handler.New(deps.Deps, opts.Handler)
	mux.Handle("POST /upload", httpMetrics.Wrap("/upload", controller.WithTimeout(http.HandlerFunc(h.Upload), opts.RequestTimeout)))
	mux.Handle("GET /download/{batch}/{name}", httpMetrics.Wrap("/download", http.HandlerFunc(h.Download)))

	// pprof
	mux.Handle(controller.PprofPrefix, controller.PprofMux())

	// cors
	handler := controller.WithCORS(mux, opts.AllowedOrigins...)

	// logger
	handler = controller.WithLogger(handler)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          logger.StdLogger(context.Background(), slog.LevelError),
	}, nil
}
