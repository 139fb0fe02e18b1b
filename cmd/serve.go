package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"verifier/internal/api"
	"verifier/internal/api/handler/v1handler"
	"verifier/internal/config"
	"verifier/internal/pipeline"
	"verifier/internal/verifier"
	"verifier/pkg/logger"
	"verifier/pkg/metrics"
	"verifier/pkg/mx"
	"verifier/pkg/storage"
	"verifier/pkg/storage/local"
	"verifier/pkg/storage/s3store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newArtifactStorage creates the storage backend selected by the config.
func newArtifactStorage(ctx context.Context, cfg *config.Config) (storage.ArtifactStorage, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return local.New(local.Options{Dir: cfg.Storage.LocalDir}) //nolint: wrapcheck
	case "s3":
		opts := s3store.Options{
			Bucket:    cfg.Storage.S3.Bucket,
			Prefix:    cfg.Storage.S3.Prefix,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			PathStyle: cfg.Storage.S3.PathStyle,
		}
		client, err := s3store.NewClient(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("could not create s3 client: %w", err)
		}

		return s3store.New(client, opts) //nolint: wrapcheck
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newVerifier wires the MX checker, the classification pipeline and the
// artifact storage into a Verifier.
func newVerifier(cfg *config.Config, artifacts storage.ArtifactStorage) verifier.Verifier {
	checker := mx.New(nil, mx.Options{
		Timeout:       cfg.Verifier.LookupTimeout,
		CacheTTL:      cfg.Verifier.CacheTTL,
		CacheCapacity: cfg.Verifier.CacheCapacity,
	})
	p := pipeline.New(pipeline.NewClassifier(checker, nil), pipeline.NewOptions(cfg))

	return verifier.New(p, artifacts, verifier.NewOptions(cfg))
}

func setupServer(ctx context.Context, cfg *config.Config, v verifier.Verifier) func(ctx context.Context) {
	server, err := api.NewServer(api.Deps{
		Deps: v1handler.Deps{Verifier: v},
	}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.Setup(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not setup metrics", zap.Error(err))
			}

			artifacts, err := newArtifactStorage(ctx, cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create artifact storage", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, newVerifier(cfg, artifacts))

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			if err = mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shutdown meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
