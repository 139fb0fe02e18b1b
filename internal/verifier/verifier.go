// Package verifier turns an uploaded table into classified output artifacts.
// It validates the request, runs the classification pipeline over the table
// and stores one artifact per non-empty disposition.
package verifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"verifier/internal/config"
	"verifier/pkg/domain"
	"verifier/pkg/logger"
	"verifier/pkg/serrors"
	"verifier/pkg/storage"
	"verifier/pkg/tabular"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configure how batches are run.
type Options struct {
	// BatchTimeout bounds a whole batch, storing artifacts included. Zero
	// leaves the caller's context in charge.
	BatchTimeout time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		BatchTimeout: cfg.Verifier.BatchTimeout,
	}
}

// verifier is the concrete implementation of the Verifier interface.
type verifier struct {
	options Options
	// runner classifies the records of an upload.
	runner BatchRunner
	// storage keeps the exported buckets until they are downloaded.
	storage storage.ArtifactStorage
}

// Verify classifies every record of req.Source and stores the non-empty
// buckets as CSV artifacts. A missing source or column is rejected before any
// row is read. When storing an artifact fails, the artifacts already stored
// for the batch are deleted again.
func (v verifier) Verify(ctx context.Context, req Request) (*domain.Summary, error) {
	if req.Source == nil {
		return nil, serrors.With(serrors.ErrBadRequest, "No file uploaded")
	}
	if req.Column == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "email column is required")
	}

	if v.options.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.options.BatchTimeout)
		defer cancel()
	}

	id := domain.BatchID(uuid.New())
	ctx = logger.WithFields(ctx, zap.String("batchId", id.String()))

	result, err := v.runner.Run(ctx, tabular.NewReader(req.Source), req.Column)
	if err != nil {
		return nil, fmt.Errorf("could not verify batch: %w", err)
	}

	summary := &domain.Summary{
		BatchID:       id,
		ValidCount:    result.Valid.Len(),
		InvalidCount:  result.Invalid.Len(),
		CatchAllCount: result.CatchAll.Len(),
		Outputs:       make(map[domain.Disposition]string, len(domain.Dispositions)),
	}

	base := storage.BaseName(req.FileName)
	for _, d := range domain.Dispositions {
		data, ok := tabular.Serialize(result.Bucket(d))
		if !ok {
			continue
		}

		key := storage.ArtifactKey(id, base, d)
		if err = v.storage.Put(ctx, key, data); err != nil {
			v.discard(ctx, summary.Outputs)
			if ctx.Err() != nil {
				return nil, serrors.Wrap(serrors.ErrTimeout, err, "batch timed out while storing artifacts")
			}

			return nil, fmt.Errorf("could not store %s artifact: %w", d, err)
		}
		summary.Outputs[d] = key
	}

	logger.Info(ctx, "batch verified",
		zap.Int("valid", summary.ValidCount),
		zap.Int("invalid", summary.InvalidCount),
		zap.Int("catchall", summary.CatchAllCount))

	return summary, nil
}

// discard deletes the artifacts of a batch that failed. It runs detached from
// ctx, which may already be expired.
func (v verifier) discard(ctx context.Context, outputs map[domain.Disposition]string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range outputs {
		if err := v.storage.Delete(ctx, key); err != nil {
			logger.Warn(ctx, "could not delete artifact of failed batch", zap.String("key", key), zap.Error(err))
		}
	}
}

// Artifact opens a stored artifact for download.
func (v verifier) Artifact(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := v.storage.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not open artifact: %w", err)
	}

	return rc, nil
}

// New creates a new Verifier running batches with runner and keeping
// artifacts in storage.
func New(runner BatchRunner, storage storage.ArtifactStorage, options Options) Verifier {
	return &verifier{
		options: options,
		runner:  runner,
		storage: storage,
	}
}
