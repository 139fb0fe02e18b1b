// Package pipeline classifies a stream of contact records and partitions them
// into valid, invalid and catch-all buckets.
package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"verifier/internal/config"
	"verifier/pkg/domain"
	"verifier/pkg/logger"
	"verifier/pkg/serrors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the in-flight row limit used when none is configured.
const DefaultConcurrency = 64

// RecordSource is a forward-only sequence of records. Next returns io.EOF
// once the sequence is exhausted.
type RecordSource interface {
	Next(ctx context.Context) (domain.Record, error)
}

// Options configure a Pipeline.
type Options struct {
	// Concurrency is the maximum number of rows classified at the same time.
	// Values <= 0 fall back to DefaultConcurrency.
	Concurrency int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Concurrency: cfg.Verifier.Concurrency,
	}
}

// Pipeline fans rows out to the classifier and collects the results.
type Pipeline struct {
	classifier AddressClassifier
	options    Options

	tracer   trace.Tracer
	rows     metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a Pipeline classifying rows with classifier.
func New(classifier AddressClassifier, options Options) *Pipeline {
	if options.Concurrency <= 0 {
		options.Concurrency = DefaultConcurrency
	}

	meter := otel.Meter("verifier/pipeline")
	rows, _ := meter.Int64Counter("verifier.rows",
		metric.WithDescription("Rows classified, by disposition"))
	duration, _ := meter.Float64Histogram("verifier.batch.duration",
		metric.WithDescription("Wall time of a complete batch"),
		metric.WithUnit("s"))

	return &Pipeline{
		classifier: classifier,
		options:    options,
		tracer:     otel.Tracer("verifier/pipeline"),
		rows:       rows,
		duration:   duration,
	}
}

// Run consumes source until it is exhausted, classifying the address in
// column for every record with at most Options.Concurrency rows in flight.
// Reading blocks while the limit is reached, so the source is never buffered
// in full. Run returns once every scheduled row has completed.
//
// Row-level failures never abort the batch. A source error is returned as
// serrors.ErrMalformedSource and a cancelled ctx as serrors.ErrTimeout; in
// both cases no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, source RecordSource, column string) (*domain.BatchResult, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.String("column", column)))
	defer span.End()

	start := time.Now()
	result := domain.NewBatchResult()

	rowCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(p.options.Concurrency)

	fail := func(err error) (*domain.BatchResult, error) {
		cancel()
		_ = g.Wait()

		if ctxErr := ctx.Err(); ctxErr != nil {
			err = serrors.Wrap(serrors.ErrTimeout, ctxErr, "batch cancelled")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn(ctx, "batch aborted", zap.Error(err))

		return nil, err
	}

	read := 0
	for {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		rec, err := source.Next(rowCtx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(serrors.Wrap(serrors.ErrMalformedSource, err, "could not read row %d", read+1))
		}
		read++

		g.Go(func() error {
			annotated := p.ProcessRow(rowCtx, rec, column)
			result.Add(annotated)
			p.rows.Add(rowCtx, 1, metric.WithAttributes(attribute.String("disposition", string(annotated.Disposition))))

			return nil
		})
	}

	// join: the result is only final once every scheduled row has completed
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	elapsed := time.Since(start)
	p.duration.Record(ctx, elapsed.Seconds())
	span.SetAttributes(
		attribute.Int("rows", read),
		attribute.Int("valid", result.Valid.Len()),
		attribute.Int("invalid", result.Invalid.Len()),
		attribute.Int("catchall", result.CatchAll.Len()),
	)
	logger.Info(ctx, "batch classified",
		zap.Int("rows", read),
		zap.Int("valid", result.Valid.Len()),
		zap.Int("invalid", result.Invalid.Len()),
		zap.Int("catchall", result.CatchAll.Len()),
		zap.Duration("elapsed", elapsed))

	return result, nil
}
