// Package s3store stores artifacts in an S3 (or S3-compatible) bucket so that
// several server instances can serve each other's downloads.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"verifier/pkg/serrors"
	"verifier/pkg/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options configure the S3 backend.
type Options struct {
	// Bucket receives every artifact.
	Bucket string
	// Prefix is prepended to every key, e.g. "verifier/".
	Prefix string
	// Region overrides the region from the default AWS configuration chain.
	Region string
	// Endpoint points the client at an S3-compatible store such as MinIO.
	Endpoint string
	// PathStyle uses path-style instead of virtual-host addressing.
	PathStyle bool
}

// Client is the subset of *s3.Client used by Store.
type Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewClient builds an S3 client from the default AWS configuration chain
// (environment, shared config, instance role) adjusted by options.
func NewClient(ctx context.Context, options Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if options.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(options.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
		}
		o.UsePathStyle = options.PathStyle
	}), nil
}

// Store implements storage.ArtifactStorage on top of an S3 bucket.
type Store struct {
	client Client
	bucket string
	prefix string
	tracer trace.Tracer
}

var _ storage.ArtifactStorage = (*Store)(nil)

// New returns a Store writing to options.Bucket through client.
func New(client Client, options Options) (*Store, error) {
	if options.Bucket == "" {
		return nil, errors.New("s3 bucket is not set")
	}

	prefix := options.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Store{
		client: client,
		bucket: options.Bucket,
		prefix: prefix,
		tracer: otel.Tracer("verifier/storage/s3store"),
	}, nil
}

func (s *Store) objectKey(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}

	return s.prefix + key, nil
}

// Put uploads data as a text/csv object.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "s3store.Put", trace.WithAttributes(
		attribute.String("bucket", s.bucket),
		attribute.String("key", objectKey),
	))
	defer span.End()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		span.RecordError(err)

		return fmt.Errorf("could not upload artifact %s: %w", key, err)
	}

	return nil
}

// Open fetches the object stored under key. The returned reader streams the
// object body.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "s3store.Open", trace.WithAttributes(
		attribute.String("bucket", s.bucket),
		attribute.String("key", objectKey),
	))
	defer span.End()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, serrors.Wrap(serrors.ErrNotFound, err, "artifact %s not found", key)
		}
		span.RecordError(err)

		return nil, fmt.Errorf("could not download artifact %s: %w", key, err)
	}

	return out.Body, nil
}

// Delete removes the object stored under key. S3 reports success for a
// missing key as well.
func (s *Store) Delete(ctx context.Context, key string) error {
	objectKey, err := s.objectKey(key)
	if err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "s3store.Delete", trace.WithAttributes(
		attribute.String("bucket", s.bucket),
		attribute.String("key", objectKey),
	))
	defer span.End()

	if _, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		span.RecordError(err)

		return fmt.Errorf("could not delete artifact %s: %w", key, err)
	}

	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}

	return false
}
