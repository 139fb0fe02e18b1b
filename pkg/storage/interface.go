// Package storage defines where batch output artifacts live between the
// upload that produced them and the download that fetches them. Backends
// (a local directory, an S3 bucket) provide concrete implementations.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go
package storage

import (
	"context"
	"io"
)

// ArtifactStorage stores immutable artifacts addressed by a slash-separated
// key such as "<batch id>/<base>-valid.csv".
type ArtifactStorage interface {
	// Put stores data under key, replacing any previous artifact.
	Put(ctx context.Context, key string, data []byte) error
	// Open returns a reader for the artifact under key. A missing artifact is
	// reported as serrors.ErrNotFound. The caller must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the artifact under key. Deleting a missing artifact is
	// not an error.
	Delete(ctx context.Context, key string) error
}
