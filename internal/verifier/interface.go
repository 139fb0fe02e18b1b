package verifier

import (
	"context"
	"io"

	"verifier/internal/pipeline"
	"verifier/pkg/domain"
)

// Request is one uploaded table to verify.
type Request struct {
	// Source is the raw comma separated table, header row first.
	Source io.Reader
	// Column names the header of the column holding email addresses.
	Column string
	// FileName is the name the table was uploaded under; artifact names are
	// derived from it.
	FileName string
}

//go:generate mockgen -package mockverifier -source=interface.go -destination=mock/mockverifier.go
type Verifier interface {
	Verify(ctx context.Context, req Request) (*domain.Summary, error)
	Artifact(ctx context.Context, key string) (io.ReadCloser, error)
}

// BatchRunner classifies every record of a source. It is implemented by
// *pipeline.Pipeline.
type BatchRunner interface {
	Run(ctx context.Context, source pipeline.RecordSource, column string) (*domain.BatchResult, error)
}
