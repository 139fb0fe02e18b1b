package pipeline

import (
	"context"
	"fmt"

	"verifier/pkg/domain"
	"verifier/pkg/logger"

	"go.uber.org/zap"
)

// ProcessRow classifies the address held in the given column of record. A
// missing or empty value is invalid without classification. ProcessRow never
// fails: a panic raised while classifying is recovered and the row is marked
// invalid.
func (p *Pipeline) ProcessRow(ctx context.Context, record domain.Record, column string) (out domain.AnnotatedRecord) {
	out = domain.AnnotatedRecord{Record: record, Disposition: domain.DispositionInvalid}

	address, ok := record.Get(column)
	if !ok || address == "" {
		return out
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn(ctx, "recovered from panic while classifying row",
				zap.String("address", address),
				zap.String("panic", fmt.Sprint(r)))
			out.Disposition = domain.DispositionInvalid
		}
	}()

	out.Disposition = p.classifier.Classify(ctx, address)

	return out
}
