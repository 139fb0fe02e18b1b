package tabular

import (
	"bytes"
	"io"
	"strings"

	"verifier/pkg/domain"
)

// Serialize renders a bucket as comma separated text. The header is the field
// names of the first record; every record then writes its own field values in
// their own order, one line each, newline terminated. A record with surplus
// "_<index>" fields therefore writes more values than the header names.
// Values are written verbatim: separators or newlines inside a value are not
// quoted.
//
// An empty bucket produces no output and false, so callers never emit an
// empty file.
func Serialize(b *domain.Bucket) ([]byte, bool) {
	records := b.Records()
	if len(records) == 0 {
		return nil, false
	}

	var buf bytes.Buffer
	_ = Write(&buf, records)

	return buf.Bytes(), true
}

// Write streams records to w in the format described on Serialize. Nothing is
// written for an empty slice.
func Write(w io.Writer, records []domain.AnnotatedRecord) error {
	if len(records) == 0 {
		return nil
	}

	header := records[0].Fields().Names()
	if _, err := io.WriteString(w, strings.Join(header, ",")+"\n"); err != nil {
		return err //nolint: wrapcheck
	}

	for _, r := range records {
		if _, err := io.WriteString(w, strings.Join(r.Fields().Values(), ",")+"\n"); err != nil {
			return err //nolint: wrapcheck
		}
	}

	return nil
}
