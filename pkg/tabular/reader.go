// Package tabular converts between delimited text and domain records.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"verifier/pkg/domain"

	"github.com/go-faster/errors"
)

// Reader decodes a CSV stream into records one row at a time. The first row
// is the header. Quoted fields follow RFC 4180, but quotes are read leniently:
// a bare quote inside an unquoted field is kept as part of the value. Rows
// shorter than the header are padded with empty values; surplus values are
// kept under the synthetic column names "_<index>".
type Reader struct {
	csv     *csv.Reader
	headers []string
	line    int
	done    bool
}

// NewReader returns a Reader decoding comma separated values from r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

// Headers returns the column names, or nil before the first call to Next.
func (r *Reader) Headers() []string {
	return r.headers
}

// Next returns the next record. It returns io.EOF once the input is
// exhausted, including for an empty input without a header row.
func (r *Reader) Next(ctx context.Context) (domain.Record, error) {
	if r.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint: wrapcheck
	}

	if r.headers == nil {
		headers, err := r.read()
		if err != nil {
			return nil, err
		}
		r.headers = append([]string(nil), headers...)
	}

	row, err := r.read()
	if err != nil {
		return nil, err
	}

	size := len(r.headers)
	if len(row) > size {
		size = len(row)
	}
	rec := make(domain.Record, size)
	for i := range rec {
		name := "_" + strconv.Itoa(i)
		if i < len(r.headers) {
			name = r.headers[i]
		}
		var value string
		if i < len(row) {
			value = row[i]
		}
		rec[i] = domain.Field{Name: name, Value: value}
	}

	return rec, nil
}

func (r *Reader) read() ([]string, error) {
	row, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.done = true

		return nil, io.EOF
	}
	r.line++
	if err != nil {
		r.done = true

		return nil, errors.Wrapf(err, "decode line %d", r.line)
	}

	return row, nil
}
