package domain

import "sync"

// Bucket accumulates every annotated record of one batch that shares a
// disposition. It is safe for concurrent use; records are kept in the order
// Append was called.
type Bucket struct {
	disposition Disposition

	mu      sync.Mutex
	records []AnnotatedRecord
}

// NewBucket creates an empty bucket for the given disposition.
func NewBucket(d Disposition) *Bucket {
	return &Bucket{disposition: d}
}

// Disposition returns the disposition shared by all records in the bucket.
func (b *Bucket) Disposition() Disposition { return b.disposition }

// Append adds a record to the bucket.
func (b *Bucket) Append(r AnnotatedRecord) {
	b.mu.Lock()
	b.records = append(b.records, r)
	b.mu.Unlock()
}

// Len returns the number of records in the bucket.
func (b *Bucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.records)
}

// Records returns a snapshot of the records in the bucket.
func (b *Bucket) Records() []AnnotatedRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]AnnotatedRecord, len(b.records))
	copy(out, b.records)

	return out
}

// BatchResult holds the three buckets produced by one pipeline run.
type BatchResult struct {
	Valid    *Bucket
	Invalid  *Bucket
	CatchAll *Bucket
}

// NewBatchResult returns a result with three empty buckets.
func NewBatchResult() *BatchResult {
	return &BatchResult{
		Valid:    NewBucket(DispositionValid),
		Invalid:  NewBucket(DispositionInvalid),
		CatchAll: NewBucket(DispositionCatchAll),
	}
}

// Bucket returns the bucket for the given disposition. Unknown dispositions
// are routed to the invalid bucket.
func (r *BatchResult) Bucket(d Disposition) *Bucket {
	switch d {
	case DispositionValid:
		return r.Valid
	case DispositionCatchAll:
		return r.CatchAll
	default:
		return r.Invalid
	}
}

// Add routes an annotated record to the bucket matching its disposition.
func (r *BatchResult) Add(rec AnnotatedRecord) {
	r.Bucket(rec.Disposition).Append(rec)
}

// Total returns the number of records across all buckets.
func (r *BatchResult) Total() int {
	return r.Valid.Len() + r.Invalid.Len() + r.CatchAll.Len()
}
