package domain

import "github.com/google/uuid"

// BatchID uniquely identifies one verification batch.
type BatchID uuid.UUID

// String returns the canonical textual form of the id.
func (id BatchID) String() string { return uuid.UUID(id).String() }

// Summary is the outcome of one verification batch returned to the caller.
type Summary struct {
	// BatchID identifies the batch and prefixes every artifact key it produced.
	BatchID BatchID
	// ValidCount is the number of records classified as valid.
	ValidCount int
	// InvalidCount is the number of records classified as invalid.
	InvalidCount int
	// CatchAllCount is the number of records classified as catch-all.
	CatchAllCount int
	// Outputs maps each non-empty disposition to the storage key of its export.
	// Dispositions without records have no entry.
	Outputs map[Disposition]string
}
