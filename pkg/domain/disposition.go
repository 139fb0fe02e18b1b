package domain

// Disposition is the classification outcome assigned to one email address.
type Disposition string

const (
	// DispositionValid marks an address whose domain accepts mail and passes the suffix policy.
	DispositionValid Disposition = "valid"
	// DispositionInvalid marks an address that is malformed, missing, unreachable or rejected by policy.
	DispositionInvalid Disposition = "invalid"
	// DispositionCatchAll marks an address on a domain assumed to accept any local part.
	DispositionCatchAll Disposition = "catchall"
)

// Dispositions lists every disposition in output order.
var Dispositions = []Disposition{DispositionValid, DispositionInvalid, DispositionCatchAll} //nolint: gochecknoglobals

// StatusField is the column appended to every annotated record.
const StatusField = "status"

// AnnotatedRecord is a source record together with the disposition it was
// classified as.
type AnnotatedRecord struct {
	Record      Record
	Disposition Disposition
}

// Fields returns the record as it is exported: the original fields with the
// status column set to the disposition. A pre-existing status column is
// overwritten in place, otherwise status is appended last.
func (a AnnotatedRecord) Fields() Record {
	return a.Record.With(StatusField, string(a.Disposition))
}
