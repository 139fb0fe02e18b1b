package domain

// Field is a single named column value of a Record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one decoded row of the source table. Fields keep the column order
// of the source, which is also the order they are written back out in.
type Record []Field

// Get returns the value of the field with the given name. When a name occurs
// more than once the last field wins. The second return value reports whether
// such a field exists.
func (r Record) Get(name string) (string, bool) {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i].Name == name {
			return r[i].Value, true
		}
	}

	return "", false
}

// Values returns the field values of the record in order.
func (r Record) Values() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value
	}

	return out
}

// Names returns the column names of the record in order.
func (r Record) Names() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}

	return out
}

// With returns a copy of the record where the named field holds value.
// Existing fields with that name keep their positions and all take the new
// value; otherwise the field is appended last. The receiver is never modified.
func (r Record) With(name, value string) Record {
	out := make(Record, len(r), len(r)+1)
	copy(out, r)

	found := false
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			found = true
		}
	}
	if found {
		return out
	}

	return append(out, Field{Name: name, Value: value})
}
