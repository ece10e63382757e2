package dataset

// Field is a single named value within a record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from field name to raw value.
//
// Field order is preserved from the source so downstream grouping is
// deterministic; by-name lookup is linear, which is fine for the handful
// of fields a tabulation touches.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in the given order.
// A duplicate field name keeps the first occurrence for lookup; later
// duplicates remain visible via Fields().
func NewRecord(fields ...Field) Record {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, seen := idx[f.Name]; !seen {
			idx[f.Name] = i
		}
	}
	return Record{fields: fields, index: idx}
}

// Get returns the value for a field name.
// A field that does not exist reads as the missing marker.
func (r Record) Get(name string) Value {
	i, ok := r.index[name]
	if !ok {
		return Missing{}
	}
	return r.fields[i].Value
}

// Has reports whether the record carries the named field at all
// (a field explicitly set to Missing still counts as present).
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Fields returns the record's fields in source order.
// The returned slice must not be mutated.
func (r Record) Fields() []Field {
	return r.fields
}

// Dataset is a finite ordered sequence of records.
type Dataset struct {
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Column extracts the named field across all records, aligned 1:1 with
// record order. Absent fields read as the missing marker.
func (d *Dataset) Column(name string) []Value {
	out := make([]Value, len(d.Records))
	for i, rec := range d.Records {
		out[i] = rec.Get(name)
	}
	return out
}

// WithColumn returns a new Dataset with the named column replaced (or
// appended) record by record. values must align 1:1 with the records.
// The receiver is not mutated - each stage owns its own value.
func (d *Dataset) WithColumn(name string, values []Value) *Dataset {
	out := &Dataset{Records: make([]Record, len(d.Records))}
	for i, rec := range d.Records {
		fields := make([]Field, 0, len(rec.fields)+1)
		replaced := false
		for _, f := range rec.fields {
			if f.Name == name && !replaced {
				fields = append(fields, Field{Name: name, Value: values[i]})
				replaced = true
				continue
			}
			fields = append(fields, f)
		}
		if !replaced {
			fields = append(fields, Field{Name: name, Value: values[i]})
		}
		out.Records[i] = NewRecord(fields...)
	}
	return out
}
