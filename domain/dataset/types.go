// Package dataset defines the tabular data model shared by the inference
// engine and the adapters that feed it: fields (column descriptors),
// records (rows keyed by field id), and per-field sample analyses.
package dataset

// Field describes one column of a tabular resource. The id is the column
// identity; the type is a hint supplied by the data source and is not
// trusted by the inference engine.
type Field struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Record is one row of raw data, keyed by field id. Values may be numbers,
// strings, nil, or absent entirely; consumers must tolerate missing keys.
type Record map[string]interface{}

// Value returns the raw value for a field id, with ok reporting whether
// the key was present at all.
func (r Record) Value(fieldID string) (interface{}, bool) {
	v, ok := r[fieldID]
	return v, ok
}

// Table is a fully-materialized snapshot of a tabular resource: the input
// contract of the chart-configuration engine. Fields and records are
// ordered; all records nominally share the field set.
type Table struct {
	ResourceID string   `json:"resource_id,omitempty"`
	Fields     []Field  `json:"fields"`
	Records    []Record `json:"records"`
}

// FieldIDs returns the ordered field identifiers.
func (t *Table) FieldIDs() []string {
	ids := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		ids[i] = f.ID
	}
	return ids
}

// IsEmpty reports whether the table has no usable shape.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Fields) == 0 || len(t.Records) == 0
}
