package grid

// RowType distinguishes the role a row plays in the table.
type RowType string

const (
	// RowData is an ordinary data record. Only data rows participate
	// in grouping and aggregation.
	RowData RowType = "data"
	// RowInfo is an informational row carried alongside the data. Info
	// rows never enter a group and never contribute to totals.
	RowInfo RowType = "infoRow"
	// RowGroupHeader is a synthetic header row for a group.
	RowGroupHeader RowType = "groupHeader"
	// RowTotal is a synthetic grand-total row.
	RowTotal RowType = "total"
)

// Mode selects between read-only and editable presentation.
type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

// ValidMode reports whether m is a recognized mode string.
func ValidMode(m Mode) bool {
	return m == ModeView || m == ModeEdit
}

// Reserved field keys recognized during row normalization. A raw row
// map carrying "id" keeps that id; "type" selects the row type.
const (
	FieldID   = "id"
	FieldType = "type"
)

// Row is one table record: a field map plus reserved metadata.
//
// INVARIANTS:
//   - ID is unique and stable for the lifetime of the row; ids are
//     never reused after deletion.
//   - Index always equals the row's position in the authoritative
//     sequence; inserts and deletes re-stamp every index.
type Row struct {
	ID     string
	Index  int
	Type   RowType
	Fields map[string]any
}

// Get returns the value of a field. Missing fields yield (nil, false).
func (r Row) Get(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Value returns the value of a field, or nil when absent.
func (r Row) Value(field string) any {
	return r.Fields[field]
}

// Clone returns a deep copy of the row. Nested maps and slices in the
// field values are copied as well, so the clone shares no mutable
// state with the original.
func (r Row) Clone() Row {
	c := r
	c.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = CopyValue(v)
	}
	return c
}

// CloneRows deep-copies a slice of rows.
func CloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
