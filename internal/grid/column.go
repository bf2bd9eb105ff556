package grid

import "fmt"

// ColumnType tags the value domain of a column. It controls default
// formatting and which editor control the renderer produces.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnCurrency ColumnType = "currency"
	ColumnDate     ColumnType = "date"
	ColumnSelect   ColumnType = "select"
)

// ValidColumnType reports whether t is a recognized column type tag.
func ValidColumnType(t ColumnType) bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnCurrency, ColumnDate, ColumnSelect:
		return true
	}
	return false
}

// AggregateKind is the closed set of built-in reductions. The kind is
// resolved once when the column set is installed; per-row evaluation
// switches on the kind, never on a string.
type AggregateKind int

const (
	AggregateNone AggregateKind = iota
	AggregateSum
	AggregateAverage
	AggregateMin
	AggregateMax
	AggregateCount
	AggregateFirst
	AggregateLast
	// AggregateCustom delegates to Column.AggregateFn.
	AggregateCustom
)

// String returns the configuration-file spelling of the kind.
func (k AggregateKind) String() string {
	switch k {
	case AggregateNone:
		return ""
	case AggregateSum:
		return "sum"
	case AggregateAverage:
		return "average"
	case AggregateMin:
		return "min"
	case AggregateMax:
		return "max"
	case AggregateCount:
		return "count"
	case AggregateFirst:
		return "first"
	case AggregateLast:
		return "last"
	case AggregateCustom:
		return "custom"
	}
	return fmt.Sprintf("AggregateKind(%d)", int(k))
}

// ParseAggregate resolves an aggregate tag from configuration.
// The empty string means "no aggregate".
func ParseAggregate(tag string) (AggregateKind, error) {
	switch tag {
	case "":
		return AggregateNone, nil
	case "sum":
		return AggregateSum, nil
	case "average", "avg":
		return AggregateAverage, nil
	case "min":
		return AggregateMin, nil
	case "max":
		return AggregateMax, nil
	case "count":
		return AggregateCount, nil
	case "first":
		return AggregateFirst, nil
	case "last":
		return AggregateLast, nil
	}
	return AggregateNone, fmt.Errorf("unknown aggregate %q", tag)
}

// CellWriter is the single-level write capability handed to cascade
// callbacks. Writes routed through it are cascade-suppressed, so a
// cascade can never re-trigger another cascade; the interface has no
// batch or full-replace entry points, so a cascade cannot reach them
// at all.
type CellWriter interface {
	SetCell(rowID, columnKey string, value any)
}

// AggregateFunc is a user-supplied reducer for AggregateCustom.
// It receives the column's values for a group's data rows (in row
// order) together with the rows themselves.
type AggregateFunc func(values []any, rows []Row) any

// CascadeFunc is a column-declared side effect invoked after a cell in
// the column changes. It may write other cells through w.
type CascadeFunc func(row Row, newValue any, w CellWriter)

// FormatFunc overrides display formatting for a cell value.
type FormatFunc func(value any, row Row) string

// ValidateFunc checks a cell value. A non-nil error is advisory and is
// surfaced as an Issue; it never blocks the write.
type ValidateFunc func(value any, row Row) error

// Column is an immutable field descriptor. Replacing the column set is
// a full replace, never a patch.
type Column struct {
	// Field is the row field key this column reads and writes.
	Field string
	// Title is the display header.
	Title string
	// Type tags the value domain. Defaults to ColumnText.
	Type ColumnType
	// Editable marks cells of this column writable in edit mode.
	Editable bool
	// Hidden excludes the column from rendering and export. The data
	// is still stored, aggregated, and dirty-tracked.
	Hidden bool
	// Required marks the field for advisory required-value validation.
	Required bool
	// Options lists allowed values for ColumnSelect columns.
	Options []string
	// Currency is the ISO 4217 code used by ColumnCurrency formatting.
	// Defaults to USD.
	Currency string
	// Aggregate selects the reduction applied per group and grand
	// total. AggregateNone means the column does not aggregate.
	Aggregate AggregateKind
	// AggregateFn is the reducer used when Aggregate is AggregateCustom.
	AggregateFn AggregateFunc
	// Cascade, when set, runs after a cell in this column changes and
	// may write other cells through its CellWriter.
	Cascade CascadeFunc
	// Format overrides display formatting.
	Format FormatFunc
	// Validate is the advisory per-cell validator.
	Validate ValidateFunc
	// AffectsColumns lists downstream columns whose cached derived
	// values must be invalidated when this column changes.
	AffectsColumns []string
}

// Aggregates reports whether the column declares any aggregate.
func (c Column) Aggregates() bool {
	return c.Aggregate != AggregateNone
}
