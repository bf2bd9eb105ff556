// Package gridloom is the public facade over the reactive table
// engine: a thin wiring layer that builds the event bus, state store,
// grouping engine, and reconciler and re-exports the operation
// surface.
//
// The engine keeps a mutable data set, its derived aggregates, and a
// stateful render tree consistent under single-cell edits, batch
// edits, full data replacement, and mode switches, without a naive
// full rebuild per keystroke.
//
// There is no ambient state: every Grid owns its components, and
// lifecycle is explicit New/Close.
package gridloom

import (
	"errors"
	"log/slog"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/group"
	"github.com/gridloom/gridloom/internal/render"
	"github.com/gridloom/gridloom/internal/state"
)

// Re-exported engine types. The engine lives in internal packages;
// these aliases are the public names for its data model.
type (
	Row           = grid.Row
	RowType       = grid.RowType
	Column        = grid.Column
	ColumnType    = grid.ColumnType
	Mode          = grid.Mode
	AggregateKind = grid.AggregateKind
	AggregateFunc = grid.AggregateFunc
	CascadeFunc   = grid.CascadeFunc
	CellWriter    = grid.CellWriter
	Issue         = grid.Issue
	CellUpdate    = state.CellUpdate
	KeyFunc       = group.KeyFunc
	Group         = group.Group
	Event         = event.Event
	EventKind     = event.Kind
	Handler       = event.Handler
	Node          = render.Node

	// RowIDGenerator assigns ids to rows ingested without one.
	RowIDGenerator = state.RowIDGenerator
	// UUIDv7Generator is the production id generator.
	UUIDv7Generator = state.UUIDv7Generator
)

// NewSequenceGenerator returns a deterministic row id generator,
// useful for tests and golden snapshots.
var NewSequenceGenerator = state.NewSequenceGenerator

// Re-exported constants.
const (
	ModeView = grid.ModeView
	ModeEdit = grid.ModeEdit

	RowData        = grid.RowData
	RowInfo        = grid.RowInfo
	RowGroupHeader = grid.RowGroupHeader
	RowTotal       = grid.RowTotal

	AggregateSum     = grid.AggregateSum
	AggregateAverage = grid.AggregateAverage
	AggregateMin     = grid.AggregateMin
	AggregateMax     = grid.AggregateMax
	AggregateCount   = grid.AggregateCount
	AggregateFirst   = grid.AggregateFirst
	AggregateLast    = grid.AggregateLast
	AggregateCustom  = grid.AggregateCustom
)

// Options is the engine-facing configuration, passed straight through
// to the components.
type Options struct {
	// Data is the initial row set.
	Data []Row
	// Columns is the column set. Required.
	Columns []Column
	// EnableGrouping turns the grouping engine on. GroupBy or
	// GroupByFn selects the key source; with neither set, grouping is
	// logged and disabled.
	EnableGrouping bool
	GroupBy        string
	GroupByFn      KeyFunc
	// EnableRowTotals adds the derived per-row total column.
	EnableRowTotals bool
	// Mode is the initial presentation mode. Defaults to view.
	Mode Mode
	// IDGenerator overrides row id assignment; tests use
	// NewSequenceGenerator for deterministic ids.
	IDGenerator RowIDGenerator
}

// Grid is one wired engine instance.
type Grid struct {
	bus    *event.Bus
	store  *state.Store
	groups *group.Engine
	rec    *render.Reconciler
}

// New wires a Grid. Missing columns are a fatal configuration error;
// everything else degrades with a logged warning.
func New(opts Options) (*Grid, error) {
	if len(opts.Columns) == 0 {
		return nil, errors.New("gridloom: columns are required")
	}

	bus := event.NewBus()
	var stateOpts []state.Option
	if opts.IDGenerator != nil {
		stateOpts = append(stateOpts, state.WithIDGenerator(opts.IDGenerator))
	}
	store, err := state.New(bus, opts.Columns, stateOpts...)
	if err != nil {
		return nil, err
	}
	if opts.Mode != "" {
		store.SetMode(opts.Mode)
	}

	var gcfg group.Config
	if opts.EnableGrouping {
		switch {
		case opts.GroupByFn != nil:
			gcfg.KeyFn = opts.GroupByFn
		case opts.GroupBy != "":
			gcfg.Field = opts.GroupBy
		default:
			slog.Warn("grouping enabled without a groupBy source; grouping disabled")
		}
	}
	gcfg.RowTotals = opts.EnableRowTotals

	g := &Grid{
		bus:    bus,
		store:  store,
		groups: group.New(store, gcfg),
	}
	g.rec = render.New(store, g.groups)

	// Order matters: data first, then the grouping engine (so totals
	// exist), then the reconciler (so the first render reads them).
	store.SetData(opts.Data)
	g.groups.Attach()
	g.rec.Mount()
	return g, nil
}

// Close detaches every component from the bus. The render tree stays
// valid for the host to dispose of.
func (g *Grid) Close() {
	g.rec.Unmount()
	g.groups.Detach()
}

// SetData replaces the entire data set and baseline.
func (g *Grid) SetData(rows []Row) { g.store.SetData(rows) }

// GetData returns a deep copy of the current rows.
func (g *Grid) GetData() []Row { return g.store.Data() }

// GetRow returns a deep copy of one row.
func (g *Grid) GetRow(id string) (Row, bool) { return g.store.RowByID(id) }

// UpdateCell writes one cell; see the store for no-op and cascade
// semantics.
func (g *Grid) UpdateCell(rowID, columnKey string, value any) {
	g.store.UpdateCell(rowID, columnKey, value)
}

// BatchUpdate applies many cell writes as one observable change.
func (g *Grid) BatchUpdate(updates []CellUpdate) { g.store.BatchUpdate(updates) }

// AddRow inserts a row at the position (append when at is -1).
func (g *Grid) AddRow(row Row, at int) Row { return g.store.AddRow(row, at) }

// DeleteRow removes one row.
func (g *Grid) DeleteRow(rowID string) { g.store.DeleteRow(rowID) }

// DeleteRows removes several rows.
func (g *Grid) DeleteRows(rowIDs []string) { g.store.DeleteRows(rowIDs) }

// MoveRow repositions a row; every index is re-stamped.
func (g *Grid) MoveRow(rowID string, to int) { g.store.MoveRow(rowID, to) }

// GetDirtyRows returns deep copies of rows changed since the baseline.
func (g *Grid) GetDirtyRows() []Row { return g.store.DirtyRows() }

// DirtyRowIDs returns ids of dirty rows in row order.
func (g *Grid) DirtyRowIDs() []string { return g.store.DirtyRowIDs() }

// IsRowDirty reports whether one row differs from the baseline.
func (g *Grid) IsRowDirty(rowID string) bool { return g.store.IsRowDirty(rowID) }

// ClearDirty makes the current values the new baseline.
func (g *Grid) ClearDirty() { g.store.ClearDirty() }

// RevertChanges restores the last baseline.
func (g *Grid) RevertChanges() { g.store.RevertChanges() }

// GetColumns returns the column set.
func (g *Grid) GetColumns() []Column { return g.store.Columns() }

// SetColumns replaces the column set wholesale.
func (g *Grid) SetColumns(columns []Column) error { return g.store.SetColumns(columns) }

// GetMode returns the presentation mode.
func (g *Grid) GetMode() Mode { return g.store.Mode() }

// SetMode switches between view and edit.
func (g *Grid) SetMode(m Mode) { g.store.SetMode(m) }

// ToggleGroup flips one group's collapsed state.
func (g *Grid) ToggleGroup(groupID string) { g.store.ToggleGroup(groupID) }

// IsGroupCollapsed reports one group's collapsed state.
func (g *Grid) IsGroupCollapsed(groupID string) bool { return g.store.IsGroupCollapsed(groupID) }

// ExpandAllGroups expands every group.
func (g *Grid) ExpandAllGroups() { g.store.ExpandAllGroups() }

// CollapseAllGroups collapses every group known to the grouping
// engine.
func (g *Grid) CollapseAllGroups() { g.store.CollapseAllGroups(g.groups.GroupIDs()) }

// Groups returns the current partition in first-occurrence order.
func (g *Grid) Groups() []Group { return g.groups.Groups() }

// GroupTotals returns one group's aggregate values.
func (g *Grid) GroupTotals(groupID string) (map[string]any, bool) {
	grp, ok := g.groups.Group(groupID)
	if !ok {
		return nil, false
	}
	return grp.Totals, true
}

// GrandTotals returns the aggregates over every data row.
func (g *Grid) GrandTotals() map[string]any { return g.groups.GrandTotals() }

// RowTotal returns one row's derived total.
func (g *Grid) RowTotal(rowID string) (float64, bool) { return g.groups.RowTotal(rowID) }

// Subscribe registers an event handler and returns its unsubscribe
// function.
func (g *Grid) Subscribe(kind EventKind, fn Handler) func() { return g.bus.Subscribe(kind, fn) }

// Root returns the mounted render tree.
func (g *Grid) Root() *Node { return g.rec.Root() }

// NodeFor returns the live cell node for (row, column).
func (g *Grid) NodeFor(rowID, columnKey string) *Node { return g.rec.NodeFor(rowID, columnKey) }

// Snapshot renders the current tree as deterministic text.
func (g *Grid) Snapshot() string { return g.rec.Snapshot() }

// Validate runs the advisory validators over every data row.
func (g *Grid) Validate() []Issue {
	return grid.ValidateRows(g.store.Data(), g.store.Columns())
}
