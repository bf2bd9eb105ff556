package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
)

func TestSetData_NormalizesRows(t *testing.T) {
	bus := event.NewBus()
	s, err := New(bus, testColumns(), WithIDGenerator(NewSequenceGenerator("row")))
	require.NoError(t, err)

	s.SetData([]grid.Row{
		{Fields: map[string]any{"id": "explicit", "name": "A"}},
		{Fields: map[string]any{"name": "B"}},
		{Fields: map[string]any{"type": "infoRow", "name": "note"}},
	})

	rows := s.Data()
	require.Len(t, rows, 3)

	assert.Equal(t, "explicit", rows[0].ID, "id field becomes the row id")
	assert.NotContains(t, rows[0].Fields, "id", "reserved key leaves the field map")
	assert.Equal(t, grid.RowData, rows[0].Type)

	assert.Equal(t, "row-1", rows[1].ID, "missing ids are generated")
	assert.Equal(t, grid.RowInfo, rows[2].Type)

	for i, r := range rows {
		assert.Equal(t, i, r.Index)
	}
}

func TestUpdateCell_WritesAndPublishes(t *testing.T) {
	s, bus := newTestStore(t)
	var cells []event.CellChange
	var rowChanges []event.RowChange
	bus.Subscribe(event.KindCellChange, func(e event.Event) { cells = append(cells, *e.CellChange) })
	bus.Subscribe(event.KindRowChange, func(e event.Event) { rowChanges = append(rowChanges, *e.RowChange) })

	s.UpdateCell("r1", "price", 12.5)

	require.Len(t, cells, 1)
	assert.Equal(t, "r1", cells[0].RowID)
	assert.Equal(t, 10.0, cells[0].OldValue)
	assert.Equal(t, 12.5, cells[0].NewValue)

	require.Len(t, rowChanges, 1)
	assert.Equal(t, []string{"price"}, rowChanges[0].DirtyColumns)

	row, _ := s.RowByID("r1")
	assert.Equal(t, 12.5, row.Fields["price"])
}

func TestUpdateCell_EqualValueIsNoop(t *testing.T) {
	s, bus := newTestStore(t)
	events := 0
	bus.Subscribe(event.KindCellChange, func(event.Event) { events++ })

	s.UpdateCell("r1", "price", 10.0)
	assert.Zero(t, events)
	assert.False(t, s.IsRowDirty("r1"))

	// Cross-representation equality is still a no-op.
	s.UpdateCell("r1", "price", 10)
	assert.Zero(t, events)
	assert.False(t, s.IsRowDirty("r1"))
}

func TestUpdateCell_MissingRowIsSilent(t *testing.T) {
	s, bus := newTestStore(t)
	events := 0
	bus.Subscribe(event.KindCellChange, func(event.Event) { events++ })

	assert.NotPanics(t, func() { s.UpdateCell("ghost", "price", 1.0) })
	assert.Zero(t, events)
}

func TestUpdateCell_CascadeRunsOnce(t *testing.T) {
	bus := event.NewBus()
	cols := testColumns()
	cascades := 0
	cols[2].Cascade = func(row grid.Row, newValue any, w grid.CellWriter) {
		cascades++
		f, _ := grid.Float(newValue)
		// Writing back into the cascading column must not re-trigger.
		w.SetCell(row.ID, "price", f)
		w.SetCell(row.ID, "name", "cascaded")
	}
	s, err := New(bus, cols, WithIDGenerator(NewSequenceGenerator("row")))
	require.NoError(t, err)
	s.SetData(testRows())

	s.UpdateCell("r1", "price", 99.0)

	assert.Equal(t, 1, cascades, "cascade writes are cascade-suppressed")
	row, _ := s.RowByID("r1")
	assert.Equal(t, "cascaded", row.Fields["name"])
}

func TestUpdateCell_CascadeWriteStillMarksDirty(t *testing.T) {
	bus := event.NewBus()
	cols := testColumns()
	cols[2].Cascade = func(row grid.Row, _ any, w grid.CellWriter) {
		w.SetCell(row.ID, "name", "derived")
	}
	s, err := New(bus, cols)
	require.NoError(t, err)
	s.SetData(testRows())

	s.UpdateCell("r1", "price", 42.0)
	assert.ElementsMatch(t, []string{"name", "price"}, s.DirtyColumns("r1"))
}

func TestUpdateCell_CascadeWritePublishes(t *testing.T) {
	bus := event.NewBus()
	cols := testColumns()
	cols[2].Cascade = func(row grid.Row, _ any, w grid.CellWriter) {
		w.SetCell(row.ID, "name", "derived")
	}
	s, err := New(bus, cols)
	require.NoError(t, err)
	s.SetData(testRows())

	var cells []event.CellChange
	bus.Subscribe(event.KindCellChange, func(e event.Event) { cells = append(cells, *e.CellChange) })

	s.UpdateCell("r1", "price", 42.0)

	require.Len(t, cells, 2, "the cascaded write announces itself like any other")
	assert.Equal(t, "price", cells[0].ColumnKey)
	assert.Equal(t, "name", cells[1].ColumnKey)
	assert.Equal(t, "derived", cells[1].NewValue)
}

func TestBatchUpdate_AfterCascadeCarriesOnlyBatchRows(t *testing.T) {
	bus := event.NewBus()
	cols := testColumns()
	cols[2].Cascade = func(row grid.Row, _ any, w grid.CellWriter) {
		w.SetCell(row.ID, "name", "derived")
	}
	s, err := New(bus, cols)
	require.NoError(t, err)
	s.SetData(testRows())

	s.UpdateCell("r1", "price", 42.0)

	var dataChanges []event.DataChange
	bus.Subscribe(event.KindDataChange, func(e event.Event) { dataChanges = append(dataChanges, *e.DataChange) })

	s.BatchUpdate([]CellUpdate{{RowID: "r2", ColumnKey: "price", Value: 21.0}})
	require.Len(t, dataChanges, 1)
	assert.Equal(t, []string{"r2"}, dataChanges[0].RowIDs)

	s.BatchUpdate([]CellUpdate{{RowID: "r2", ColumnKey: "price", Value: 21.0}})
	assert.Len(t, dataChanges, 1, "a batch of no-ops stays silent after a cascade")
}

func TestBatchUpdate_OneDataChange(t *testing.T) {
	s, bus := newTestStore(t)
	cellEvents := 0
	var dataChanges []event.DataChange
	bus.Subscribe(event.KindCellChange, func(event.Event) { cellEvents++ })
	bus.Subscribe(event.KindDataChange, func(e event.Event) { dataChanges = append(dataChanges, *e.DataChange) })

	s.BatchUpdate([]CellUpdate{
		{RowID: "r1", ColumnKey: "price", Value: 11.0},
		{RowID: "r1", ColumnKey: "price", Value: 12.0},
		{RowID: "r2", ColumnKey: "price", Value: 21.0},
		{RowID: "ghost", ColumnKey: "price", Value: 1.0},
	})

	assert.Zero(t, cellEvents, "per-cell events are suppressed inside a batch")
	require.Len(t, dataChanges, 1)
	assert.Equal(t, event.SourceBatch, dataChanges[0].Source)
	assert.Equal(t, []string{"r1", "r2"}, dataChanges[0].RowIDs)

	row, _ := s.RowByID("r1")
	assert.Equal(t, 12.0, row.Fields["price"], "last write per cell wins")
}

func TestBatchUpdate_AllNoopsPublishNothing(t *testing.T) {
	s, bus := newTestStore(t)
	dataChanges := 0
	bus.Subscribe(event.KindDataChange, func(event.Event) { dataChanges++ })

	s.BatchUpdate([]CellUpdate{
		{RowID: "r1", ColumnKey: "price", Value: 10.0},
		{RowID: "r2", ColumnKey: "price", Value: 20},
	})
	assert.Zero(t, dataChanges)

	s.BatchUpdate(nil)
	assert.Zero(t, dataChanges)
}

func TestAddRow_InsertsAndMarksDirty(t *testing.T) {
	s, bus := newTestStore(t)
	var adds []event.RowAdd
	bus.Subscribe(event.KindRowAdd, func(e event.Event) { adds = append(adds, *e.RowAdd) })

	added := s.AddRow(grid.Row{Fields: map[string]any{"name": "New", "price": 1.0}}, 1)

	require.Len(t, adds, 1)
	assert.Equal(t, 1, adds[0].Index)
	assert.Equal(t, added.ID, adds[0].Row.ID)

	rows := s.Data()
	require.Len(t, rows, 4)
	assert.Equal(t, added.ID, rows[1].ID)
	for i, r := range rows {
		assert.Equal(t, i, r.Index, "indices re-stamped after insert")
	}

	assert.True(t, s.IsRowDirty(added.ID), "a new row has no baseline to match")
	assert.ElementsMatch(t, []string{"name", "price"}, s.DirtyColumns(added.ID))
}

func TestAddRow_OutOfRangeAppends(t *testing.T) {
	s, _ := newTestStore(t)
	added := s.AddRow(grid.Row{Fields: map[string]any{"name": "Tail"}}, 99)
	rows := s.Data()
	assert.Equal(t, added.ID, rows[len(rows)-1].ID)
}

func TestDeleteRow(t *testing.T) {
	s, bus := newTestStore(t)
	var deletes []event.RowDelete
	bus.Subscribe(event.KindRowDelete, func(e event.Event) { deletes = append(deletes, *e.RowDelete) })

	s.UpdateCell("r2", "price", 25.0)
	s.DeleteRow("r2")

	require.Len(t, deletes, 1)
	assert.Equal(t, "r2", deletes[0].RowID)
	assert.Equal(t, 25.0, deletes[0].Row.Fields["price"], "event carries the row's last state")

	assert.Equal(t, 2, s.RowCount())
	assert.Empty(t, s.DirtyRowIDs(), "deleted rows leave the dirty set")

	// Absent row: silent no-op.
	s.DeleteRow("r2")
	assert.Len(t, deletes, 1)
}

func TestMoveRow(t *testing.T) {
	s, bus := newTestStore(t)
	var changes []event.DataChange
	bus.Subscribe(event.KindDataChange, func(e event.Event) { changes = append(changes, *e.DataChange) })

	s.MoveRow("r3", 0)
	rows := s.Data()
	assert.Equal(t, []string{"r3", "r1", "r2"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	for i, r := range rows {
		assert.Equal(t, i, r.Index)
	}
	require.Len(t, changes, 1)
	assert.Equal(t, event.SourceMoveRow, changes[0].Source)

	// Destination clamps; moving to the current position is a no-op.
	s.MoveRow("r3", -5)
	assert.Len(t, changes, 1)
	s.MoveRow("r2", 99)
	assert.Len(t, changes, 2)
	assert.Equal(t, "r2", s.Data()[2].ID)
}

func TestDisplayCache_InvalidatedOnWrite(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetDisplay("r1", "price", "10")
	s.SetDisplay("r1", "name", "Widget")

	got, ok := s.Display("r1", "price")
	require.True(t, ok)
	assert.Equal(t, "10", got)

	s.UpdateCell("r1", "price", 11.0)
	_, ok = s.Display("r1", "price")
	assert.False(t, ok, "write invalidates the cell's cached display")
	_, ok = s.Display("r1", "name")
	assert.True(t, ok, "other cells keep their cache")
}

func TestDisplayCache_AffectsColumns(t *testing.T) {
	bus := event.NewBus()
	cols := testColumns()
	cols[2].AffectsColumns = []string{"name"}
	s, err := New(bus, cols)
	require.NoError(t, err)
	s.SetData(testRows())

	s.SetDisplay("r1", "name", "Widget")
	s.UpdateCell("r1", "price", 11.0)

	_, ok := s.Display("r1", "name")
	assert.False(t, ok, "declared downstream caches are invalidated too")
}

func TestToggleGroup(t *testing.T) {
	s, bus := newTestStore(t)
	var toggles []event.GroupToggle
	bus.Subscribe(event.KindGroupToggle, func(e event.Event) { toggles = append(toggles, *e.GroupToggle) })

	s.ToggleGroup("east")
	assert.True(t, s.IsGroupCollapsed("east"))
	s.ToggleGroup("east")
	assert.False(t, s.IsGroupCollapsed("east"))

	require.Len(t, toggles, 2)
	assert.True(t, toggles[0].Collapsed)
	assert.False(t, toggles[1].Collapsed)
}

func TestExpandCollapseAll(t *testing.T) {
	s, bus := newTestStore(t)
	kinds := []event.Kind{}
	bus.Subscribe(event.KindGroupCollapseAll, func(e event.Event) { kinds = append(kinds, e.Type) })
	bus.Subscribe(event.KindGroupExpandAll, func(e event.Event) { kinds = append(kinds, e.Type) })

	s.CollapseAllGroups([]string{"east", "west"})
	assert.True(t, s.IsGroupCollapsed("east"))
	assert.True(t, s.IsGroupCollapsed("west"))

	s.ExpandAllGroups()
	assert.False(t, s.IsGroupCollapsed("east"))

	assert.Equal(t, []event.Kind{event.KindGroupCollapseAll, event.KindGroupExpandAll}, kinds)
}
