package event

import (
	"fmt"

	"github.com/gridloom/gridloom/internal/grid"
)

// Data change sources.
const (
	SourceSetData = "setData"
	SourceBatch   = "batch"
	SourceAddRow  = "addRow"
	SourceDelete  = "deleteRow"
	SourceMoveRow = "moveRow"
	SourceRevert  = "revert"
	SourceColumns = "setColumns"
)

// DataChange reports that the authoritative row sequence changed as a
// unit. RowIDs lists the touched rows; empty means "treat everything
// as changed" (full replace).
type DataChange struct {
	RowIDs []string
	Source string
}

// CellChange reports a single cell write.
type CellChange struct {
	RowID     string
	ColumnKey string
	OldValue  any
	NewValue  any
}

// RowChange follows a cell change and carries the full set of the
// row's dirty columns at that point.
type RowChange struct {
	RowID        string
	ColumnKey    string
	DirtyColumns []string
}

// RowAdd reports a row insert at Index.
type RowAdd struct {
	Row   grid.Row
	Index int
}

// RowDelete reports a row removal. Row is the removed row's last state.
type RowDelete struct {
	RowID string
	Row   grid.Row
	Index int
}

// GroupToggle reports one group's collapsed flag flipping.
type GroupToggle struct {
	GroupID   string
	Collapsed bool
}

// ModeChange reports a view/edit switch.
type ModeChange struct {
	OldMode grid.Mode
	NewMode grid.Mode
}

// TotalsChange reports recomputed aggregates. An empty GroupID means
// all groups and the grand totals. Repartitioned is set when group
// membership itself changed, not just the numbers.
type TotalsChange struct {
	GroupID       string
	Repartitioned bool
}

// RowTotalChange reports one row's derived total changing.
type RowTotalChange struct {
	RowID    string
	OldValue float64
	NewValue float64
}

// RenderInfo accompanies the render lifecycle kinds.
type RenderInfo struct {
	RowCount    int
	ColumnCount int
}

// Event wraps one notification. Type selects which payload pointer is
// set; the others are nil. Kinds without a payload (expand/collapse
// all) carry only the Type.
type Event struct {
	Type Kind

	DataChange     *DataChange
	CellChange     *CellChange
	RowChange      *RowChange
	RowAdd         *RowAdd
	RowDelete      *RowDelete
	GroupToggle    *GroupToggle
	ModeChange     *ModeChange
	TotalsChange   *TotalsChange
	RowTotalChange *RowTotalChange
	RenderInfo     *RenderInfo
}

// Key returns the event's identity for batch deduplication. Cell-level
// change events are keyed by (kind, row, column); row-level change
// events by (kind, row); everything else collapses to one slot per
// kind. RowChange deliberately keys on the row alone: its payload
// carries the row's full dirty-column set, so the last survivor per
// row already reflects every coalesced write.
func (e Event) Key() string {
	switch e.Type {
	case KindCellChange:
		if e.CellChange != nil {
			return fmt.Sprintf("%d|%s|%s", e.Type, e.CellChange.RowID, e.CellChange.ColumnKey)
		}
	case KindRowChange:
		if e.RowChange != nil {
			return fmt.Sprintf("%d|%s", e.Type, e.RowChange.RowID)
		}
	case KindRowTotalChange:
		if e.RowTotalChange != nil {
			return fmt.Sprintf("%d|%s", e.Type, e.RowTotalChange.RowID)
		}
	}
	return fmt.Sprintf("%d", e.Type)
}
