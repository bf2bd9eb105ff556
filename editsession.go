package gridloom

import (
	"fmt"

	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/render"
)

// CellState is the edit state machine of one cell:
// viewing -> editing -> committing|cancelling -> viewing.
type CellState string

const (
	CellViewing    CellState = "viewing"
	CellEditing    CellState = "editing"
	CellCommitting CellState = "committing"
	CellCancelling CellState = "cancelling"
)

// EditSession drives one cell through the edit state machine. It is
// the engine-side half of the edit-navigation collaborator boundary:
// it only uses NodeFor to reach the live editor control and the
// store's public write surface to land values. Which cell gets focused
// next is the embedding application's business.
type EditSession struct {
	g         *Grid
	rowID     string
	columnKey string
	original  any
	state     CellState
}

// StartEdit opens an edit session on one cell. The grid must be in
// edit mode and the column editable; the original value is captured
// for cancel.
func (g *Grid) StartEdit(rowID, columnKey string) (*EditSession, error) {
	if g.GetMode() != ModeEdit {
		return nil, fmt.Errorf("gridloom: start edit in %s mode", g.GetMode())
	}
	col, ok := g.store.Column(columnKey)
	if !ok {
		return nil, fmt.Errorf("gridloom: unknown column %q", columnKey)
	}
	if !col.Editable {
		return nil, fmt.Errorf("gridloom: column %q is not editable", columnKey)
	}
	row, ok := g.GetRow(rowID)
	if !ok {
		return nil, fmt.Errorf("gridloom: unknown row %q", rowID)
	}
	if row.Type != grid.RowData {
		return nil, fmt.Errorf("gridloom: row %q is not editable", rowID)
	}

	s := &EditSession{
		g:         g,
		rowID:     rowID,
		columnKey: columnKey,
		original:  grid.CopyValue(row.Value(columnKey)),
		state:     CellEditing,
	}
	s.focusEditor(true)
	return s, nil
}

// State returns the session's current state.
func (s *EditSession) State() CellState { return s.state }

// Value returns the cell's current stored value.
func (s *EditSession) Value() any {
	row, ok := s.g.GetRow(s.rowID)
	if !ok {
		return nil
	}
	return row.Value(s.columnKey)
}

// Commit hands the value back to the store and returns to viewing.
func (s *EditSession) Commit(value any) {
	if s.state != CellEditing {
		return
	}
	s.state = CellCommitting
	s.g.UpdateCell(s.rowID, s.columnKey, value)
	s.focusEditor(false)
	s.state = CellViewing
}

// Cancel restores the value captured at StartEdit and returns to
// viewing.
func (s *EditSession) Cancel() {
	if s.state != CellEditing {
		return
	}
	s.state = CellCancelling
	s.g.UpdateCell(s.rowID, s.columnKey, s.original)
	s.focusEditor(false)
	s.state = CellViewing
}

// focusEditor moves focus onto or off the cell's editor control, when
// one is present in the tree.
func (s *EditSession) focusEditor(focused bool) {
	cell := s.g.NodeFor(s.rowID, s.columnKey)
	if cell == nil {
		return
	}
	for _, c := range cell.Children() {
		if c.Kind == render.NodeInput || c.Kind == render.NodeSelect {
			c.Focused = focused
			return
		}
	}
}
