package testutil

import "github.com/gridloom/gridloom/internal/grid"

// OrderColumns is the column set most engine tests share: an editable
// order sheet with a summed price column and a selectable status.
func OrderColumns() []grid.Column {
	return []grid.Column{
		{Field: "name", Title: "Name", Type: grid.ColumnText, Required: true},
		{Field: "region", Title: "Region", Type: grid.ColumnText},
		{Field: "price", Title: "Price", Type: grid.ColumnNumber, Editable: true, Aggregate: grid.AggregateSum},
		{Field: "qty", Title: "Qty", Type: grid.ColumnNumber, Editable: true, Aggregate: grid.AggregateSum},
		{Field: "status", Title: "Status", Type: grid.ColumnSelect, Editable: true, Options: []string{"open", "closed"}},
	}
}

// OrderRows returns three data rows across two regions. IDs are fixed
// so tests and goldens can reference them directly.
func OrderRows() []grid.Row {
	return []grid.Row{
		{ID: "r1", Type: grid.RowData, Fields: map[string]any{
			"name": "Widget", "region": "east", "price": 10.0, "qty": 2.0, "status": "open",
		}},
		{ID: "r2", Type: grid.RowData, Fields: map[string]any{
			"name": "Gadget", "region": "east", "price": 20.0, "qty": 1.0, "status": "open",
		}},
		{ID: "r3", Type: grid.RowData, Fields: map[string]any{
			"name": "Gizmo", "region": "west", "price": 5.0, "qty": 4.0, "status": "closed",
		}},
	}
}
