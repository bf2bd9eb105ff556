package event

import "fmt"

// Kind is the closed enumeration of event kinds published by the
// engine. Every kind has exactly one payload type (see Event); the
// pairing is fixed so subscribers can rely on it.
type Kind int

const (
	// KindDataChange fires after a full replace, a batch update, or a
	// structural row change settles. One data change drives one
	// reconciliation pass regardless of how many cells moved.
	KindDataChange Kind = iota + 1
	// KindCellChange fires after a single cell write outside a batch.
	KindCellChange
	// KindRowChange follows a cell change and carries the row's
	// currently dirty columns.
	KindRowChange
	// KindRowAdd fires after a row insert.
	KindRowAdd
	// KindRowDelete fires after a row delete.
	KindRowDelete
	// KindGroupToggle fires when one group's collapsed state flips.
	KindGroupToggle
	// KindGroupExpandAll and KindGroupCollapseAll fire on bulk toggles.
	KindGroupExpandAll
	KindGroupCollapseAll
	// KindModeChange fires on a view/edit mode switch.
	KindModeChange
	// KindTotalsChange fires after aggregate recomputation. An empty
	// group id means every group (and the grand totals) changed.
	KindTotalsChange
	// KindRowTotalChange fires when one row's derived total changes.
	KindRowTotalChange
	// Render lifecycle notifications, advisory only.
	KindBeforeRender
	KindRender
	KindAfterRender
)

// Kinds returns every kind in declaration order. Recorders use it to
// subscribe across the whole surface.
func Kinds() []Kind {
	kinds := make([]Kind, 0, int(KindAfterRender))
	for k := KindDataChange; k <= KindAfterRender; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the wire-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDataChange:
		return "data:change"
	case KindCellChange:
		return "cell:change"
	case KindRowChange:
		return "row:change"
	case KindRowAdd:
		return "row:add"
	case KindRowDelete:
		return "row:delete"
	case KindGroupToggle:
		return "group:toggle"
	case KindGroupExpandAll:
		return "group:expandAll"
	case KindGroupCollapseAll:
		return "group:collapseAll"
	case KindModeChange:
		return "mode:change"
	case KindTotalsChange:
		return "totals:change"
	case KindRowTotalChange:
		return "rowTotal:change"
	case KindBeforeRender:
		return "beforeRender"
	case KindRender:
		return "render"
	case KindAfterRender:
		return "afterRender"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
