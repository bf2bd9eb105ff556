// Package harness executes conformance scenarios against a fully
// wired engine: bus, store, grouping, and reconciler, exactly as the
// public facade assembles them. Scenarios are YAML files describing a
// grid definition, initial data, an operation flow, and assertions
// over the final state, totals, event trace, and rendered tree.
//
// Row ids are assigned by a sequence generator ("row-1", "row-2", ...)
// so scenarios and golden files stay deterministic; rows that carry an
// explicit `id` field keep it.
package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gridloom/gridloom/internal/compiler"
	"github.com/gridloom/gridloom/internal/config"
	"github.com/gridloom/gridloom/internal/event"
	"github.com/gridloom/gridloom/internal/grid"
	"github.com/gridloom/gridloom/internal/group"
	"github.com/gridloom/gridloom/internal/render"
	"github.com/gridloom/gridloom/internal/state"
	"github.com/gridloom/gridloom/internal/testutil"
)

// Harness runs scenarios. Each scenario gets a fresh engine instance
// for isolation.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness. A nil logger silences execution logging.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// instance bundles one scenario's wired engine.
type instance struct {
	store    *state.Store
	groups   *group.Engine
	rec      *render.Reconciler
	recorder *testutil.Recorder
}

func (in *instance) teardown() {
	in.rec.Unmount()
	in.groups.Detach()
	in.recorder.Detach()
}

// Run executes a scenario and returns the result. A returned error
// means the scenario could not execute (bad definition, unknown op);
// assertion failures land in Result.Errors instead.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	h.logger.Info("running scenario", "name", s.Name)

	in, err := h.setup(s)
	if err != nil {
		return nil, err
	}
	defer in.teardown()

	for i, step := range s.Steps {
		if err := h.apply(in, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	result := NewResult()
	result.Trace = flattenTrace(in.recorder.Events())
	result.Snapshot = in.rec.Snapshot()

	for i, a := range s.Assertions {
		if err := h.check(in, result, a); err != nil {
			result.fail(fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}

	h.logger.Info("scenario done", "name", s.Name, "pass", result.Pass, "events", len(result.Trace))
	return result, nil
}

func (h *Harness) setup(s *Scenario) (*instance, error) {
	def := s.Grid
	if s.GridFile != "" {
		loaded, err := compiler.LoadGridFile(s.GridFile)
		if err != nil {
			return nil, fmt.Errorf("loading grid definition: %w", err)
		}
		def = loaded
	}

	cols, err := def.EngineColumns()
	if err != nil {
		return nil, fmt.Errorf("resolving columns: %w", err)
	}

	bus := event.NewBus()
	st, err := state.New(bus, cols, state.WithIDGenerator(state.NewSequenceGenerator("row")))
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	if def.Mode != "" {
		st.SetMode(def.EngineMode())
	}

	cfg := group.Config{RowTotals: def.EnableRowTotals}
	if def.EnableGrouping {
		cfg.Field = def.GroupBy
	}
	groups := group.New(st, cfg)
	rec := render.New(st, groups)

	// Recorder attaches before the initial load so the trace starts
	// with the setData change.
	recorder := testutil.NewRecorder(bus)

	st.SetData(config.RowsFromMaps(s.Data))
	groups.Attach()
	rec.Mount()

	return &instance{store: st, groups: groups, rec: rec, recorder: recorder}, nil
}

func (h *Harness) apply(in *instance, step Step) error {
	switch step.Op {
	case "update_cell":
		in.store.UpdateCell(step.Row, step.Column, step.Value)
	case "batch_update":
		updates := make([]state.CellUpdate, len(step.Updates))
		for i, u := range step.Updates {
			updates[i] = state.CellUpdate{RowID: u.Row, ColumnKey: u.Column, Value: u.Value}
		}
		in.store.BatchUpdate(updates)
	case "add_row":
		at := -1
		if step.At != nil {
			at = *step.At
		}
		in.store.AddRow(grid.Row{Fields: step.Fields}, at)
	case "delete_row":
		in.store.DeleteRow(step.Row)
	case "move_row":
		in.store.MoveRow(step.Row, *step.At)
	case "set_mode":
		in.store.SetMode(grid.Mode(step.Mode))
	case "toggle_group":
		in.store.ToggleGroup(step.Group)
	case "expand_all":
		in.store.ExpandAllGroups()
	case "collapse_all":
		in.store.CollapseAllGroups(in.groups.GroupIDs())
	case "clear_dirty":
		in.store.ClearDirty()
	case "revert":
		in.store.RevertChanges()
	case "set_data":
		in.store.SetData(config.RowsFromMaps(step.Rows))
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// flattenTrace projects bus events onto the serializable trace shape.
func flattenTrace(events []event.Event) []TraceEvent {
	trace := make([]TraceEvent, len(events))
	for i, e := range events {
		te := TraceEvent{Kind: e.Type.String(), Seq: i + 1}
		switch {
		case e.DataChange != nil:
			te.Source = e.DataChange.Source
		case e.CellChange != nil:
			te.Row = e.CellChange.RowID
			te.Column = e.CellChange.ColumnKey
		case e.RowChange != nil:
			te.Row = e.RowChange.RowID
			te.Column = e.RowChange.ColumnKey
		case e.RowAdd != nil:
			te.Row = e.RowAdd.Row.ID
		case e.RowDelete != nil:
			te.Row = e.RowDelete.RowID
		case e.GroupToggle != nil:
			te.Group = e.GroupToggle.GroupID
		case e.TotalsChange != nil:
			te.Group = e.TotalsChange.GroupID
		case e.RowTotalChange != nil:
			te.Row = e.RowTotalChange.RowID
		}
		trace[i] = te
	}
	return trace
}
