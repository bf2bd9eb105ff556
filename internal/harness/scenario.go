package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gridloom/gridloom/internal/config"
)

// Scenario defines one conformance scenario: a grid definition, the
// initial data, a sequence of operations, and assertions over the
// final state, totals, event trace, and rendered tree.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name when the scenario runs under golden comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Grid is the inline grid definition (columns, grouping, mode).
	// GridFile loads the definition from a CUE file instead; paths are
	// relative to the scenario file location. Exactly one must be set.
	Grid     *config.GridDef `yaml:"grid,omitempty"`
	GridFile string          `yaml:"gridFile,omitempty"`

	// Data contains the initial rows as plain maps. Reserved keys `id`
	// and `type` pass through to the row envelope.
	Data []map[string]any `yaml:"data"`

	// Steps is the operation sequence to apply after the initial load.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state once every step has run.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation in the scenario flow. Op selects which of the
// remaining fields apply.
type Step struct {
	// Op is one of: update_cell, batch_update, add_row, delete_row,
	// move_row, set_mode, toggle_group, expand_all, collapse_all,
	// clear_dirty, revert, set_data.
	Op string `yaml:"op"`

	// Row and Column address a cell for update_cell and delete_row.
	Row    string `yaml:"row,omitempty"`
	Column string `yaml:"column,omitempty"`

	// Value is the new cell value for update_cell.
	Value any `yaml:"value,omitempty"`

	// Updates carries the cell writes of a batch_update.
	Updates []CellWrite `yaml:"updates,omitempty"`

	// Fields holds the new row's data for add_row.
	Fields map[string]any `yaml:"fields,omitempty"`

	// At is the insertion index for add_row and the destination index
	// for move_row. -1 (the default when omitted on add_row) appends.
	At *int `yaml:"at,omitempty"`

	// Mode is the target mode for set_mode.
	Mode string `yaml:"mode,omitempty"`

	// Group is the group id for toggle_group.
	Group string `yaml:"group,omitempty"`

	// Rows replaces the data set for set_data.
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// CellWrite is one entry of a batch_update step.
type CellWrite struct {
	Row    string `yaml:"row"`
	Column string `yaml:"column"`
	Value  any    `yaml:"value"`
}

// Assertion validates final state, totals, trace, or tree.
type Assertion struct {
	// Type is one of: cell_value, display_value, dirty_rows,
	// row_count, group_total, grand_total, row_total, group_members,
	// event_count, event_order, node_text, node_hidden, node_class.
	Type string `yaml:"type"`

	// Row and Column address a cell (cell_value, display_value,
	// row_total) or a node (node_* with Row/Column addressing).
	Row    string `yaml:"row,omitempty"`
	Column string `yaml:"column,omitempty"`

	// Group is the group id for group_total and group_members.
	Group string `yaml:"group,omitempty"`

	// Value is the expected scalar for value-style assertions.
	Value any `yaml:"value,omitempty"`

	// Rows is the expected dirty-row id set (order-insensitive) for
	// dirty_rows, or the expected member ids (ordered) for
	// group_members.
	Rows []string `yaml:"rows,omitempty"`

	// Count is the expected count for row_count and event_count.
	Count int `yaml:"count,omitempty"`

	// Event names the event kind for event_count (wire name, e.g.
	// "cell:change").
	Event string `yaml:"event,omitempty"`

	// Events lists event wire names that must appear in the trace in
	// the given relative order for event_order.
	Events []string `yaml:"events,omitempty"`

	// Node is a node id for node_text, node_hidden, and node_class
	// when Row/Column addressing does not apply.
	Node string `yaml:"node,omitempty"`

	// Class is the class name expected present for node_class.
	Class string `yaml:"class,omitempty"`

	// Hidden is the expected visibility flag for node_hidden.
	Hidden bool `yaml:"hidden,omitempty"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	// GridFile paths resolve relative to the scenario file.
	if s.GridFile != "" && !filepath.IsAbs(s.GridFile) {
		s.GridFile = filepath.Join(filepath.Dir(path), s.GridFile)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios loads every *.yaml scenario under dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("globbing scenarios: %w", err)
	}

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks structural requirements before execution.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Grid == nil && s.GridFile == "" {
		return fmt.Errorf("scenario %s: grid or gridFile is required", s.Name)
	}
	if s.Grid != nil && s.GridFile != "" {
		return fmt.Errorf("scenario %s: grid and gridFile are mutually exclusive", s.Name)
	}
	if s.Grid != nil && len(s.Grid.Columns) == 0 {
		return fmt.Errorf("scenario %s: grid needs at least one column", s.Name)
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("scenario %s: step %d: %w", s.Name, i+1, err)
		}
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("scenario %s: assertion %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	switch st.Op {
	case "update_cell":
		if st.Row == "" || st.Column == "" {
			return fmt.Errorf("update_cell needs row and column")
		}
	case "batch_update":
		if len(st.Updates) == 0 {
			return fmt.Errorf("batch_update needs updates")
		}
	case "add_row":
		if len(st.Fields) == 0 {
			return fmt.Errorf("add_row needs fields")
		}
	case "delete_row":
		if st.Row == "" {
			return fmt.Errorf("delete_row needs row")
		}
	case "move_row":
		if st.Row == "" || st.At == nil {
			return fmt.Errorf("move_row needs row and at")
		}
	case "set_mode":
		if st.Mode == "" {
			return fmt.Errorf("set_mode needs mode")
		}
	case "toggle_group":
		if st.Group == "" {
			return fmt.Errorf("toggle_group needs group")
		}
	case "expand_all", "collapse_all", "clear_dirty", "revert":
	case "set_data":
		if st.Rows == nil {
			return fmt.Errorf("set_data needs rows")
		}
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

func (a *Assertion) validate() error {
	switch a.Type {
	case "cell_value", "display_value":
		if a.Row == "" || a.Column == "" {
			return fmt.Errorf("%s needs row and column", a.Type)
		}
	case "dirty_rows", "row_count":
	case "group_total":
		if a.Group == "" || a.Column == "" {
			return fmt.Errorf("group_total needs group and column")
		}
	case "grand_total":
		if a.Column == "" {
			return fmt.Errorf("grand_total needs column")
		}
	case "row_total":
		if a.Row == "" {
			return fmt.Errorf("row_total needs row")
		}
	case "group_members":
		if a.Group == "" {
			return fmt.Errorf("group_members needs group")
		}
	case "event_count":
		if a.Event == "" {
			return fmt.Errorf("event_count needs event")
		}
	case "event_order":
		if len(a.Events) < 2 {
			return fmt.Errorf("event_order needs at least two events")
		}
	case "node_text", "node_hidden", "node_class":
		if a.Node == "" && (a.Row == "" || a.Column == "") {
			return fmt.Errorf("%s needs node or row+column", a.Type)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
