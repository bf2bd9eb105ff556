package harness

// TraceEvent is one recorded bus notification, flattened for trace
// assertions and golden serialization.
type TraceEvent struct {
	Kind   string `json:"kind" yaml:"kind"`
	Row    string `json:"row,omitempty" yaml:"row,omitempty"`
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Group  string `json:"group,omitempty" yaml:"group,omitempty"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Seq    int    `json:"seq" yaml:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every event the bus published, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists assertion failure messages. Empty when Pass.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the final render tree in canonical text form. It
	// feeds golden comparison.
	Snapshot string `json:"snapshot,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
	}
}

func (r *Result) fail(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
