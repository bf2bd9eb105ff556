package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Canonical renders the result as deterministic text for golden
// comparison: the event trace line by line, then the final tree.
func (r *Result) Canonical(scenarioName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenarioName)
	b.WriteString("trace:\n")
	for _, te := range r.Trace {
		fmt.Fprintf(&b, "  %d %s", te.Seq, te.Kind)
		if te.Row != "" {
			fmt.Fprintf(&b, " row=%s", te.Row)
		}
		if te.Column != "" {
			fmt.Fprintf(&b, " col=%s", te.Column)
		}
		if te.Group != "" {
			fmt.Fprintf(&b, " group=%s", te.Group)
		}
		if te.Source != "" {
			fmt.Fprintf(&b, " source=%s", te.Source)
		}
		b.WriteString("\n")
	}
	b.WriteString("tree:\n")
	b.WriteString(r.Snapshot)
	return b.String()
}

// RunWithGolden executes a scenario and compares its canonical result
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func (h *Harness) RunWithGolden(t *testing.T, s *Scenario) *Result {
	t.Helper()

	result, err := h.Run(s)
	if err != nil {
		t.Fatalf("scenario %s failed to execute: %v", s.Name, err)
	}
	if !result.Pass {
		t.Errorf("scenario %s assertions failed:\n  %s", s.Name, strings.Join(result.Errors, "\n  "))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, []byte(result.Canonical(s.Name)))
	return result
}
