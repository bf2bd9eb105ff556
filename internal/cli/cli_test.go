package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validGrid = `
grid: {
	name: "orders"
	columns: [
		{field: "name", title: "Name"},
		{field: "price", title: "Price", type: "number", aggregate: "sum"},
	]
}
`

const invalidGrid = `
grid: {
	name: "dup"
	columns: [
		{field: "a"},
		{field: "a"},
	]
}
`

const rowsYAML = `
- id: r1
  name: Widget
  price: 10.0
- id: r2
  name: Gadget
  price: 20.0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(args ...string) (string, string, error) {
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	_, _, err := runCommand("validate", "x.cue", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidateCommand_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "orders.cue", validGrid)

	out, _, err := runCommand("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, path+": ok")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.cue", invalidGrid)

	out, _, err := runCommand("validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 error(s)")
	assert.Contains(t, out, "duplicate")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, _, err := runCommand("validate", filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cue", validGrid)
	bad := writeFile(t, dir, "bad.cue", invalidGrid)

	out, _, err := runCommand("validate", good, bad, "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   []ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)
	assert.True(t, resp.Data[0].Valid)
	assert.False(t, resp.Data[1].Valid)
	assert.NotEmpty(t, resp.Data[1].Errors)
}

func TestRenderCommand_Text(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	out, _, err := runCommand("render", grid, rows)
	require.NoError(t, err)
	assert.Contains(t, out, "table#grid")
	assert.Contains(t, out, `text "Widget"`)
	assert.Contains(t, out, `text "30"`, "total row carries the sum")
}

func TestRenderCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	out, _, err := runCommand("render", grid, rows, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "orders", resp.Data.Grid)
	assert.Equal(t, 2, resp.Data.Rows)
	assert.Contains(t, resp.Data.Snapshot, "table#grid")
}

func TestRenderCommand_InvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "dup.cue", invalidGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	_, _, err := runCommand("render", grid, rows)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTestCommand_PassAndFail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "passing.yaml", `
name: passing
grid:
  columns:
    - field: price
      type: number
      aggregate: sum
data:
  - id: r1
    price: 10.0
assertions:
  - type: grand_total
    column: price
    value: 10.0
`)
	writeFile(t, dir, "failing.yaml", `
name: failing
grid:
  columns:
    - field: price
      type: number
data:
  - id: r1
    price: 10.0
assertions:
  - type: cell_value
    row: r1
    column: price
    value: 999.0
`)

	out, _, err := runCommand("test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL failing")
	assert.Contains(t, out, "PASS passing")
	assert.Contains(t, out, "1/2 passed")

	out, _, err = runCommand("test", dir, "--filter", "pass*")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS passing")
	assert.NotContains(t, out, "failing")
	assert.Contains(t, out, "1/1 passed")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := runCommand("test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_EmptyDir(t *testing.T) {
	out, _, err := runCommand("test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestExportCommand_CSVToStdout(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	out, _, err := runCommand("export", grid, rows)
	require.NoError(t, err)
	assert.Contains(t, out, "Name,Price")
	assert.Contains(t, out, "Widget,10")
	assert.Contains(t, out, "Gadget,20")
}

func TestExportCommand_CSVToFile(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)
	target := filepath.Join(dir, "out.csv")

	_, _, err := runCommand("export", grid, rows, "--out", target)
	require.NoError(t, err)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Widget,10")
}

func TestExportCommand_SQLiteNeedsOut(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	_, _, err := runCommand("export", grid, rows, "--sink", "sqlite")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportCommand_UnknownSink(t *testing.T) {
	dir := t.TempDir()
	grid := writeFile(t, dir, "orders.cue", validGrid)
	rows := writeFile(t, dir, "rows.yaml", rowsYAML)

	_, _, err := runCommand("export", grid, rows, "--sink", "parquet")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
