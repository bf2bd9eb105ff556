package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual_NumericCrossType(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int over float same value", 3, 3.0, true},
		{"float over int same value", 3.0, 3, true},
		{"int64 over float64", int64(7), 7.0, true},
		{"different numbers", 3, 4.0, false},
		{"number vs numeric string", 3, "3", false},
		{"numeric string vs number", "3", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestEqual_Structural(t *testing.T) {
	assert.True(t, Equal("a", "a"))
	assert.False(t, Equal("a", "b"))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, "a"))
	assert.True(t, Equal(
		map[string]any{"x": []any{1, 2}},
		map[string]any{"x": []any{1, 2}},
	))
	assert.False(t, Equal(
		map[string]any{"x": []any{1, 2}},
		map[string]any{"x": []any{1, 3}},
	))
}

func TestFloat_RejectsNonNumeric(t *testing.T) {
	_, ok := Float("12")
	assert.False(t, ok, "numeric strings are not coerced")
	_, ok = Float(nil)
	assert.False(t, ok)
	_, ok = Float(true)
	assert.False(t, ok)

	f, ok := Float(uint8(200))
	assert.True(t, ok)
	assert.Equal(t, 200.0, f)
}

func TestCopyValue_DeepCopiesContainers(t *testing.T) {
	orig := map[string]any{
		"list":   []any{1, 2, 3},
		"nested": map[string]any{"k": "v"},
	}
	cp := CopyValue(orig).(map[string]any)

	cp["list"].([]any)[0] = 99
	cp["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, 1, orig["list"].([]any)[0])
	assert.Equal(t, "v", orig["nested"].(map[string]any)["k"])
}

func TestRowClone_SharesNoMutableState(t *testing.T) {
	row := Row{
		ID:     "r1",
		Type:   RowData,
		Fields: map[string]any{"tags": []any{"a"}},
	}
	c := row.Clone()
	c.Fields["tags"].([]any)[0] = "b"
	c.Fields["new"] = true

	assert.Equal(t, "a", row.Fields["tags"].([]any)[0])
	assert.NotContains(t, row.Fields, "new")
}
