package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridloom/gridloom/internal/grid"
)

// RowsFromMaps wraps raw field maps as rows. Reserved keys ("id",
// "type") are honored during store normalization, not here.
func RowsFromMaps(maps []map[string]any) []grid.Row {
	rows := make([]grid.Row, len(maps))
	for i, m := range maps {
		rows[i] = grid.Row{Fields: m}
	}
	return rows
}

// LoadRows reads a YAML file holding a list of row field maps.
func LoadRows(path string) ([]grid.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows file: %w", err)
	}
	var maps []map[string]any
	if err := yaml.Unmarshal(raw, &maps); err != nil {
		return nil, fmt.Errorf("parse rows file %s: %w", path, err)
	}
	return RowsFromMaps(maps), nil
}
