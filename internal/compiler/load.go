package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/gridloom/gridloom/internal/config"
)

// LoadGridFile reads one CUE file and compiles its top-level "grid"
// struct into a GridDef.
func LoadGridFile(path string) (*config.GridDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid definition: %w", err)
	}
	return LoadGridSource(path, raw)
}

// LoadGridSource compiles CUE source into a GridDef. The filename is
// used for error positions only.
func LoadGridSource(filename string, src []byte) (*config.GridDef, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	gridVal := v.LookupPath(cue.ParsePath("grid"))
	if !gridVal.Exists() {
		return nil, &CompileError{
			Field:   "grid",
			Message: "no top-level grid definition found",
			Pos:     v.Pos(),
		}
	}
	return CompileGridDef(gridVal)
}
