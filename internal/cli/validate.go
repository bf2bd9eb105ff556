package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridloom/gridloom/internal/compiler"
)

// ValidationResult holds validation results for one definition file.
type ValidationResult struct {
	File   string                     `json:"file"`
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grid.cue>...",
		Short: "Validate grid definitions",
		Long: `Compile CUE grid definitions and check them against schema rules.

Reports every violation found (duplicate fields, unknown type or
aggregate tags, groupBy naming no column) rather than failing fast.

Exit codes:
  0 - All definitions valid
  1 - One or more definitions invalid
  2 - Command error (file not found, CUE compile error)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	results := make([]ValidationResult, 0, len(paths))
	invalid := 0

	for _, path := range paths {
		formatter.VerboseLog("compiling %s", path)

		def, err := compiler.LoadGridFile(path)
		if err != nil {
			formatter.Error(ErrCodeLoad, fmt.Sprintf("compiling %s", path), err.Error())
			return NewExitError(ExitCommandError, fmt.Sprintf("failed to compile %s", path))
		}

		errs := compiler.Validate(def)
		results = append(results, ValidationResult{
			File:   path,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
		if len(errs) > 0 {
			invalid++
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", r.File)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d error(s)\n", r.File, len(r.Errors))
			for _, e := range r.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", e)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d definition(s) invalid", invalid))
	}
	return nil
}
