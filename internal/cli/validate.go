package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/crosstab/internal/plan"
)

// ValidationResult holds plan validation results.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Plan      string `json:"plan,omitempty"`
	Variables int    `json:"variables,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan.yaml>",
		Short: "Validate a plan file without running it",
		Long: `Validate a tabulation plan without loading data.

Performs strict YAML decoding, schema validation, and cross-field
consistency checks (one matcher per rule, declared table variables,
policy/label pairings).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	p, err := plan.Load(path)
	if err != nil {
		code := plan.ErrCodeGeneric
		var perr *plan.PlanError
		if errors.As(err, &perr) {
			code = perr.Code
		}
		_ = formatter.Error(code, err.Error(), nil)

		// A missing or unreadable file is a command error; a plan that
		// fails schema or consistency checks is a validation failure.
		if code == plan.ErrCodeNotFound {
			return NewExitError(ExitCommandError, err.Error())
		}
		return NewExitError(ExitFailure, err.Error())
	}

	formatter.VerboseLog("plan %q: %d variable(s), table %s x %s", p.Name, len(p.Variables), p.Table.Row, p.Table.Col)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:     true,
			Plan:      p.Name,
			Variables: len(p.Variables),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Plan %q valid\n", p.Name)
	return nil
}
