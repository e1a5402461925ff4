package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/korsimoro/ext-phosphor/internal/harness"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var allErrors bool

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without executing it",
		Long: `Validate a scenario file structurally: strict YAML parsing, required
fields, and per-operation argument checks. Nothing is executed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], allErrors, cmd)
		},
	}
	cmd.Flags().BoolVar(&allErrors, "all-errors", false, "collect every validation error instead of stopping at the first")
	return cmd
}

func runValidate(opts *RootOptions, path string, allErrors bool, cmd *cobra.Command) error {
	p := newPrinter(opts, cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		_ = p.fail(err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read scenario", err)
	}

	var messages []string
	scenario, parseErr := harness.ParseScenarioLenient(data)
	switch {
	case parseErr != nil:
		// Malformed YAML: nothing further to check.
		messages = append(messages, parseErr.Error())
	case allErrors:
		for _, e := range harness.ValidateScenarioAll(scenario) {
			messages = append(messages, e.Error())
		}
	default:
		if err := harness.ValidateScenario(scenario); err != nil {
			messages = append(messages, err.Error())
		}
	}

	if len(messages) > 0 {
		result := ValidationResult{Valid: false, Errors: messages}
		if p.json {
			if err := p.fail("validation failed", result); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(p.out, "validation failed")
			for _, msg := range messages {
				fmt.Fprintf(p.out, "  %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(messages)))
	}

	p.debugf("scenario %s parsed cleanly", path)
	return p.result(ValidationResult{Valid: true}, func(w io.Writer) {
		fmt.Fprintln(w, "scenario valid")
	})
}
