package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/korsimoro/ext-phosphor/internal/harness"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and print its notification trace",
		Long: `Execute a scenario file against a fresh in-memory database.

Each step runs as one transaction (or an undo/redo) and the notifier is
drained between steps, so the printed trace is deterministic: the same
scenario always produces the same trace.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runRun(opts *RootOptions, path string, cmd *cobra.Command) error {
	p := newPrinter(opts, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = p.fail(err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	p.debugf("loaded scenario %q (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		_ = p.fail(err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	return p.result(result, func(w io.Writer) {
		printTraceText(w, result)
	})
}

// printTraceText renders the trace as one line per delivery.
func printTraceText(w io.Writer, result *harness.Result) {
	fmt.Fprintf(w, "scenario %s: %d event(s)\n", result.Scenario, len(result.Trace))
	for _, ev := range result.Trace {
		var flags []string
		if ev.Bubbled {
			flags = append(flags, "bubbled")
		}
		if ev.Undo {
			flags = append(flags, "undo")
		}
		if ev.Redo {
			flags = append(flags, "redo")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, ",") + "]"
		}
		fmt.Fprintf(w, "  %s: %s <- %s (%s, %d change(s))%s\n",
			ev.Step, ev.Receiver, ev.Target, ev.Kind, len(ev.Changes), suffix)
	}
}
