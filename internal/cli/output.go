package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // validation failure, failed scenario
	ExitCommandError = 2 // command error (bad flags, unreadable files)
)

// ExitError carries the process exit code alongside an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Plain errors map
// to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printer renders command output in the format selected by --format.
// In json mode every command emits exactly one envelope on stdout; in
// text mode the command's own renderer writes free-form text.
type printer struct {
	json    bool
	out     io.Writer
	diag    io.Writer
	verbose bool
}

func newPrinter(opts *RootOptions, cmd *cobra.Command) *printer {
	return &printer{
		json:    opts.Format == "json",
		out:     cmd.OutOrStdout(),
		diag:    cmd.ErrOrStderr(),
		verbose: opts.Verbose,
	}
}

// envelope is the uniform JSON wrapper for command output.
type envelope struct {
	Status string        `json:"status"`
	Data   any           `json:"data,omitempty"`
	Error  *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// result emits a successful payload: the envelope in json mode,
// otherwise whatever text writes.
func (p *printer) result(data any, text func(w io.Writer)) error {
	if p.json {
		return p.encode(envelope{Status: "ok", Data: data})
	}
	text(p.out)
	return nil
}

// fail emits an error payload in the selected format.
func (p *printer) fail(message string, details any) error {
	if p.json {
		return p.encode(envelope{
			Status: "error",
			Error:  &errorPayload{Message: message, Details: details},
		})
	}
	fmt.Fprintf(p.out, "Error: %s\n", message)
	return nil
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// debugf writes a diagnostic line when --verbose is set. Diagnostics
// go to stderr so json output on stdout stays parseable.
func (p *printer) debugf(format string, args ...any) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.diag, format+"\n", args...)
}
