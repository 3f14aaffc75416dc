package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // successful execution
	ExitFailure      = 1 // validation failure, bad dashboard spec
	ExitCommandError = 2 // command error (missing files, bad flags)
)

// ExitError carries a specific exit code out of a command.
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

// ExitCode extracts the exit code from an error. A nil error is success;
// anything that is not an ExitError maps to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Formatter writes command results as JSON envelopes or human text.
// Verbose diagnostics go to ErrWriter so they never corrupt JSON output.
type Formatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *Formatter {
	return &Formatter{Format: string(opts.Format), Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}
}

// Response is the standard JSON envelope for CLI output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error payload of a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success emits data. In JSON mode the envelope is printed; in text mode
// the render function runs, or a plain "ok" line when none is given.
func (f *Formatter) Success(data any, text func(io.Writer)) error {
	if f.Format == "json" {
		return f.emit(Response{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, "ok")
	return err
}

// Fail emits an error payload and returns an ExitError with the given code.
func (f *Formatter) Fail(exitCode int, errCode, message string, details any) error {
	if f.Format == "json" {
		if err := f.emit(Response{Status: "error", Error: &ResponseError{Code: errCode, Message: message, Details: details}}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %s\n", message)
		if details != nil {
			fmt.Fprintf(f.Writer, "  %v\n", details)
		}
	}
	return &ExitError{Code: exitCode, Message: fmt.Sprintf("%s: %s", errCode, message)}
}

// VerboseLog writes a diagnostic line when verbose mode is on.
func (f *Formatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *Formatter) emit(resp Response) error {
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = fmt.Fprintln(f.Writer, string(raw))
	return err
}
