package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/autoedit/internal/editor"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected (unknown id, invalid body)
	ExitCommandError = 2 // Command error (bad config, unreadable document, unreachable database)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeInvalid  = "E001" // malformed id or body, schema violation
	ErrCodeNotFound = "E002" // no record with the requested id
	ErrCodeConfig   = "E003" // configuration could not be loaded or is incomplete
	ErrCodeStorage  = "E004" // document or trace store failure
	ErrCodeBus      = "E005" // service bus failure
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	return f.Render(data, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, data)
		return err
	})
}

// Render writes data inside an indented CLIResponse in JSON mode, and
// delegates to text otherwise.
func (f *OutputFormatter) Render(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	return text(f.Writer)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports an error in the configured format and returns the matching
// ExitError.
func (f *OutputFormatter) Fail(code string, exitCode int, message string, err error) error {
	full := message
	if err != nil {
		full = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, full, nil)
	return WrapExitError(exitCode, message, err)
}

// FailEditor reports an editor error, classifying it by sentinel.
func (f *OutputFormatter) FailEditor(message string, err error) error {
	switch {
	case errors.Is(err, editor.ErrNotFound):
		return f.Fail(ErrCodeNotFound, ExitFailure, message, err)
	case errors.Is(err, editor.ErrInvalid):
		return f.Fail(ErrCodeInvalid, ExitFailure, message, err)
	default:
		return f.Fail(ErrCodeStorage, ExitCommandError, message, err)
	}
}
