package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gwright/bitemporal"
	"github.com/gwright/bitemporal/temporal"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain rejection (scope overlap, invalid revision, etc.)
	ExitCommandError = 2 // Command error (missing flags, bad database path, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`               // "SCOPE_OVERLAP", "INVALID_REVISION", etc.
	Message string `json:"message"`            // human-readable message
	Entity  string `json:"entity,omitempty"`   // entity type involved
	Record  string `json:"record,omitempty"`   // record ID involved
}

// RecordView is the JSON projection of one version record.
type RecordView struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Attrs   bitemporal.Attrs `json:"attrs"`
	Valid   string           `json:"valid"`
	TX      string           `json:"tx"`
	Active  bool             `json:"active"`
	VTBegin temporal.Instant `json:"vt_begin"`
	VTEnd   temporal.Instant `json:"vt_end"`
	TTBegin temporal.Instant `json:"tt_begin"`
	TTEnd   temporal.Instant `json:"tt_end"`
}

// NewRecordView builds the output projection of a record.
func NewRecordView(rec *bitemporal.Record) RecordView {
	return RecordView{
		ID:      rec.ID,
		Type:    rec.Type.Name,
		Attrs:   rec.Attrs,
		Valid:   rec.ValidInterval().String(),
		TX:      rec.TransactionInterval().String(),
		Active:  rec.IsActive(),
		VTBegin: rec.VTBegin,
		VTEnd:   rec.VTEnd,
		TTBegin: rec.TTBegin,
		TTEnd:   rec.TTEnd,
	}
}

// NewRecordViews builds output projections for a slice of records.
func NewRecordViews(recs []*bitemporal.Record) []RecordView {
	views := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, NewRecordView(rec))
	}
	return views
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Records outputs a list of version records in the configured format.
func (f *OutputFormatter) Records(recs []*bitemporal.Record) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   NewRecordViews(recs),
		})
	}
	if len(recs) == 0 {
		fmt.Fprintln(f.Writer, "(no versions)")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintln(f.Writer, rec.String())
	}
	return nil
}

// Error outputs an error in the configured format. Domain errors carry
// their own code; anything else reports as INTERNAL.
func (f *OutputFormatter) Error(err error) error {
	cliErr := &CLIError{Code: "INTERNAL", Message: err.Error()}
	var domErr *bitemporal.Error
	if errors.As(err, &domErr) {
		cliErr.Code = string(domErr.Code)
		cliErr.Message = domErr.Message
		cliErr.Entity = domErr.Entity
		cliErr.Record = domErr.RecordID
	}

	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  cliErr,
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", cliErr.Code, cliErr.Message)
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, diagnostics go to ErrWriter to avoid corrupting
// the JSON stream.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
