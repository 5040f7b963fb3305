package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aidanlsb/rnm/internal/plan"
)

// jsonOutput is set by the global --json flag.
var jsonOutput bool

// Response is the envelope every command writes in JSON mode.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed command.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal problem. Ref names the path, preset or batch it
// concerns.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// Meta carries counts and timing.
type Meta struct {
	Count     int   `json:"count,omitempty"`
	ElapsedMs int64 `json:"elapsed_ms,omitempty"`
}

// confirmDetails lists what an unconfirmed apply or undo would rename.
type confirmDetails struct {
	Batch   int64             `json:"batch,omitempty"`
	Items   []plan.RenameItem `json:"items"`
	Command string            `json:"command"`
}

func newWarning(code string, err error, ref string) Warning {
	return Warning{Code: code, Message: err.Error(), Ref: ref}
}

func isJSONOutput() bool {
	return jsonOutput
}

func writeResponse(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func outputSuccess(data interface{}, meta *Meta) {
	outputSuccessWithWarnings(data, nil, meta)
}

func outputSuccessWithWarnings(data interface{}, warnings []Warning, meta *Meta) {
	writeResponse(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

// failure is a command error tagged with its JSON code.
type failure struct {
	code       string
	err        error
	suggestion string
	details    interface{}
}

// report writes the failure as a JSON error and returns nil, so cobra prints
// nothing more, or returns it as a plain error in text mode.
func (f failure) report() error {
	if jsonOutput {
		writeResponse(Response{Error: &ErrorInfo{
			Code:       f.code,
			Message:    f.err.Error(),
			Details:    f.details,
			Suggestion: f.suggestion,
		}})
		return nil
	}
	if f.suggestion != "" {
		return fmt.Errorf("%w\n\n%s", f.err, f.suggestion)
	}
	return f.err
}

func handleError(code string, err error, suggestion string) error {
	return failure{code: code, err: err, suggestion: suggestion}.report()
}

func handleErrorMsg(code, message, suggestion string) error {
	return handleError(code, fmt.Errorf("%s", message), suggestion)
}

// handleConfirmRequired reports a rename that needs --confirm. The text form
// carries the re-run command too.
func handleConfirmRequired(message string, details confirmDetails) error {
	return failure{
		code:       ErrConfirmationRequired,
		err:        fmt.Errorf("%s", message),
		suggestion: "Re-run with --confirm to apply: " + details.Command,
		details:    details,
	}.report()
}
