package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/robinvdvleuten/billtext/ast"
)

// Severity of a diagnostic. Errors make a document unfit for import;
// warnings are informational.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code identifies the structural rule a diagnostic reports on.
type Code string

const (
	CodeMissingDate            Code = "missing-date"
	CodeMalformedDate          Code = "malformed-date"
	CodeInvalidMonth           Code = "invalid-month"
	CodeMisplacedRemark        Code = "misplaced-remark"
	CodeMisplacedMetadata      Code = "misplaced-metadata"
	CodeInvalidParent          Code = "invalid-parent"
	CodeChildWithoutParent     Code = "child-without-parent"
	CodeInvalidChild           Code = "invalid-child"
	CodeContentOutsideCategory Code = "content-outside-category"
	CodeEmptySubCategory       Code = "empty-sub-category"
	CodeUnrecognizedLine       Code = "unrecognized-line"
)

// Diagnostic is a structural problem found while validating a bill. It is
// data, not a failure: validation always runs to the end of the input and
// returns every diagnostic it found.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Pos      ast.Position
	Message  string
}

func newError(code Code, pos ast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func newWarning(code Code, pos ast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error formats the diagnostic as "filename:line: message".
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

func (d Diagnostic) GetPosition() ast.Position {
	return d.Pos
}

// IsError reports whether the diagnostic has error severity.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// MarshalJSON emits {line_number, severity, code, message[, filename]}.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line     int      `json:"line_number"`
		Severity Severity `json:"severity"`
		Code     Code     `json:"code"`
		Message  string   `json:"message"`
		Filename string   `json:"filename,omitempty"`
	}{d.Pos.Line, d.Severity, d.Code, d.Message, d.Pos.Filename})
}

// Diagnostics is an ordered diagnostic list.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics.
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics.
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(SeverityWarning)
}

func (ds Diagnostics) filter(s Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// RejectedError is returned when a bill carrying error diagnostics is
// refused as a whole, for example on import.
type RejectedError struct {
	Filename    string
	Diagnostics Diagnostics
}

func (e *RejectedError) Error() string {
	name := e.Filename
	if name == "" {
		name = "bill"
	}
	if len(e.Diagnostics) == 1 {
		return fmt.Sprintf("%s rejected: %s", name, e.Diagnostics[0].Error())
	}
	return fmt.Sprintf("%s rejected: %d errors", name, len(e.Diagnostics))
}

// Unwrap returns the error diagnostics for errors.As.
func (e *RejectedError) Unwrap() []error {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}
	return errs
}
