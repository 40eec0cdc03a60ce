// Package errors renders bill diagnostics and hard failures for different
// consumers. Domain error types stay in the parser and ledger packages; this
// package only handles presentation.
//
// Two formatters are provided:
//   - TextFormatter: plain text for terminals and logs, optionally with the
//     surrounding source lines
//   - JSONFormatter: structured records for the web API and editor tooling
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/parser"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// positioned is implemented by ledger.Diagnostic and parser.ParseError.
type positioned interface {
	GetPosition() ast.Position
	Error() string
}

// contextLines is how many lines are shown before and after the offending one.
const contextLines = 2

// TextFormatter formats errors as "file:line: message", followed by source
// context when the source is known.
type TextFormatter struct {
	source []byte
}

// TextFormatterOption configures a TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the bill source used for context lines.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Warnings are prefixed with "warning:".
func (tf *TextFormatter) Format(err error) string {
	e, ok := err.(positioned)
	if !ok {
		return err.Error()
	}

	message := e.Error()
	if d, ok := e.(ledger.Diagnostic); ok && !d.IsError() {
		message = fmt.Sprintf("%s: warning: %s", d.Pos, d.Message)
	}

	pos := e.GetPosition()
	if tf.source == nil || pos.IsZero() {
		return message
	}
	return message + "\n\n" + SourceContext(tf.source, pos.Line)
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(strings.TrimRight(tf.Format(err), "\n"))
		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}
	return buf.String()
}

// SourceContext returns the lines around line (1-indexed) with a line number
// gutter. The offending line is marked with ">".
func SourceContext(source []byte, line int) string {
	lines := strings.Split(strings.TrimSuffix(string(source), "\n"), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	start := max(line-contextLines, 1)
	end := min(line+contextLines, len(lines))
	width := len(strconv.Itoa(end))

	var buf strings.Builder
	for i := start; i <= end; i++ {
		marker := " "
		if i == line {
			marker = ">"
		}
		text := strings.TrimRight(lines[i-1], "\r")
		fmt.Fprintf(&buf, " %s %*d | %s\n", marker, width, i, text)
	}
	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string        `json:"type"`
	Severity string        `json:"severity"`
	Code     string        `json:"code,omitempty"`
	Message  string        `json:"message"`
	Position *PositionJSON `json:"position,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.ToJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.ToJSON(err))
	}
	return result
}

// ToJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:     "error",
		Severity: ledger.SeverityError.String(),
		Message:  err.Error(),
	}

	switch e := err.(type) {
	case ledger.Diagnostic:
		errJSON.Type = "diagnostic"
		errJSON.Severity = e.Severity.String()
		errJSON.Code = string(e.Code)
		errJSON.Message = e.Message
		errJSON.Position = positionJSON(e.Pos)
	case *parser.ParseError:
		errJSON.Type = "parse"
		errJSON.Message = e.Message
		errJSON.Position = positionJSON(e.Pos)
	case *ledger.RejectedError:
		errJSON.Type = "rejected"
	}

	return errJSON
}

func positionJSON(pos ast.Position) *PositionJSON {
	if pos.IsZero() && pos.Filename == "" {
		return nil
	}
	return &PositionJSON{Filename: pos.Filename, Line: pos.Line}
}

// Diagnostics converts diagnostics to a slice of errors for the formatters.
func Diagnostics(ds ledger.Diagnostics) []error {
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errs
}
