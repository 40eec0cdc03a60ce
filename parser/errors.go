package parser

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/billtext/ast"
)

// ErrEmptyInput is returned when a bill source has no non-blank lines.
var ErrEmptyInput = errors.New("empty input: bill file has no content")

var (
	// ErrEmptyExpression matches a ReduceError of kind ReduceEmpty.
	ErrEmptyExpression = errors.New("empty expression")
	// ErrInvalidNumber matches a ReduceError of kind ReduceInvalidNumber.
	ErrInvalidNumber = errors.New("invalid number")
)

// ReduceErrorKind distinguishes the ways an amount expression can fail.
type ReduceErrorKind uint8

const (
	ReduceEmpty ReduceErrorKind = iota
	ReduceInvalidNumber
)

// ReduceError is returned by Reduce. Line is filled in by callers that know
// where the expression came from.
type ReduceError struct {
	Kind  ReduceErrorKind
	Expr  string // the expression as given
	Token string // offending factor for ReduceInvalidNumber
	Line  int
}

func (e *ReduceError) Error() string {
	var msg string
	switch e.Kind {
	case ReduceEmpty:
		msg = "empty amount expression"
	default:
		msg = fmt.Sprintf("invalid number %q in amount expression %q", e.Token, e.Expr)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// Unwrap allows errors.Is against ErrEmptyExpression and ErrInvalidNumber.
func (e *ReduceError) Unwrap() error {
	if e.Kind == ReduceEmpty {
		return ErrEmptyExpression
	}
	return ErrInvalidNumber
}

// InvalidUTF8Error is returned when a bill source is not valid UTF-8.
type InvalidUTF8Error struct {
	Line int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("line %d: invalid UTF-8 encoding", e.Line)
}

// ParseError is a hard failure tied to a file position. Hard failures abort
// processing and never come with a partial document.
type ParseError struct {
	Pos        ast.Position
	Message    string
	Underlying error
}

func (e *ParseError) Error() string {
	if e.Pos.Line == 0 {
		if e.Pos.Filename != "" {
			return fmt.Sprintf("%s: %s", e.Pos.Filename, e.Message)
		}
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// NewParseError attaches a filename and, where the error carries one, a line
// number to a hard failure.
func NewParseError(filename string, err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		pos := pe.Pos
		if pos.Filename == "" {
			pos.Filename = filename
		}
		return &ParseError{Pos: pos, Message: pe.Message, Underlying: pe.Underlying}
	}

	pos := ast.Position{Filename: filename}
	msg := err.Error()

	var re *ReduceError
	var ue *InvalidUTF8Error
	switch {
	case errors.As(err, &re):
		pos.Line = re.Line
		stripped := *re
		stripped.Line = 0
		msg = stripped.Error()
	case errors.As(err, &ue):
		pos.Line = ue.Line
		msg = "invalid UTF-8 encoding"
	}

	return &ParseError{Pos: pos, Message: msg, Underlying: err}
}
