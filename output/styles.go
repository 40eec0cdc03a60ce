// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
)

// ANSI palette indexes.
const (
	red    = "1"
	green  = "2"
	yellow = "3"
)

// Styles renders bill summaries and timing reports. Colors are dropped
// automatically when the writer is not a terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, code string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(code))
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.color(text, yellow).Bold().String()
}

// Category returns a styled parent or sub-category title (yellow).
func (s *Styles) Category(text string) string {
	return s.color(text, yellow).String()
}

// Amount styles a monetary amount by sign: income green, expense red,
// zero dimmed.
func (s *Styles) Amount(d decimal.Decimal) string {
	text := d.StringFixed(2)
	switch d.Sign() {
	case 1:
		return s.Income(text)
	case -1:
		return s.Expense(text)
	}
	return s.Dim(text)
}

// Income returns a styled income string (green).
func (s *Styles) Income(text string) string {
	return s.color(text, green).String()
}

// Expense returns a styled expense string (red).
func (s *Styles) Expense(text string) string {
	return s.color(text, red).String()
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text for secondary information such as timings.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}
