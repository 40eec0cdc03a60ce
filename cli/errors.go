package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/errors"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/loader"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
}

// NewErrorRenderer creates a renderer with source content for context.
func NewErrorRenderer(source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	e, ok := err.(interface {
		GetPosition() ast.Position
		Error() string
	})
	if !ok {
		return errorStyle.Render(err.Error())
	}

	message := errorStyle.Render(e.Error())
	if d, ok := e.(ledger.Diagnostic); ok && !d.IsError() {
		message = warningStyle.Render(fmt.Sprintf("%s: warning: %s", d.Pos, d.Message))
	}

	pos := e.GetPosition()
	if r.source == nil || pos.IsZero() {
		return message
	}

	snippet := errors.SourceContext(r.source, pos.Line)
	if snippet == "" {
		return message
	}

	var buf strings.Builder
	buf.WriteString(message)
	buf.WriteString("\n\n")
	for _, line := range strings.SplitAfter(strings.TrimSuffix(snippet, "\n"), "\n") {
		text := strings.TrimSuffix(line, "\n")
		if strings.HasPrefix(text, " >") {
			buf.WriteString(errCaretStyle.Render(text))
		} else {
			buf.WriteString(errContextStyle.Render(text))
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(strings.TrimRight(r.Render(err), "\n"))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// reportFile prints a file's diagnostics, or its hard failure, to w. It
// returns the exit code the file warrants: 0, ExitRejected or ExitFailure.
func reportFile(w io.Writer, file *loader.File, err error, source []byte) int {
	renderer := NewErrorRenderer(source)

	if err != nil {
		_, _ = fmt.Fprintln(w, renderer.Render(err))
		_, _ = fmt.Fprintln(w)
		printError(w, "bill could not be processed")
		return ExitFailure
	}

	diags := file.Result.Diagnostics
	if len(diags) == 0 {
		return 0
	}

	_, _ = fmt.Fprintln(w, renderer.RenderAll(errors.Diagnostics(diags)))
	_, _ = fmt.Fprintln(w)

	errs, warnings := len(diags.Errors()), len(diags.Warnings())
	if errs == 0 {
		printWarning(w, fmt.Sprintf("%d warning(s) in %s", warnings, file.Filename))
		return 0
	}
	printError(w, fmt.Sprintf("%d error(s), %d warning(s) in %s", errs, warnings, file.Filename))
	return ExitRejected
}
