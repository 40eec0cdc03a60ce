package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/ledger"
)

func documents(t *testing.T) []*ast.Document {
	t.Helper()
	rules := ledger.NewRules([]ledger.Category{{Parent: "MEAL", Children: []string{"lunch"}}})
	result, err := ledger.Process(context.Background(), rules,
		[]byte("date:202501\nremark:January\nMEAL\nlunch\n30 noodles // spicy\n12*2 coffee\n"))
	assert.NoError(t, err)
	return result.Documents
}

func render(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, name, documents(t)))
	return buf.String()
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"latex", "markdown", "rst", "typst"}, Names())
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("pdf")
	var uerr *UnknownFormatError
	assert.True(t, errors.As(err, &uerr))
	assert.Equal(t, "pdf", uerr.Name)
	assert.Contains(t, err.Error(), "markdown")
}

type fakeRenderer struct{ name string }

func (f fakeRenderer) Name() string                           { return f.name }
func (fakeRenderer) Extension() string                        { return ".txt" }
func (fakeRenderer) Render(io.Writer, []*ast.Document) error { return nil }

func TestRegisterPanics(t *testing.T) {
	assert.Panics(t, func() { Register(fakeRenderer{name: "markdown"}) })
	assert.Panics(t, func() { Register(fakeRenderer{}) })
}

func TestMarkdown(t *testing.T) {
	want := "# Bills January 2025\n\n" +
		"> January\n\n" +
		"| Income | Expense | Balance |\n" +
		"| -----: | ------: | ------: |\n" +
		"|   0.00 |  -54.00 |  -54.00 |\n" +
		"\n## MEAL (-54.00)\n\n" +
		"| Sub-category | Description | Amount | Comment |\n" +
		"| ------------ | ----------- | -----: | ------- |\n" +
		"| lunch        | coffee      | -24.00 |         |\n" +
		"| lunch        | noodles     | -30.00 | spicy   |\n"
	assert.Equal(t, want, render(t, "markdown"))
}

func TestLatex(t *testing.T) {
	out := render(t, "latex")
	assert.Contains(t, out, `\section*{Bills January 2025}`)
	assert.Contains(t, out, `\subsection*{MEAL (-54.00)}`)
	assert.Contains(t, out, `lunch & noodles & -30.00 & spicy \\`)
	assert.Equal(t, `50\% \& \$5 a\_b`, texEscape("50% & $5 a_b"))
}

func TestRST(t *testing.T) {
	out := render(t, "rst")
	assert.Contains(t, out, "Bills January 2025\n==================\n")
	assert.Contains(t, out, "MEAL (-54.00)\n-------------\n")
	assert.Contains(t, out, "   * - lunch\n     - noodles\n     - -30.00\n     - spicy\n")
	assert.Contains(t, out, "   * - lunch\n     - coffee\n     - -24.00\n     -\n")
}

func TestTypst(t *testing.T) {
	out := render(t, "typst")
	assert.Contains(t, out, "= Bills January 2025\n")
	assert.Contains(t, out, "== MEAL (-54.00)\n")
	assert.Contains(t, out, "  [lunch], [noodles], [-30.00], [spicy],\n")
	assert.Equal(t, `\#tag \[x\]`, typstEscape("#tag [x]"))
}

func TestUndatedTitle(t *testing.T) {
	assert.Equal(t, "Bills (undated)", title(ast.NewDocument("")))
	assert.Equal(t, "Bills 202513", title(ast.NewDocument("202513")))
}

func TestRendererExtensions(t *testing.T) {
	for _, name := range Names() {
		r, err := Lookup(name)
		assert.NoError(t, err)
		assert.Equal(t, name, r.Name())
		assert.NotZero(t, r.Extension())
	}
}
