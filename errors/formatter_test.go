package errors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/parser"
)

const source = `date:202501
MEAL
lunch
30 noodles
snacks
5 chips
`

func invalidChild() ledger.Diagnostic {
	return ledger.Diagnostic{
		Severity: ledger.SeverityError,
		Code:     ledger.CodeInvalidChild,
		Pos:      ast.Position{Filename: "bills.txt", Line: 5},
		Message:  `invalid sub-category "snacks" for parent "MEAL"`,
	}
}

func TestTextFormatterWithoutSource(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, `bills.txt:5: invalid sub-category "snacks" for parent "MEAL"`, tf.Format(invalidChild()))
}

func TestTextFormatterWithSource(t *testing.T) {
	tf := NewTextFormatter(WithSource([]byte(source)))

	expected := `bills.txt:5: invalid sub-category "snacks" for parent "MEAL"

   3 | lunch
   4 | 30 noodles
 > 5 | snacks
   6 | 5 chips
`
	assert.Equal(t, expected, tf.Format(invalidChild()))
}

func TestTextFormatterWarning(t *testing.T) {
	d := ledger.Diagnostic{
		Severity: ledger.SeverityWarning,
		Code:     ledger.CodeEmptySubCategory,
		Pos:      ast.Position{Filename: "bills.txt", Line: 3},
		Message:  `sub-category "lunch" has no transactions`,
	}
	assert.Equal(t, `bills.txt:3: warning: sub-category "lunch" has no transactions`, NewTextFormatter().Format(d))
}

func TestTextFormatterPlainError(t *testing.T) {
	tf := NewTextFormatter(WithSource([]byte(source)))
	assert.Equal(t, "boom", tf.Format(fmt.Errorf("boom")))
}

func TestTextFormatterFormatAll(t *testing.T) {
	tf := NewTextFormatter()
	pe := parser.NewParseError("bills.txt", &parser.ReduceError{Kind: parser.ReduceEmpty, Line: 4})

	output := tf.FormatAll([]error{invalidChild(), pe})
	expected := `bills.txt:5: invalid sub-category "snacks" for parent "MEAL"

bills.txt:4: empty amount expression`
	assert.Equal(t, expected, output)
	assert.Equal(t, "", tf.FormatAll(nil))
}

func TestSourceContext(t *testing.T) {
	assert.Equal(t, " > 1 | date:202501\n   2 | MEAL\n   3 | lunch\n", SourceContext([]byte(source), 1))
	assert.Equal(t, "", SourceContext([]byte(source), 0))
	assert.Equal(t, "", SourceContext([]byte(source), 99))
}

func TestSourceContextGutterWidth(t *testing.T) {
	var src string
	for i := 1; i <= 12; i++ {
		src += fmt.Sprintf("line %d\n", i)
	}
	expected := "    8 | line 8\n" +
		"    9 | line 9\n" +
		" > 10 | line 10\n" +
		"   11 | line 11\n" +
		"   12 | line 12\n"
	assert.Equal(t, expected, SourceContext([]byte(src), 10))
}

func TestJSONFormatter(t *testing.T) {
	jf := NewJSONFormatter()

	got := jf.ToJSON(invalidChild())
	assert.Equal(t, ErrorJSON{
		Type:     "diagnostic",
		Severity: "error",
		Code:     "invalid-child",
		Message:  `invalid sub-category "snacks" for parent "MEAL"`,
		Position: &PositionJSON{Filename: "bills.txt", Line: 5},
	}, got)

	pe := parser.NewParseError("bills.txt", &parser.ReduceError{Kind: parser.ReduceInvalidNumber, Expr: "4/2", Token: "/2", Line: 7})
	got = jf.ToJSON(pe)
	assert.Equal(t, "parse", got.Type)
	assert.Equal(t, `invalid number "/2" in amount expression "4/2"`, got.Message)
	assert.Equal(t, 7, got.Position.Line)

	got = jf.ToJSON(fmt.Errorf("boom"))
	assert.Equal(t, ErrorJSON{Type: "error", Severity: "error", Message: "boom"}, got)
}

func TestJSONFormatterFormatAll(t *testing.T) {
	jf := NewJSONFormatter()
	output := jf.FormatAll(Diagnostics(ledger.Diagnostics{invalidChild()}))

	var decoded []ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.Equal(t, 1, len(decoded))
	assert.Equal(t, "invalid-child", decoded[0].Code)
}
