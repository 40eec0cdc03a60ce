package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/billtext/ast"
)

type markdown struct{}

func (markdown) Name() string      { return "markdown" }
func (markdown) Extension() string { return ".md" }

func (markdown) Render(w io.Writer, docs []*ast.Document) error {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s\n\n", mdEscape(title(doc)))
		if doc.Remark != "" {
			fmt.Fprintf(&sb, "> %s\n\n", mdEscape(doc.Remark))
		}

		mdTable(&sb, summaryHeader, [][]string{summaryRow(doc)}, []bool{true, true, true})

		for _, parent := range doc.Parents {
			fmt.Fprintf(&sb, "\n## %s (%s)\n\n", mdEscape(parent.Title), parent.Subtotal.StringFixed(2))
			mdTable(&sb, transactionHeader, transactionRows(parent), []bool{false, false, true, false})
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// mdTable writes a pipe table with columns padded to equal cell width.
func mdTable(sb *strings.Builder, header []string, rows [][]string, right []bool) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, runewidth.StringWidth(h))
	}
	escaped := make([][]string, len(rows))
	for r, row := range rows {
		escaped[r] = make([]string, len(row))
		for i, cell := range row {
			escaped[r][i] = mdEscape(cell)
			widths[i] = max(widths[i], runewidth.StringWidth(escaped[r][i]))
		}
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			if right[i] {
				cell = runewidth.FillLeft(cell, widths[i])
			} else {
				cell = runewidth.FillRight(cell, widths[i])
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sb.WriteString("|")
	for i, w := range widths {
		if right[i] {
			sb.WriteString(" " + strings.Repeat("-", w-1) + ": |")
		} else {
			sb.WriteString(" " + strings.Repeat("-", w) + " |")
		}
	}
	sb.WriteString("\n")
	for _, row := range escaped {
		writeRow(row)
	}
}

var mdReplacer = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}
