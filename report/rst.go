package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/billtext/ast"
)

type rst struct{}

func (rst) Name() string      { return "rst" }
func (rst) Extension() string { return ".rst" }

func (rst) Render(w io.Writer, docs []*ast.Document) error {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		rstHeading(&sb, title(doc), '=')
		if doc.Remark != "" {
			fmt.Fprintf(&sb, "%s\n\n", rstEscape(doc.Remark))
		}

		rstListTable(&sb, summaryHeader, [][]string{summaryRow(doc)})

		for _, parent := range doc.Parents {
			sb.WriteString("\n")
			rstHeading(&sb, fmt.Sprintf("%s (%s)", parent.Title, parent.Subtotal.StringFixed(2)), '-')
			rstListTable(&sb, transactionHeader, transactionRows(parent))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// rstHeading underlines text; the underline must cover its display width.
func rstHeading(sb *strings.Builder, text string, mark byte) {
	text = rstEscape(text)
	fmt.Fprintf(sb, "%s\n%s\n\n", text, strings.Repeat(string(mark), runewidth.StringWidth(text)))
}

func rstListTable(sb *strings.Builder, header []string, rows [][]string) {
	sb.WriteString(".. list-table::\n   :header-rows: 1\n\n")
	for _, row := range append([][]string{header}, rows...) {
		for i, cell := range row {
			bullet := "     -"
			if i == 0 {
				bullet = "   * -"
			}
			if cell == "" {
				sb.WriteString(bullet + "\n")
				continue
			}
			fmt.Fprintf(sb, "%s %s\n", bullet, rstEscape(cell))
		}
	}
}

var rstReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, "`", "\\`", `|`, `\|`, `_`, `\_`)

func rstEscape(s string) string {
	return rstReplacer.Replace(s)
}
