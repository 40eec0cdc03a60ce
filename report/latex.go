package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
)

type latex struct{}

func (latex) Name() string      { return "latex" }
func (latex) Extension() string { return ".tex" }

// Render writes a body fragment meant to be \input into a document that
// loads no extra packages.
func (latex) Render(w io.Writer, docs []*ast.Document) error {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "\\section*{%s}\n", texEscape(title(doc)))
		if doc.Remark != "" {
			fmt.Fprintf(&sb, "%s\\par\n", texEscape(doc.Remark))
		}

		texTable(&sb, "rrr", summaryHeader, [][]string{summaryRow(doc)})

		for _, parent := range doc.Parents {
			fmt.Fprintf(&sb, "\n\\subsection*{%s (%s)}\n", texEscape(parent.Title), parent.Subtotal.StringFixed(2))
			texTable(&sb, "llrl", transactionHeader, transactionRows(parent))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func texTable(sb *strings.Builder, cols string, header []string, rows [][]string) {
	fmt.Fprintf(sb, "\\begin{tabular}{%s}\n\\hline\n", cols)
	texRow(sb, header)
	sb.WriteString("\\hline\n")
	for _, row := range rows {
		texRow(sb, row)
	}
	sb.WriteString("\\hline\n\\end{tabular}\n")
}

func texRow(sb *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(" & ")
		}
		sb.WriteString(texEscape(cell))
	}
	sb.WriteString(` \\` + "\n")
}

var texReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func texEscape(s string) string {
	return texReplacer.Replace(s)
}
