package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
)

type typst struct{}

func (typst) Name() string      { return "typst" }
func (typst) Extension() string { return ".typ" }

func (typst) Render(w io.Writer, docs []*ast.Document) error {
	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "= %s\n\n", typstEscape(title(doc)))
		if doc.Remark != "" {
			fmt.Fprintf(&sb, "%s\n\n", typstEscape(doc.Remark))
		}

		typstTable(&sb, "(right, right, right)", summaryHeader, [][]string{summaryRow(doc)})

		for _, parent := range doc.Parents {
			fmt.Fprintf(&sb, "\n== %s (%s)\n\n", typstEscape(parent.Title), parent.Subtotal.StringFixed(2))
			typstTable(&sb, "(left, left, right, left)", transactionHeader, transactionRows(parent))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func typstTable(sb *strings.Builder, align string, header []string, rows [][]string) {
	fmt.Fprintf(sb, "#table(\n  columns: %d,\n  align: %s,\n", len(header), align)
	typstRow(sb, header, true)
	for _, row := range rows {
		typstRow(sb, row, false)
	}
	sb.WriteString(")\n")
}

func typstRow(sb *strings.Builder, cells []string, strong bool) {
	sb.WriteString(" ")
	for _, cell := range cells {
		cell = typstEscape(cell)
		if strong {
			cell = "*" + cell + "*"
		}
		fmt.Fprintf(sb, " [%s],", cell)
	}
	sb.WriteString("\n")
}

var typstReplacer = strings.NewReplacer(
	`\`, `\\`, `[`, `\[`, `]`, `\]`, `#`, `\#`, `*`, `\*`, `_`, `\_`,
	`$`, `\$`, `@`, `\@`, `<`, `\<`, "`", "\\`", `=`, `\=`,
)

func typstEscape(s string) string {
	return typstReplacer.Replace(s)
}
