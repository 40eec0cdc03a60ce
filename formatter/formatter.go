// Package formatter writes documents back out as canonical bill text.
//
// Output is stable: amounts carry an explicit sign and two decimals, and
// descriptions and comments line up in columns within each document. Column
// widths are measured in terminal cells, so CJK descriptions align too.
//
//	date:202501
//	remark:January
//
//	INCOME
//
//	salary
//	+8000.00  january pay
//
//	MEAL
//
//	lunch
//	-24.00    coffee   // with Bob
//	-30.00    noodles
package formatter

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/billtext/ast"
)

const (
	// MinimumSpacing is the minimum number of spaces between columns.
	MinimumSpacing = 2

	remarkPrefix = "remark:"
	datePrefix   = "date:"
	commentMark  = "// "
)

// Formatter renders documents as bill text.
type Formatter struct {
	// DescriptionColumn is the cell column descriptions start at. If 0 it is
	// derived from the widest amount in each document.
	DescriptionColumn int

	// CommentColumn is the cell column comments start at. If 0 it is derived
	// from the widest description in each document.
	CommentColumn int

	// PreserveExpressions writes amounts as the expressions they were
	// reduced from, where known, instead of reduced values.
	PreserveExpressions bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithDescriptionColumn fixes the description column.
func WithDescriptionColumn(col int) Option {
	return func(f *Formatter) {
		f.DescriptionColumn = col
	}
}

// WithCommentColumn fixes the comment column.
func WithCommentColumn(col int) Option {
	return func(f *Formatter) {
		f.CommentColumn = col
	}
}

// WithPreserveExpressions keeps amount expressions as written.
func WithPreserveExpressions() Option {
	return func(f *Formatter) {
		f.PreserveExpressions = true
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format writes every document, separated by a blank line.
func (f *Formatter) Format(docs []*ast.Document, w io.Writer) error {
	var buf strings.Builder
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		f.writeDocument(&buf, doc)
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatDocument writes a single document.
func (f *Formatter) FormatDocument(doc *ast.Document, w io.Writer) error {
	return f.Format([]*ast.Document{doc}, w)
}

// String returns the formatted documents.
func (f *Formatter) String(docs ...*ast.Document) string {
	var sb strings.Builder
	_ = f.Format(docs, &sb)
	return sb.String()
}

// columns holds the per-document alignment.
type columns struct {
	description int
	comment     int
}

func (f *Formatter) measure(doc *ast.Document) columns {
	amountWidth, descWidth := 0, 0
	doc.Walk(func(_ *ast.ParentCategory, _ *ast.SubCategory, txn *ast.Transaction) {
		amountWidth = max(amountWidth, runewidth.StringWidth(f.amount(txn)))
		if txn.HasComment() {
			descWidth = max(descWidth, runewidth.StringWidth(txn.Description))
		}
	})

	cols := columns{description: f.DescriptionColumn, comment: f.CommentColumn}
	if cols.description == 0 {
		cols.description = amountWidth + MinimumSpacing
	}
	if cols.comment == 0 {
		cols.comment = cols.description + descWidth + MinimumSpacing
	}
	return cols
}

func (f *Formatter) writeDocument(buf *strings.Builder, doc *ast.Document) {
	if doc.Date != "" {
		buf.WriteString(datePrefix + doc.Date + "\n")
	}
	if doc.Remark != "" {
		buf.WriteString(remarkPrefix + doc.Remark + "\n")
	}
	for _, m := range doc.Metadata {
		buf.WriteString(strings.TrimRight(m.Key+": "+m.Value, " ") + "\n")
	}

	cols := f.measure(doc)
	for _, parent := range doc.Parents {
		buf.WriteString("\n" + parent.Title + "\n")
		for _, child := range parent.Children {
			buf.WriteString("\n" + child.Title + "\n")
			for _, txn := range child.Transactions {
				f.writeTransaction(buf, txn, cols)
			}
		}
	}
}

func (f *Formatter) writeTransaction(buf *strings.Builder, txn *ast.Transaction, cols columns) {
	var line strings.Builder
	line.WriteString(f.amount(txn))

	if txn.Description != "" {
		pad(&line, cols.description)
		line.WriteString(txn.Description)
	}
	if txn.HasComment() {
		pad(&line, cols.comment)
		line.WriteString(commentMark + txn.Comment)
	}

	buf.WriteString(strings.TrimRight(line.String(), " "))
	buf.WriteByte('\n')
}

// pad extends line with spaces up to col cells, keeping at least one space.
func pad(line *strings.Builder, col int) {
	n := col - runewidth.StringWidth(line.String())
	if n < 1 {
		n = 1
	}
	line.WriteString(strings.Repeat(" ", n))
}

func (f *Formatter) amount(txn *ast.Transaction) string {
	if f.PreserveExpressions && txn.Expr != "" {
		return txn.Expr
	}
	if txn.Amount.IsNegative() {
		return txn.Amount.StringFixed(2)
	}
	return "+" + txn.Amount.StringFixed(2)
}
