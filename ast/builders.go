package ast

import (
	"github.com/shopspring/decimal"
)

// The builders below construct bill trees programmatically, for importers
// and tests. Complex nodes take functional options.

// DocumentOption configures a Document built by NewDocument.
type DocumentOption func(*Document)

// WithRemark sets the document remark.
func WithRemark(remark string) DocumentOption {
	return func(d *Document) {
		d.Remark = remark
	}
}

// WithMetadata appends key/value metadata entries.
func WithMetadata(m ...*Metadata) DocumentOption {
	return func(d *Document) {
		d.Metadata = append(d.Metadata, m...)
	}
}

// WithParents appends parent categories.
func WithParents(parents ...*ParentCategory) DocumentOption {
	return func(d *Document) {
		d.Parents = append(d.Parents, parents...)
	}
}

// NewDocument creates a document for the YYYYMM period.
//
// Example:
//
//	doc := ast.NewDocument("202501",
//	    ast.WithRemark("January"),
//	    ast.WithParents(
//	        ast.NewParent("MEAL",
//	            ast.NewChild("lunch", ast.NewTransaction("-30", "noodles")),
//	        ),
//	    ),
//	)
func NewDocument(date string, opts ...DocumentOption) *Document {
	d := &Document{Date: date}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewParent creates a parent category holding the given children.
func NewParent(title string, children ...*SubCategory) *ParentCategory {
	return &ParentCategory{Title: title, Children: children}
}

// NewChild creates a sub-category holding the given transactions.
func NewChild(title string, txns ...*Transaction) *SubCategory {
	return &SubCategory{Title: title, Transactions: txns}
}

// TransactionOption configures a Transaction built by NewTransaction.
type TransactionOption func(*Transaction)

// WithComment sets the trailing // comment.
func WithComment(comment string) TransactionOption {
	return func(t *Transaction) {
		t.Comment = comment
	}
}

// WithSource sets where the transaction came from.
func WithSource(source Source) TransactionOption {
	return func(t *Transaction) {
		t.Source = source
	}
}

// WithExpr records the expression text the amount was reduced from.
func WithExpr(expr string) TransactionOption {
	return func(t *Transaction) {
		t.Expr = expr
	}
}

// WithPosition sets the source position.
func WithPosition(pos Position) TransactionOption {
	return func(t *Transaction) {
		t.Pos = pos
	}
}

// NewTransaction creates a manual transaction. The amount must be a valid
// decimal string and is rounded to two places; it panics otherwise, so it is
// meant for literals.
func NewTransaction(amount, description string, opts ...TransactionOption) *Transaction {
	t := &Transaction{
		Amount:      decimal.RequireFromString(amount).Round(2),
		Description: description,
		Source:      SourceManual,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewMetadata creates a metadata entry.
func NewMetadata(key, value string) *Metadata {
	return &Metadata{Key: key, Value: value}
}
