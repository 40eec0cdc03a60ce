// Package ast declares the types used to represent parsed bill documents.
//
// A bill document is a three level tree: parent categories own sub-categories,
// which own transactions. The tree is produced by the ledger package from the
// classified lines of a bill file, and is handed to formatters, reports and
// storage as a value once processing has finished.
//
//	date:202501
//	remark:January
//	MEAL
//
//	lunch
//	30 noodles
//	12×2 coffee // with Bob
package ast

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout is the time layout of the date: header value (YYYYMM).
const PeriodLayout = "200601"

// Document is one dated section of a bill file.
type Document struct {
	Pos      Position
	Date     string // YYYYMM as written
	Remark   string
	Metadata []*Metadata
	Parents  []*ParentCategory

	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// Period parses Date into the first instant of its month.
func (d *Document) Period() (time.Time, error) {
	t, err := time.Parse(PeriodLayout, d.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid bill period %q: %w", d.Date, err)
	}
	return t, nil
}

// Parent returns the first parent category with the given title.
func (d *Document) Parent(title string) *ParentCategory {
	for _, p := range d.Parents {
		if p.Title == title {
			return p
		}
	}
	return nil
}

// MetadataValue returns the value of the first metadata entry with key.
func (d *Document) MetadataValue(key string) (string, bool) {
	for _, m := range d.Metadata {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Walk calls fn for every transaction in document order.
func (d *Document) Walk(fn func(p *ParentCategory, c *SubCategory, t *Transaction)) {
	for _, p := range d.Parents {
		for _, c := range p.Children {
			for _, t := range c.Transactions {
				fn(p, c, t)
			}
		}
	}
}

// TransactionCount returns the number of transactions in the document.
func (d *Document) TransactionCount() int {
	n := 0
	for _, p := range d.Parents {
		for _, c := range p.Children {
			n += len(c.Transactions)
		}
	}
	return n
}

// ParentCategory is a top-level bucket such as MEAL or INCOME.
// Invalid is set when the title is not part of the category rules.
type ParentCategory struct {
	Pos      Position
	Title    string
	Invalid  bool
	Subtotal decimal.Decimal
	Children []*SubCategory
}

// Child returns the first sub-category with the given title.
func (p *ParentCategory) Child(title string) *SubCategory {
	for _, c := range p.Children {
		if c.Title == title {
			return c
		}
	}
	return nil
}

// SubCategory is a lowercase subdivision of a parent category.
type SubCategory struct {
	Pos          Position
	Title        string
	Invalid      bool
	Subtotal     decimal.Decimal
	Transactions []*Transaction
}

// Metadata is a key: value header line accepted through configured prefixes.
type Metadata struct {
	Pos   Position
	Key   string
	Value string
}
