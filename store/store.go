// Package store persists imported bills. Imports are all-or-nothing: a batch
// of bill files is committed completely or not at all, and a file carrying
// any error diagnostic rejects the whole batch.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no bill is stored for a period.
var ErrNotFound = errors.New("bill not found")

// DuplicatePeriodError is returned when a period is already stored, or
// appears twice in one batch.
type DuplicatePeriodError struct {
	Period string
	Source string
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("period %s from %s is already stored", e.Period, e.Source)
}

// Bill is one stored month.
type Bill struct {
	ID           string            `json:"id"`
	BatchID      string            `json:"batch_id"`
	Source       string            `json:"source"`
	Period       string            `json:"period"`
	Remark       string            `json:"remark,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ImportedAt   time.Time         `json:"imported_at"`
	TotalIncome  decimal.Decimal   `json:"total_income"`
	TotalExpense decimal.Decimal   `json:"total_expense"`
	Balance      decimal.Decimal   `json:"balance"`
	Entries      []Entry           `json:"entries"`
}

// Entry is one stored transaction.
type Entry struct {
	Parent      string          `json:"parent"`
	SubCategory string          `json:"sub_category"`
	Description string          `json:"description"`
	Comment     string          `json:"comment,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
}

// NewBill converts a finished document into a stored bill.
func NewBill(source string, doc *ast.Document) *Bill {
	bill := &Bill{
		Source:       source,
		Period:       doc.Date,
		Remark:       doc.Remark,
		TotalIncome:  doc.TotalIncome,
		TotalExpense: doc.TotalExpense,
		Balance:      doc.Balance,
	}
	if len(doc.Metadata) > 0 {
		bill.Metadata = make(map[string]string, len(doc.Metadata))
		for _, m := range doc.Metadata {
			if _, ok := bill.Metadata[m.Key]; ok {
				continue
			}
			bill.Metadata[m.Key] = m.Value
		}
	}
	doc.Walk(func(p *ast.ParentCategory, c *ast.SubCategory, txn *ast.Transaction) {
		bill.Entries = append(bill.Entries, Entry{
			Parent:      p.Title,
			SubCategory: c.Title,
			Description: txn.Description,
			Comment:     txn.Comment,
			Amount:      txn.Amount,
			Source:      txn.Source.String(),
		})
	})
	return bill
}

// Store is a persistence backend for bills.
type Store interface {
	// Put stores bills atomically. Unless replace is set, a period that is
	// already stored fails the whole call with *DuplicatePeriodError.
	Put(ctx context.Context, bills []*Bill, replace bool) error
	Get(ctx context.Context, period string) (*Bill, error)
	// List returns all bills ordered by period.
	List(ctx context.Context) ([]*Bill, error)
	Delete(ctx context.Context, period string) error
}
