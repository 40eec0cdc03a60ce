package ast

import (
	"github.com/shopspring/decimal"
)

// Source records where a transaction came from.
type Source uint8

const (
	// SourceManual transactions were written in the bill file.
	SourceManual Source = iota
	// SourceAutoRenewal transactions were injected from a renewal rule.
	SourceAutoRenewal
)

func (s Source) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourceAutoRenewal:
		return "auto_renewal"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Kind classifies a transaction as income or expense. It is derived from the
// sign of the amount and never stored.
type Kind uint8

const (
	KindIncome Kind = iota
	KindExpense
)

func (k Kind) String() string {
	if k == KindExpense {
		return "expense"
	}
	return "income"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindOf returns KindIncome for non-negative amounts and KindExpense otherwise.
func KindOf(amount decimal.Decimal) Kind {
	if amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Transaction is a single content line: a signed amount rounded to two
// decimal places, a description and an optional trailing comment.
//
// Example:
//
//	30*2 dinner with family // birthday
type Transaction struct {
	Pos         Position
	Amount      decimal.Decimal
	Expr        string // expression as written, empty for injected entries
	Description string
	Comment     string
	Source      Source
}

// Kind reports whether the transaction is income or expense.
func (t *Transaction) Kind() Kind {
	return KindOf(t.Amount)
}

// HasComment reports whether the source line carried a // comment.
func (t *Transaction) HasComment() bool {
	return t.Comment != ""
}
