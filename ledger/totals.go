package ledger

import (
	"github.com/robinvdvleuten/billtext/ast"
	"github.com/shopspring/decimal"
)

// Summarize computes every subtotal of doc and its income, expense and
// balance totals. It is safe to call repeatedly.
func Summarize(doc *ast.Document) {
	income, expense := decimal.Zero, decimal.Zero

	for _, parent := range doc.Parents {
		parentTotal := decimal.Zero
		for _, child := range parent.Children {
			childTotal := decimal.Zero
			for _, txn := range child.Transactions {
				childTotal = childTotal.Add(txn.Amount)
				if txn.Amount.IsNegative() {
					expense = expense.Add(txn.Amount)
				} else {
					income = income.Add(txn.Amount)
				}
			}
			child.Subtotal = childTotal
			parentTotal = parentTotal.Add(childTotal)
		}
		parent.Subtotal = parentTotal
	}

	doc.TotalIncome = income
	doc.TotalExpense = expense
	doc.Balance = income.Add(expense)
}
