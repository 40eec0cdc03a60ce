package report

import (
	"github.com/robinvdvleuten/billtext/ast"
)

const periodTitleLayout = "January 2006"

// title is the heading of a document, for example "Bills January 2025".
func title(doc *ast.Document) string {
	period, err := doc.Period()
	if err != nil {
		if doc.Date == "" {
			return "Bills (undated)"
		}
		return "Bills " + doc.Date
	}
	return "Bills " + period.Format(periodTitleLayout)
}

var (
	summaryHeader     = []string{"Income", "Expense", "Balance"}
	transactionHeader = []string{"Sub-category", "Description", "Amount", "Comment"}
)

func summaryRow(doc *ast.Document) []string {
	return []string{
		doc.TotalIncome.StringFixed(2),
		doc.TotalExpense.StringFixed(2),
		doc.Balance.StringFixed(2),
	}
}

// transactionRows flattens a parent's transactions in document order.
func transactionRows(parent *ast.ParentCategory) [][]string {
	var rows [][]string
	for _, child := range parent.Children {
		for _, txn := range child.Transactions {
			rows = append(rows, []string{child.Title, txn.Description, txn.Amount.StringFixed(2), txn.Comment})
		}
	}
	return rows
}
