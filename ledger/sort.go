package ledger

import (
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
	"golang.org/x/exp/slices"
)

// SortAndPrune orders doc deterministically and drops empty branches.
//
// Transactions are sorted by amount, largest first, keeping input order for
// equal amounts. Parents are sorted by subtotal, largest first, then by
// title. Sorting happens before pruning; pruning removes sub-categories
// without transactions and then parents left without sub-categories.
// Sub-categories keep their input order.
//
// It returns the number of sub-categories and parents removed.
func SortAndPrune(doc *ast.Document) (children, parents int) {
	Summarize(doc)

	for _, parent := range doc.Parents {
		for _, child := range parent.Children {
			slices.SortStableFunc(child.Transactions, func(a, b *ast.Transaction) int {
				return b.Amount.Cmp(a.Amount)
			})
		}
	}

	slices.SortStableFunc(doc.Parents, func(a, b *ast.ParentCategory) int {
		if c := b.Subtotal.Cmp(a.Subtotal); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	keptParents := doc.Parents[:0]
	for _, parent := range doc.Parents {
		keptChildren := parent.Children[:0]
		for _, child := range parent.Children {
			if len(child.Transactions) == 0 {
				children++
				continue
			}
			keptChildren = append(keptChildren, child)
		}
		clear(parent.Children[len(keptChildren):])
		parent.Children = keptChildren

		if len(parent.Children) == 0 {
			parents++
			continue
		}
		keptParents = append(keptParents, parent)
	}
	clear(doc.Parents[len(keptParents):])
	doc.Parents = keptParents

	return children, parents
}
