package ledger

import (
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/shopspring/decimal"
)

// RenewalSuffix is appended to the description of injected transactions.
const RenewalSuffix = "(auto-renewal)"

// RenewalRule guarantees a recurring entry under a parent category, such as
// a monthly subscription that is easy to forget.
type RenewalRule struct {
	HeaderLocation string          // parent title
	Amount         decimal.Decimal // signed
	Description    string
}

// InjectRenewals adds a transaction for every rule whose parent exists in doc
// but holds no transaction mentioning the rule's description. It returns the
// number of transactions added.
//
// The entry goes to the parent's last sub-category. A parent without
// sub-categories gets the first sub-category rules allow for it; when rules
// allow none the rule is skipped.
//
// Because an injected description contains the rule description, a second
// run finds it and adds nothing.
func InjectRenewals(doc *ast.Document, rules *Rules, renewals []RenewalRule) int {
	added := 0
	for _, rule := range renewals {
		parent := doc.Parent(rule.HeaderLocation)
		if parent == nil || hasRenewal(parent, rule.Description) {
			continue
		}

		var target *ast.SubCategory
		if n := len(parent.Children); n > 0 {
			target = parent.Children[n-1]
		} else {
			allowed := rules.Children(parent.Title)
			if len(allowed) == 0 {
				continue
			}
			target = &ast.SubCategory{Title: allowed[0]}
			parent.Children = append(parent.Children, target)
		}

		target.Transactions = append(target.Transactions, &ast.Transaction{
			Amount:      rule.Amount.Round(2),
			Description: rule.Description + RenewalSuffix,
			Source:      ast.SourceAutoRenewal,
		})
		added++
	}
	return added
}

func hasRenewal(parent *ast.ParentCategory, description string) bool {
	for _, child := range parent.Children {
		for _, txn := range child.Transactions {
			if strings.Contains(txn.Description, description) {
				return true
			}
		}
	}
	return false
}
