package ledger

import (
	"bytes"
	"encoding/json"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/shopspring/decimal"
)

// Projection is the JSON form of a finished document:
//
//	{
//	  "date": "202501",
//	  "remark": "January",
//	  "total_income": 1200.00,
//	  "total_expense": -42.00,
//	  "balance": 1158.00,
//	  "categories": {
//	    "MEAL": {
//	      "subtotal": -42.00,
//	      "transactions": [
//	        {"sub_category": "lunch", "description": "noodles", "amount": -30.00,
//	         "source": "manual", "transaction_type": "expense", "comment": null}
//	      ]
//	    }
//	  }
//	}
//
// Categories keep document order, which encoding/json cannot do for maps, so
// the object is written by hand. Amounts are numbers with two decimals.
type Projection struct {
	Document *ast.Document
}

// Project wraps doc for JSON encoding.
func Project(doc *ast.Document) Projection {
	return Projection{Document: doc}
}

// ProjectAll wraps every document.
func ProjectAll(docs []*ast.Document) []Projection {
	out := make([]Projection, len(docs))
	for i, doc := range docs {
		out[i] = Project(doc)
	}
	return out
}

func (p Projection) MarshalJSON() ([]byte, error) {
	doc := p.Document
	var buf bytes.Buffer

	buf.WriteByte('{')
	writeField(&buf, "date", doc.Date, false)
	writeField(&buf, "remark", doc.Remark, true)

	if len(doc.Metadata) > 0 {
		// A repeated key keeps its first value, as MetadataValue does.
		buf.WriteString(`,"metadata":{`)
		seen := make(map[string]bool, len(doc.Metadata))
		for _, m := range doc.Metadata {
			if seen[m.Key] {
				continue
			}
			writeField(&buf, m.Key, m.Value, len(seen) > 0)
			seen[m.Key] = true
		}
		buf.WriteByte('}')
	}

	writeAmount(&buf, "total_income", doc.TotalIncome)
	writeAmount(&buf, "total_expense", doc.TotalExpense)
	writeAmount(&buf, "balance", doc.Balance)

	buf.WriteString(`,"categories":{`)
	for i, parent := range doc.Parents {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, parent.Title)
		buf.WriteString(`:{"subtotal":`)
		buf.WriteString(parent.Subtotal.StringFixed(2))
		buf.WriteString(`,"transactions":[`)

		first := true
		for _, child := range parent.Children {
			for _, txn := range child.Transactions {
				if !first {
					buf.WriteByte(',')
				}
				first = false
				if err := writeTransaction(&buf, child.Title, txn); err != nil {
					return nil, err
				}
			}
		}
		buf.WriteString("]}")
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

func writeTransaction(buf *bytes.Buffer, child string, txn *ast.Transaction) error {
	var comment *string
	if txn.HasComment() {
		comment = &txn.Comment
	}

	data, err := json.Marshal(struct {
		SubCategory string          `json:"sub_category"`
		Description string          `json:"description"`
		Amount      json.RawMessage `json:"amount"`
		Source      ast.Source      `json:"source"`
		Type        ast.Kind        `json:"transaction_type"`
		Comment     *string         `json:"comment"`
	}{child, txn.Description, json.RawMessage(txn.Amount.StringFixed(2)), txn.Source, txn.Kind(), comment})
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeField(buf *bytes.Buffer, key, value string, comma bool) {
	if comma {
		buf.WriteByte(',')
	}
	writeString(buf, key)
	buf.WriteByte(':')
	writeString(buf, value)
}

func writeAmount(buf *bytes.Buffer, key string, d decimal.Decimal) {
	buf.WriteByte(',')
	writeString(buf, key)
	buf.WriteByte(':')
	buf.WriteString(d.StringFixed(2))
}

func writeString(buf *bytes.Buffer, s string) {
	// Marshalling a string cannot fail.
	data, _ := json.Marshal(s)
	buf.Write(data)
}
