package ledger

import (
	"errors"
	"strings"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/parser"
)

// Validation walks classified lines once, top to bottom, and builds the
// provisional document tree.
//
// Each section moves through three phases:
//
//	expectDate ─ date: ─▶ expectRemark ─ any other line ─▶ processing
//	                            │                              │
//	                            └──────── date: ◀──────────────┘
//
// The open parent and child live in a cursor value. Every step receives the
// current cursor and returns the next one, and a new cursor is created per
// call, so nothing carries over from one bill to the next.
//
// Structural problems become diagnostics and the walk continues. The only
// way out early is an amount expression that cannot be reduced, which is a
// hard failure for the whole bill.

type phase uint8

const (
	expectDate phase = iota
	expectRemark
	processing
)

type cursor struct {
	phase  phase
	doc    *ast.Document
	parent *ast.ParentCategory
	child  *ast.SubCategory
}

type validation struct {
	rules       *Rules
	filename    string
	documents   []*ast.Document
	diagnostics Diagnostics
	warnedEmpty map[*ast.SubCategory]bool
}

// validate runs the state machine over lines.
func validate(rules *Rules, filename string, lines []parser.Classified) ([]*ast.Document, Diagnostics, error) {
	v := &validation{
		rules:       rules,
		filename:    filename,
		warnedEmpty: make(map[*ast.SubCategory]bool),
	}

	c := cursor{phase: expectDate}
	for _, line := range lines {
		var err error
		if c, err = v.step(c, line); err != nil {
			return nil, nil, err
		}
	}
	v.leaveChild(c)

	return v.documents, v.diagnostics, nil
}

func (v *validation) pos(line parser.RawLine) ast.Position {
	return ast.Position{Filename: v.filename, Line: line.Number}
}

func (v *validation) report(d Diagnostic) {
	v.diagnostics = append(v.diagnostics, d)
}

func (v *validation) step(c cursor, line parser.Classified) (cursor, error) {
	if _, blank := line.Kind.(parser.Blank); blank {
		return c, nil
	}

	pos := v.pos(line.Line)

	if c.phase == expectDate {
		if _, ok := line.Kind.(parser.Date); !ok {
			c = v.implicitSection(c, line, pos)
		}
	}

	switch kind := line.Kind.(type) {
	case parser.Date:
		return v.openSection(c, kind, pos), nil

	case parser.Remark:
		if c.phase != expectRemark {
			v.report(newError(CodeMisplacedRemark, pos, "remark must directly follow the date line"))
			return c, nil
		}
		c.doc.Remark = kind.Text
		c.phase = processing
		return c, nil

	case parser.Metadata:
		if c.parent != nil || len(c.doc.Parents) > 0 {
			v.report(newError(CodeMisplacedMetadata, pos, "metadata %q must appear before the first category", kind.Key))
			return c, nil
		}
		c.doc.Metadata = append(c.doc.Metadata, &ast.Metadata{Pos: pos, Key: kind.Key, Value: kind.Value})
		c.phase = processing
		return c, nil

	case parser.ParentTitle:
		return v.openParent(c, kind.Name, pos), nil

	case parser.ChildTitle:
		return v.openChild(c, kind.Name, pos), nil

	case parser.ContentLine:
		return v.addContent(c, kind, line.Line, pos)

	case parser.Unrecognized:
		c.phase = processing
		if strings.HasPrefix(kind.Text, "date:") {
			v.report(newError(CodeMalformedDate, pos, "malformed date line %q, expected date:YYYYMM", kind.Text))
		} else {
			v.report(newError(CodeUnrecognizedLine, pos, "unrecognized line %q", kind.Text))
		}
		return c, nil
	}

	return c, nil
}

// implicitSection starts a section without a date so that the lines of a bill
// missing its header are still checked.
func (v *validation) implicitSection(c cursor, line parser.Classified, pos ast.Position) cursor {
	if u, ok := line.Kind.(parser.Unrecognized); !ok || !strings.HasPrefix(u.Text, "date:") {
		v.report(newError(CodeMissingDate, pos, "bill must start with a date:YYYYMM line"))
	}

	doc := &ast.Document{Pos: pos}
	v.documents = append(v.documents, doc)

	return cursor{phase: expectRemark, doc: doc}
}

func (v *validation) openSection(c cursor, date parser.Date, pos ast.Position) cursor {
	v.leaveChild(c)

	if month := date.Value[4:]; month < "01" || month > "12" {
		v.report(newError(CodeInvalidMonth, pos, "invalid month %q in date %s", month, date.Value))
	}

	doc := &ast.Document{Pos: pos, Date: date.Value}
	v.documents = append(v.documents, doc)

	return cursor{phase: expectRemark, doc: doc}
}

func (v *validation) openParent(c cursor, title string, pos ast.Position) cursor {
	v.leaveChild(c)

	valid := v.rules.HasParent(title)
	if !valid {
		v.report(newError(CodeInvalidParent, pos, "invalid parent title %q", title))
	}

	parent := c.doc.Parent(title)
	if parent == nil {
		parent = &ast.ParentCategory{Pos: pos, Title: title, Invalid: !valid}
		c.doc.Parents = append(c.doc.Parents, parent)
	}

	return cursor{phase: processing, doc: c.doc, parent: parent}
}

func (v *validation) openChild(c cursor, title string, pos ast.Position) cursor {
	v.leaveChild(c)
	c.phase = processing
	c.child = nil

	if c.parent == nil {
		v.report(newError(CodeChildWithoutParent, pos, "sub-category %q has no parent category", title))
		return c
	}

	// Children of an unknown parent cannot be checked against anything.
	invalid := false
	if !c.parent.Invalid && !v.rules.Allows(c.parent.Title, title) {
		invalid = true
		v.report(newError(CodeInvalidChild, pos, "invalid sub-category %q for parent %q", title, c.parent.Title))
	}

	child := c.parent.Child(title)
	if child == nil {
		child = &ast.SubCategory{Pos: pos, Title: title, Invalid: invalid}
		c.parent.Children = append(c.parent.Children, child)
	}
	c.child = child

	return c
}

func (v *validation) addContent(c cursor, content parser.ContentLine, line parser.RawLine, pos ast.Position) (cursor, error) {
	c.phase = processing

	if c.parent == nil || c.child == nil {
		v.report(newError(CodeContentOutsideCategory, pos, "content line %q is not under a parent category and sub-category", strings.TrimSpace(line.Text)))
		return c, nil
	}

	amount, err := parser.Reduce(content.Expr, !v.rules.IsIncome(c.parent.Title))
	if err != nil {
		var re *parser.ReduceError
		if errors.As(err, &re) {
			re.Line = line.Number
		}
		return c, parser.NewParseError(v.filename, err)
	}

	c.child.Transactions = append(c.child.Transactions, &ast.Transaction{
		Pos:         pos,
		Amount:      amount,
		Expr:        content.Expr,
		Description: content.Description,
		Comment:     content.Comment,
		Source:      ast.SourceManual,
	})

	return c, nil
}

// leaveChild warns when the sub-category being closed never received a
// transaction. A sub-category reopened later is reported once. The warning is
// provisional until dropFilledEmpty has seen the finished documents.
func (v *validation) leaveChild(c cursor) {
	if c.child == nil || len(c.child.Transactions) > 0 || v.warnedEmpty[c.child] {
		return
	}
	v.warnedEmpty[c.child] = true
	v.report(newWarning(CodeEmptySubCategory, c.child.Pos, "sub-category %q under %q has no transactions", c.child.Title, c.parent.Title))
}

// dropFilledEmpty removes empty sub-category warnings for sub-categories that
// hold transactions by the end of the pipeline, either from a later reopening
// of the same title or from an injected renewal.
func dropFilledEmpty(diagnostics Diagnostics, docs []*ast.Document) Diagnostics {
	filled := make(map[ast.Position]bool)
	for _, doc := range docs {
		for _, parent := range doc.Parents {
			for _, child := range parent.Children {
				if len(child.Transactions) > 0 && !child.Pos.IsZero() {
					filled[child.Pos] = true
				}
			}
		}
	}

	kept := diagnostics[:0]
	for _, d := range diagnostics {
		if d.Code == CodeEmptySubCategory && filled[d.Pos] {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}
