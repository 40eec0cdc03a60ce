package parser

import "fmt"

// RawLine is one physical line of a bill file.
type RawLine struct {
	Number int // 1-indexed
	Text   string
}

// LineKind is the classification of a single trimmed line. The set of
// implementations is closed: Date, Remark, Metadata, ParentTitle, ChildTitle,
// ContentLine, Blank and Unrecognized.
type LineKind interface {
	lineKind()
}

// Date is a date:YYYYMM header.
type Date struct {
	Value string
}

// Remark is a remark: header; Text may be empty.
type Remark struct {
	Text string
}

// Metadata is a header line matching one of the configured metadata prefixes.
// Key is the prefix without its trailing colon.
type Metadata struct {
	Key   string
	Value string
}

// ParentTitle opens a parent category. Whether the title is allowed is
// decided later against the category rules.
type ParentTitle struct {
	Name string
}

// ChildTitle opens a sub-category under the current parent.
type ChildTitle struct {
	Name string
}

// ContentLine carries an amount expression, a description and an optional
// comment.
type ContentLine struct {
	Expr        string
	Description string
	Comment     string
}

// Blank is an empty or whitespace-only line.
type Blank struct{}

// Unrecognized is any line no other rule matched.
type Unrecognized struct {
	Text string
}

func (Date) lineKind()         {}
func (Remark) lineKind()       {}
func (Metadata) lineKind()     {}
func (ParentTitle) lineKind()  {}
func (ChildTitle) lineKind()   {}
func (ContentLine) lineKind()  {}
func (Blank) lineKind()        {}
func (Unrecognized) lineKind() {}

// KindName returns a short lowercase name for a line kind.
func KindName(k LineKind) string {
	switch k.(type) {
	case Date:
		return "date"
	case Remark:
		return "remark"
	case Metadata:
		return "metadata"
	case ParentTitle:
		return "parent"
	case ChildTitle:
		return "child"
	case ContentLine:
		return "content"
	case Blank:
		return "blank"
	case Unrecognized:
		return "unrecognized"
	default:
		panic(fmt.Sprintf("parser: unknown line kind %T", k))
	}
}

// Classified pairs a raw line with its classification.
type Classified struct {
	Line RawLine
	Kind LineKind
}
