package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	datePrefix   = "date:"
	remarkPrefix = "remark:"
	commentMark  = "//"
)

var (
	dateLine = regexp.MustCompile(`^date:([0-9]{6})$`)

	// An optional sign, a number, then any number of operator/number pairs.
	// Numbers are runs of digits and dots holding at least one digit; a
	// malformed run such as 1.2.3 still classifies and fails in Reduce.
	exprPrefix = regexp.MustCompile(`^[+-]?[0-9.]*[0-9][0-9.]*(?:[-+*×][0-9.]*[0-9][0-9.]*)*`)

	childTitle = regexp.MustCompile(`^[a-z_]+$`)
)

// Classifier turns raw lines into LineKind values. It holds no per-document
// state and may be shared.
type Classifier struct {
	metadataPrefixes []string
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithMetadataPrefixes recognises lines starting with any of the prefixes
// (for example "author:") as Metadata. The built-in date: and remark:
// prefixes are ignored here since they always win.
func WithMetadataPrefixes(prefixes ...string) ClassifierOption {
	return func(c *Classifier) {
		for _, p := range prefixes {
			if p == "" || p == datePrefix || p == remarkPrefix {
				continue
			}
			c.metadataPrefixes = append(c.metadataPrefixes, p)
		}
	}
}

// NewClassifier creates a classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = NewClassifier()

// Classify categorises a line with the default classifier.
func Classify(line RawLine) LineKind {
	return defaultClassifier.Classify(line)
}

// Classify categorises one line. Rules are tried in a fixed order and the
// first match wins, since content lines could otherwise pass for titles:
// date, remark, metadata, content, child title, parent title.
func (c *Classifier) Classify(line RawLine) LineKind {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return Blank{}
	}

	if m := dateLine.FindStringSubmatch(text); m != nil {
		return Date{Value: m[1]}
	}

	if rest, ok := strings.CutPrefix(text, remarkPrefix); ok {
		return Remark{Text: strings.TrimSpace(rest)}
	}

	for _, prefix := range c.metadataPrefixes {
		if rest, ok := strings.CutPrefix(text, prefix); ok {
			return Metadata{
				Key:   strings.TrimSuffix(prefix, ":"),
				Value: strings.TrimSpace(rest),
			}
		}
	}

	if content, ok := classifyContent(text); ok {
		return content
	}

	if childTitle.MatchString(text) {
		return ChildTitle{Name: text}
	}

	if isParentLead(text) {
		return ParentTitle{Name: text}
	}

	return Unrecognized{Text: text}
}

// ClassifyAll classifies every line in order.
func (c *Classifier) ClassifyAll(lines []RawLine) []Classified {
	out := make([]Classified, len(lines))
	for i, l := range lines {
		out[i] = Classified{Line: l, Kind: c.Classify(l)}
	}
	return out
}

func classifyContent(text string) (ContentLine, bool) {
	loc := exprPrefix.FindStringIndex(text)
	if loc == nil {
		return ContentLine{}, false
	}

	expr, rest := text[:loc[1]], text[loc[1]:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && !strings.HasPrefix(rest, commentMark) {
		return ContentLine{}, false
	}

	line := ContentLine{Expr: expr}
	if desc, comment, found := strings.Cut(rest, commentMark); found {
		line.Description = strings.TrimSpace(desc)
		line.Comment = strings.TrimSpace(comment)
	} else {
		line.Description = strings.TrimSpace(rest)
	}

	return line, true
}

// isParentLead reports whether the first rune can open a parent title: an
// uppercase letter, or a letter without case such as a CJK ideograph.
func isParentLead(text string) bool {
	r, _ := utf8.DecodeRuneInString(text)
	if unicode.IsUpper(r) {
		return true
	}
	return unicode.IsLetter(r) && !unicode.IsLower(r)
}
