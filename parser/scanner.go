package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SplitLines splits a bill source into numbered lines. A leading byte order
// mark and trailing carriage returns are dropped. A final newline does not
// produce an extra empty line.
func SplitLines(source []byte) ([]RawLine, error) {
	source = bytes.TrimPrefix(source, utf8BOM)
	if len(source) == 0 {
		return nil, nil
	}

	lines := make([]RawLine, 0, bytes.Count(source, []byte{'\n'})+1)

	number := 0
	for len(source) > 0 {
		number++

		var raw []byte
		if i := bytes.IndexByte(source, '\n'); i >= 0 {
			raw, source = source[:i], source[i+1:]
		} else {
			raw, source = source, nil
		}
		raw = bytes.TrimSuffix(raw, []byte{'\r'})

		if !utf8.Valid(raw) {
			return nil, &InvalidUTF8Error{Line: number}
		}

		lines = append(lines, RawLine{Number: number, Text: string(raw)})
	}

	return lines, nil
}

// HasContent reports whether any line is non-blank.
func HasContent(lines []RawLine) bool {
	for _, l := range lines {
		if strings.TrimSpace(l.Text) != "" {
			return true
		}
	}
	return false
}
