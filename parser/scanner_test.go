package parser

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSplitLines(t *testing.T) {
	lines, err := SplitLines([]byte("\ufeffdate:202501\r\nFood\n\n  lunch  \n"))
	assert.NoError(t, err)
	assert.Equal(t, []RawLine{
		{Number: 1, Text: "date:202501"},
		{Number: 2, Text: "Food"},
		{Number: 3, Text: ""},
		{Number: 4, Text: "  lunch  "},
	}, lines)
}

func TestSplitLinesNoTrailingNewline(t *testing.T) {
	lines, err := SplitLines([]byte("a\nb"))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(lines))
	assert.Equal(t, "b", lines[1].Text)
}

func TestSplitLinesEmpty(t *testing.T) {
	lines, err := SplitLines(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(lines))
	assert.False(t, HasContent(lines))
}

func TestSplitLinesInvalidUTF8(t *testing.T) {
	_, err := SplitLines([]byte("date:202501\nFood\n\xff\xfe\n"))
	assert.Error(t, err)

	var ue *InvalidUTF8Error
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, 3, ue.Line)
}

func TestHasContent(t *testing.T) {
	lines, err := SplitLines([]byte("  \n\t\n"))
	assert.NoError(t, err)
	assert.False(t, HasContent(lines))

	lines, err = SplitLines([]byte("\n x\n"))
	assert.NoError(t, err)
	assert.True(t, HasContent(lines))
}
