package ast

import "fmt"

// Position represents a line in a bill file.
type Position struct {
	Filename string
	Line     int // 1-indexed, 0 when synthetic
}

// IsZero reports whether the position refers to no source line.
func (p Position) IsZero() bool {
	return p.Line == 0
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("line %d", p.Line)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d}", p.Filename, p.Line)
}
