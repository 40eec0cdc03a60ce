package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount expressions are flat arithmetic over decimals.
//
// Grammar:
//   expression → sign? term (('+' | '-') term)*
//   term       → factor ('*' factor)*
//   factor     → [0-9.]+
//
// × is accepted as a synonym for *, whitespace is ignored, and there is no
// division or grouping. A result is rounded to two decimal places, half away
// from zero.
//
// Examples:
//   -30*4+1-10  → -129.00
//   12×3+0.07   → 36.07
//   25          → -25.00 when the default sign is expense
//   25+5        → -20.00 when the default sign is expense

// Reduce evaluates an amount expression. When the expression starts without
// a sign and defaultExpense is set, an implicit minus applies to the first
// term only, so "25+5" under an expense category reduces to -20.00.
func Reduce(expr string, defaultExpense bool) (decimal.Decimal, error) {
	src := strings.Map(func(r rune) rune {
		switch r {
		case '×':
			return '*'
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, expr)

	if src == "" {
		return decimal.Zero, &ReduceError{Kind: ReduceEmpty, Expr: expr}
	}

	if c := src[0]; defaultExpense && (c == '.' || (c >= '0' && c <= '9')) {
		src = "-" + src
	}

	r := &reducer{src: src, expr: expr}
	total, err := r.expression()
	if err != nil {
		return decimal.Zero, err
	}

	return total.Round(2), nil
}

// reducer walks a whitespace-free expression left to right.
type reducer struct {
	src  string
	expr string
	pos  int
}

func (r *reducer) peek() byte {
	if r.pos >= len(r.src) {
		return 0
	}
	return r.src[r.pos]
}

func (r *reducer) expression() (decimal.Decimal, error) {
	sign := byte('+')
	if c := r.peek(); c == '+' || c == '-' {
		sign = c
		r.pos++
	}

	total := decimal.Zero
	for {
		term, err := r.term()
		if err != nil {
			return decimal.Zero, err
		}

		if sign == '-' {
			total = total.Sub(term)
		} else {
			total = total.Add(term)
		}

		c := r.peek()
		if c != '+' && c != '-' {
			break
		}
		sign = c
		r.pos++
	}

	if r.pos < len(r.src) {
		return decimal.Zero, r.invalid(r.src[r.pos:])
	}

	return total, nil
}

func (r *reducer) term() (decimal.Decimal, error) {
	left, err := r.factor()
	if err != nil {
		return decimal.Zero, err
	}

	for r.peek() == '*' {
		r.pos++

		right, err := r.factor()
		if err != nil {
			return decimal.Zero, err
		}
		left = left.Mul(right)
	}

	return left, nil
}

func (r *reducer) factor() (decimal.Decimal, error) {
	start := r.pos
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		r.pos++
	}

	token := r.src[start:r.pos]
	if token == "" || strings.Count(token, ".") > 1 || strings.Trim(token, ".") == "" {
		if token == "" && r.pos < len(r.src) {
			token = r.src[r.pos : r.pos+1]
		}
		return decimal.Zero, r.invalid(token)
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, r.invalid(token)
	}

	return d, nil
}

func (r *reducer) invalid(token string) *ReduceError {
	return &ReduceError{Kind: ReduceInvalidNumber, Expr: r.expr, Token: token}
}
