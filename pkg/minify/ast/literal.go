package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FormatNumber returns the shortest source text evaluating to v. Leading
// zeros are dropped (.5) and exponents are used when they save bytes (1e3).
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v < 0 || (v == 0 && math.Signbit(v)):
		return "-" + FormatNumber(-v)
	}

	f := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.HasPrefix(f, "0.") {
		f = f[1:]
	}

	mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	best := f
	if e := mant + "e" + exp; len(e) < len(best) {
		best = e
	}
	// 123000 is 123e3
	if !strings.Contains(f, ".") {
		digits := strings.TrimRight(f, "0")
		if zeros := len(f) - len(digits); zeros > 0 && digits != "" {
			if e := digits + "e" + strconv.Itoa(zeros); len(e) < len(best) {
				best = e
			}
		}
	}
	return best
}

// IsIdentifierName reports whether s can be written as a bare identifier or
// property name.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)):
		default:
			return false
		}
	}
	return true
}

// IsLiteral reports whether e is a number, string, boolean or null literal.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *Number, *String, *Bool, *Null:
		return true
	}
	return false
}

// CloneLiteral returns a copy of the literal e positioned at at, or nil when
// e is not a literal.
func CloneLiteral(e Expr, at Bookmark) Expr {
	var out Expr
	switch e := e.(type) {
	case *Number:
		c := *e
		c.pos = at
		out = &c
	case *String:
		c := *e
		c.pos = at
		out = &c
	case *Bool:
		c := *e
		c.pos = at
		out = &c
	case *Null:
		c := *e
		c.pos = at
		out = &c
	}
	return out
}
