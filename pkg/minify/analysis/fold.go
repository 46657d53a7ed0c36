package analysis

import (
	"math"
	"strconv"
	"strings"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// Literal folding shared by the constant and simplification passes. Every
// helper returns nil when the operation cannot be folded exactly.

type positioned interface {
	ast.Node
	SetPos(ast.Bookmark)
}

func place[T positioned](e T, at ast.Bookmark) T {
	e.SetPos(at)
	return e
}

func number(v float64, at ast.Bookmark) *ast.Number {
	return place(&ast.Number{Value: v}, at)
}

func boolean(v bool, at ast.Bookmark) *ast.Bool {
	return place(&ast.Bool{Value: v}, at)
}

func str(v string, at ast.Bookmark) *ast.String {
	return place(&ast.String{Value: v}, at)
}

// truthy returns the boolean value of a literal.
func truthy(e ast.Expr) (value, ok bool) {
	switch e := e.(type) {
	case *ast.Number:
		return e.Value != 0 && !math.IsNaN(e.Value), true
	case *ast.String:
		return e.Value != "", true
	case *ast.Bool:
		return e.Value, true
	case *ast.Null:
		return false, true
	}
	return false, false
}

// toNumber converts number, boolean and null literals. Strings are left
// alone.
func toNumber(e ast.Expr) (float64, bool) {
	switch e := e.(type) {
	case *ast.Number:
		return e.Value, true
	case *ast.Bool:
		if e.Value {
			return 1, true
		}
		return 0, true
	case *ast.Null:
		return 0, true
	}
	return 0, false
}

func toInt32(v float64) int32 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(math.Mod(v, 1<<32)))))
}

// integerString formats integral numbers the way string concatenation
// does.
func integerString(v float64) (string, bool) {
	if v != math.Trunc(v) || math.Abs(v) >= 1e21 || (v == 0 && math.Signbit(v)) {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func plainString(e ast.Expr) (*ast.String, bool) {
	s, ok := e.(*ast.String)
	if !ok || s.Verbatim {
		return nil, false
	}
	return s, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// foldUnary applies op to the literal x.
func foldUnary(op string, x ast.Expr, at ast.Bookmark) ast.Expr {
	switch op {
	case "!":
		if t, ok := truthy(x); ok {
			return boolean(!t, at)
		}
	case "-":
		if n, ok := x.(*ast.Number); ok {
			return number(-n.Value, at)
		}
	case "+":
		if v, ok := toNumber(x); ok {
			return number(v, at)
		}
	case "~":
		if v, ok := toNumber(x); ok {
			return number(float64(^toInt32(v)), at)
		}
	case "typeof":
		switch x.(type) {
		case *ast.Number:
			return str("number", at)
		case *ast.String:
			return str("string", at)
		case *ast.Bool:
			return str("boolean", at)
		case *ast.Null:
			return str("object", at)
		}
	}
	return nil
}

// foldBinary applies a non-logical operator to two literals. Numeric
// results are only produced when they are finite and not longer than the
// expression they replace.
func foldBinary(op string, x, y ast.Expr, at ast.Bookmark) ast.Expr {
	if op == "+" {
		if r := foldConcat(x, y, at); r != nil {
			return r
		}
	}
	switch op {
	case "==", "===", "!=", "!==":
		eq, ok := literalEqual(x, y)
		if !ok {
			return nil
		}
		if op[0] == '!' {
			eq = !eq
		}
		return boolean(eq, at)
	case "<", ">", "<=", ">=":
		return compare(op, x, y, at)
	}

	a, aok := x.(*ast.Number)
	b, bok := y.(*ast.Number)
	if !aok || !bok {
		return nil
	}
	var v float64
	switch op {
	case "+":
		v = a.Value + b.Value
	case "-":
		v = a.Value - b.Value
	case "*":
		v = a.Value * b.Value
	case "/":
		v = a.Value / b.Value
	case "%":
		v = math.Mod(a.Value, b.Value)
	case "&":
		v = float64(toInt32(a.Value) & toInt32(b.Value))
	case "|":
		v = float64(toInt32(a.Value) | toInt32(b.Value))
	case "^":
		v = float64(toInt32(a.Value) ^ toInt32(b.Value))
	case "<<":
		v = float64(toInt32(a.Value) << (uint32(toInt32(b.Value)) & 31))
	case ">>":
		v = float64(toInt32(a.Value) >> (uint32(toInt32(b.Value)) & 31))
	case ">>>":
		v = float64(uint32(toInt32(a.Value)) >> (uint32(toInt32(b.Value)) & 31))
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	before := len(ast.FormatNumber(a.Value)) + len(op) + len(ast.FormatNumber(b.Value))
	if len(ast.FormatNumber(v)) > before {
		return nil
	}
	return number(v, at)
}

func foldConcat(x, y ast.Expr, at ast.Bookmark) ast.Expr {
	xs, xok := plainString(x)
	ys, yok := plainString(y)
	switch {
	case xok && yok:
		return str(xs.Value+ys.Value, at)
	case xok:
		if n, ok := y.(*ast.Number); ok {
			if s, ok := integerString(n.Value); ok {
				return str(xs.Value+s, at)
			}
		}
	case yok:
		if n, ok := x.(*ast.Number); ok {
			if s, ok := integerString(n.Value); ok {
				return str(s+ys.Value, at)
			}
		}
	}
	return nil
}

// literalEqual compares two literals of the same type. Strict and loose
// equality agree on those.
func literalEqual(x, y ast.Expr) (bool, bool) {
	switch x := x.(type) {
	case *ast.Number:
		if y, ok := y.(*ast.Number); ok {
			return x.Value == y.Value, true
		}
	case *ast.String:
		if y, ok := plainString(y); ok && !x.Verbatim {
			return x.Value == y.Value, true
		}
	case *ast.Bool:
		if y, ok := y.(*ast.Bool); ok {
			return x.Value == y.Value, true
		}
	case *ast.Null:
		if _, ok := y.(*ast.Null); ok {
			return true, true
		}
	}
	return false, false
}

func compare(op string, x, y ast.Expr, at ast.Bookmark) ast.Expr {
	var c int
	switch x := x.(type) {
	case *ast.Number:
		b, ok := y.(*ast.Number)
		if !ok {
			return nil
		}
		if math.IsNaN(x.Value) || math.IsNaN(b.Value) {
			return boolean(false, at)
		}
		switch {
		case x.Value < b.Value:
			c = -1
		case x.Value > b.Value:
			c = 1
		}
	case *ast.String:
		b, ok := plainString(y)
		// Byte order equals UTF-16 code unit order only for ASCII.
		if !ok || x.Verbatim || !isASCII(x.Value) || !isASCII(b.Value) {
			return nil
		}
		c = strings.Compare(x.Value, b.Value)
	default:
		return nil
	}
	var v bool
	switch op {
	case "<":
		v = c < 0
	case ">":
		v = c > 0
	case "<=":
		v = c <= 0
	case ">=":
		v = c >= 0
	}
	return boolean(v, at)
}

// foldLogical selects the operand a short-circuit operator yields when its
// left side is a literal. The result is not necessarily a literal.
func foldLogical(op string, x, y ast.Expr) ast.Expr {
	if op == "??" {
		switch x.(type) {
		case *ast.Null:
			return y
		case *ast.Number, *ast.String, *ast.Bool:
			return x
		}
		return nil
	}
	t, ok := truthy(x)
	if !ok {
		return nil
	}
	switch op {
	case "&&":
		if t {
			return y
		}
		return x
	case "||":
		if t {
			return x
		}
		return y
	}
	return nil
}

func isLogical(op string) bool {
	return op == "&&" || op == "||" || op == "??"
}

// evalConstant evaluates e without changing it. It returns a literal or
// nil.
func evalConstant(e ast.Expr) ast.Expr {
	var r ast.Expr
	switch e := e.(type) {
	case *ast.Number, *ast.String, *ast.Bool, *ast.Null:
		return e
	case *ast.Unary:
		if x := evalConstant(e.X); x != nil {
			r = foldUnary(e.Op, x, e.Pos())
		}
	case *ast.Binary:
		x := evalConstant(e.X)
		if x == nil {
			return nil
		}
		if isLogical(e.Op) {
			if sel := foldLogical(e.Op, x, e.Y); sel != nil {
				if sel == e.Y {
					return evalConstant(e.Y)
				}
				return x
			}
			return nil
		}
		if y := evalConstant(e.Y); y != nil {
			r = foldBinary(e.Op, x, y, e.Pos())
		}
	case *ast.Conditional:
		test := evalConstant(e.Test)
		if t, ok := truthy(test); ok {
			if t {
				return evalConstant(e.Then)
			}
			return evalConstant(e.Else)
		}
	}
	if r == nil || !ast.IsLiteral(r) {
		return nil
	}
	return r
}
