package render

import (
	"math"
	"strings"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// Operator precedence, loosest first.
const (
	precSequence = iota
	precAssign
	precConditional
	precNullish
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
	precLHS // calls and everything that can be called
	precMember
	precPrimary = precMember + 2
)

var binaryPrec = map[string]int{
	"??": precNullish,
	"||": precOr, "&&": precAnd,
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"in": precRelational, "instanceof": precRelational,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
	"**": precExponent,
}

func (r *RenderContext) prec(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.Sequence:
		return precSequence
	case *ast.Assign:
		return precAssign
	case *ast.Function:
		if e.Arrow {
			return precAssign
		}
	case *ast.Conditional:
		return precConditional
	case *ast.Binary:
		if p, ok := binaryPrec[e.Op]; ok {
			return p
		}
		return precRelational
	case *ast.Unary:
		if e.Postfix {
			return precPostfix
		}
		return precUnary
	case *ast.Number:
		if math.Signbit(e.Value) {
			return precUnary
		}
	case *ast.Bool:
		if !r.opts.Formatted {
			return precUnary
		}
	case *ast.Call:
		return precLHS
	case *ast.Member, *ast.Index, *ast.New:
		return precMember
	case *ast.Template:
		if e.Tag != nil {
			return precMember
		}
	case *ast.Spread:
		return precAssign
	}
	return precPrimary
}

// leftmost returns the expression that supplies the first token of e.
func leftmost(e ast.Expr) ast.Expr {
	for {
		switch x := e.(type) {
		case *ast.Binary:
			e = x.X
		case *ast.Assign:
			e = x.Target
		case *ast.Conditional:
			e = x.Test
		case *ast.Sequence:
			if len(x.List) == 0 {
				return e
			}
			e = x.List[0]
		case *ast.Call:
			e = x.Fn
		case *ast.Member:
			e = x.X
		case *ast.Index:
			e = x.X
		case *ast.Unary:
			if !x.Postfix {
				return e
			}
			e = x.X
		case *ast.Template:
			if x.Tag == nil {
				return e
			}
			e = x.Tag
		default:
			return e
		}
	}
}

// startsAmbiguously reports whether an expression statement would be read
// as a block or a function declaration.
func startsAmbiguously(e ast.Expr) bool {
	switch x := leftmost(e).(type) {
	case *ast.Object:
		return true
	case *ast.Function:
		return !x.Arrow
	case *ast.Ident:
		// let[x] = 1
		return x.Name == "let"
	}
	return false
}

// hasCall reports whether the member chain of e contains a call, which
// would bind to new.
func hasCall(e ast.Expr) bool {
	for {
		switch x := e.(type) {
		case *ast.Call:
			return true
		case *ast.Member:
			e = x.X
		case *ast.Index:
			e = x.X
		case *ast.Template:
			if x.Tag == nil {
				return false
			}
			e = x.Tag
		default:
			return false
		}
	}
}

// expr renders e, wrapping it in parentheses when it binds looser than min.
func (r *RenderContext) expr(e ast.Expr, min int) {
	wrap := r.prec(e) < min
	if b, ok := e.(*ast.Binary); ok && b.Op == "in" && r.noIn > 0 {
		wrap = true
	}
	if !wrap {
		r.exprNoParen(e)
		return
	}
	noIn := r.noIn
	r.noIn = 0
	r.tok("(")
	r.exprNoParen(e)
	r.tok(")")
	r.noIn = noIn
}

func (r *RenderContext) exprNoParen(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Ident:
		r.tok(r.name(e.Name))
	case *ast.This:
		r.tok("this")
	case *ast.Null:
		r.tok("null")
	case *ast.Bool:
		r.boolean(e.Value)
	case *ast.Number:
		r.tok(ast.FormatNumber(e.Value))
	case *ast.String:
		if e.Verbatim {
			r.tok(e.Raw)
		} else {
			r.tok(Quote(e.Value))
		}
	case *ast.RegExp:
		r.tok("/" + e.Pattern + "/" + e.Flags)
	case *ast.Template:
		r.template(e)
	case *ast.Array:
		r.array(e)
	case *ast.Object:
		r.object(e)
	case *ast.Function:
		r.function(e)
	case *ast.Member:
		r.memberExpr(e)
	case *ast.Index:
		r.expr(e.X, precLHS)
		r.tok("[")
		r.nested(e.Index, precSequence)
		r.tok("]")
	case *ast.Call:
		r.expr(e.Fn, precLHS)
		r.args(e.Args)
	case *ast.New:
		r.tok("new")
		if hasCall(e.Fn) {
			r.nested(e.Fn, precPrimary)
		} else {
			r.expr(e.Fn, precMember)
		}
		r.args(e.Args)
	case *ast.Unary:
		r.unary(e)
	case *ast.Binary:
		r.binary(e)
	case *ast.Assign:
		r.expr(e.Target, precLHS)
		r.op(e.Op)
		r.expr(e.Value, precAssign)
	case *ast.Conditional:
		r.expr(e.Test, precNullish)
		r.op("?")
		r.expr(e.Then, precAssign)
		r.op(":")
		r.expr(e.Else, precAssign)
	case *ast.Sequence:
		for i, x := range e.List {
			if i > 0 {
				r.comma()
			}
			r.expr(x, precAssign)
		}
	case *ast.Spread:
		r.tok("...")
		r.expr(e.X, precAssign)
	default:
		r.fail(e, "cannot render %T", e)
	}
}

// nested renders e inside brackets the caller writes, where the
// surrounding context no longer excludes the in operator.
func (r *RenderContext) nested(e ast.Expr, min int) {
	noIn := r.noIn
	r.noIn = 0
	if min == precPrimary {
		r.tok("(")
		r.exprNoParen(e)
		r.tok(")")
	} else {
		r.expr(e, min)
	}
	r.noIn = noIn
}

func (r *RenderContext) boolean(v bool) {
	switch {
	case r.opts.Formatted && v:
		r.tok("true")
	case r.opts.Formatted:
		r.tok("false")
	case v:
		r.tok("!0")
	default:
		r.tok("!1")
	}
}

func (r *RenderContext) memberExpr(e *ast.Member) {
	if n, ok := e.X.(*ast.Number); ok && r.prec(n) == precPrimary {
		s := ast.FormatNumber(n.Value)
		if !strings.ContainsAny(s, ".eEnI") {
			// 1..toString()
			s += "."
		}
		r.tok(s)
	} else {
		r.expr(e.X, precLHS)
	}
	r.tok(".")
	r.tok(r.member(e.Name))
}

func (r *RenderContext) args(list []ast.Expr) {
	noIn := r.noIn
	r.noIn = 0
	r.tok("(")
	r.breakable()
	for i, a := range list {
		if i > 0 {
			r.comma()
		}
		r.expr(a, precAssign)
	}
	r.tok(")")
	r.noIn = noIn
}

func (r *RenderContext) unary(e *ast.Unary) {
	if e.Postfix {
		r.expr(e.X, precLHS)
		r.tight(e.Op)
		return
	}
	r.tok(e.Op)
	r.expr(e.X, precUnary)
}

// tight appends a token that may not start a new line.
func (r *RenderContext) tight(s string) {
	if r.safe == len(r.out) {
		r.safe = -1
	}
	r.tok(s)
}

func (r *RenderContext) binary(e *ast.Binary) {
	p := r.prec(e)
	left, right := p, p+1
	if e.Op == "**" {
		left, right = precPostfix, p
	}
	r.operand(e.Op, e.X, left)
	r.op(e.Op)
	r.operand(e.Op, e.Y, right)
}

// operand renders one side of a binary expression. Nullish coalescing may
// not be mixed with && or || without parentheses.
func (r *RenderContext) operand(op string, x ast.Expr, min int) {
	if b, ok := x.(*ast.Binary); ok {
		mixed := (op == "??" && (b.Op == "||" || b.Op == "&&")) ||
			(b.Op == "??" && (op == "||" || op == "&&"))
		if mixed {
			min = precPrimary
		}
	}
	r.expr(x, min)
}

func (r *RenderContext) array(e *ast.Array) {
	noIn := r.noIn
	r.noIn = 0
	r.tok("[")
	for i, x := range e.List {
		if i > 0 {
			r.comma()
		}
		if x != nil {
			r.expr(x, precAssign)
		}
	}
	if n := len(e.List); n > 0 && e.List[n-1] == nil {
		r.tok(",")
	}
	r.tok("]")
	r.noIn = noIn
}

func (r *RenderContext) object(e *ast.Object) {
	noIn := r.noIn
	r.noIn = 0
	r.tok("{")
	for i, p := range e.Props {
		if i > 0 {
			r.comma()
		}
		r.property(p)
	}
	r.tok("}")
	r.noIn = noIn
}

func (r *RenderContext) property(p *ast.Property) {
	switch p.Kind {
	case ast.PropSpread:
		r.tok("...")
		r.expr(p.Value, precAssign)
	case ast.PropShorthand:
		key := r.key(p)
		id, ok := p.Value.(*ast.Ident)
		if !ok || id.Name != p.Key {
			// The value was substituted.
			r.tok(key)
			r.tok(":")
			r.space()
			r.expr(p.Value, precAssign)
			return
		}
		value := r.name(p.Key)
		if key != value {
			r.tok(key)
			r.tok(":")
			r.space()
		}
		r.tok(value)
	case ast.PropGet, ast.PropSet, ast.PropMethod:
		fn, ok := p.Value.(*ast.Function)
		if !ok {
			r.fail(p, "method %s has no function", p.Key)
			return
		}
		if p.Kind == ast.PropGet {
			r.tok("get")
		} else if p.Kind == ast.PropSet {
			r.tok("set")
		}
		r.propKey(p)
		r.method(fn)
	default:
		r.propKey(p)
		r.tok(":")
		r.space()
		r.expr(p.Value, precAssign)
	}
}

func (r *RenderContext) propKey(p *ast.Property) {
	if p.KeyKind == ast.KeyComputed {
		r.tok("[")
		r.expr(p.Computed, precAssign)
		r.tok("]")
		return
	}
	r.tok(r.key(p))
}

// key returns the rendered text of a non-computed property key.
func (r *RenderContext) key(p *ast.Property) string {
	switch p.KeyKind {
	case ast.KeyIdent:
		return r.member(p.Key)
	case ast.KeyString:
		if ast.IsIdentifierName(p.Key) {
			return r.member(p.Key)
		}
		return Quote(p.Key)
	}
	return p.Key
}

// method renders the parameters and body of an accessor or method.
func (r *RenderContext) method(fn *ast.Function) {
	pushed := 0
	if fn.Pseudo != ast.NoScope {
		if s := r.pseudo.Get(fn.Pseudo); s != nil {
			r.EnterPseudo(s)
			pushed++
		}
	}
	if fn.Scope != ast.NoScope {
		pushed += r.enterID(fn, fn.Scope)
	}
	r.params(fn.Params)
	r.space()
	saved := r.pending
	r.pending = false
	r.braced(fn.Body)
	r.pending = saved
	r.leaveN(pushed)
}

func (r *RenderContext) template(e *ast.Template) {
	if e.Tag != nil {
		r.expr(e.Tag, precLHS)
	}
	noIn := r.noIn
	r.noIn = 0
	for i, q := range e.Quasis {
		if i == 0 {
			r.tok("`" + q)
		} else {
			r.raw("}" + q)
		}
		if i < len(e.Exprs) {
			r.raw("${")
			r.expr(e.Exprs[i], precSequence)
		}
	}
	r.raw("`")
	r.noIn = noIn
}

// Quote returns s as a string literal, choosing the quote character that
// needs fewer escapes.
func Quote(s string) string {
	q := '"'
	if strings.Count(s, `"`) > strings.Count(s, "'") {
		q = '\''
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteRune(q)
	for i, c := range s {
		switch c {
		case q, '\\':
			b.WriteByte('\\')
			b.WriteRune(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		case '/':
			// </script
			if i > 0 && s[i-1] == '<' && strings.HasPrefix(strings.ToLower(s[i+1:]), "script") {
				b.WriteByte('\\')
			}
			b.WriteByte('/')
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(sprintf(`\x%02x`, c))
				continue
			}
			b.WriteRune(c)
		}
	}
	b.WriteRune(q)
	return b.String()
}
