package parse

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf16"

	gast "github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/token"
	"github.com/dop251/goja/unistring"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// funcRange remembers the source span of a converted function so directive
// comments can be attached to the innermost one.
type funcRange struct {
	fn       *ast.Function
	from, to int
}

type converter struct {
	file     *file.File
	filename string
	funcs    []funcRange
}

// bailout carries a conversion error up to program().
type bailout struct{ err *SyntaxError }

type positioned interface{ SetPos(ast.Bookmark) }

func (c *converter) offset(idx file.Idx) int {
	return int(idx) - c.file.Base()
}

func (c *converter) bookmarkAt(offset int) ast.Bookmark {
	p := c.file.Position(offset)
	return ast.Bookmark{File: c.filename, Line: p.Line, Column: p.Column, Offset: offset}
}

func (c *converter) bookmark(idx file.Idx) ast.Bookmark {
	if idx <= 0 {
		return ast.Bookmark{File: c.filename}
	}
	return c.bookmarkAt(c.offset(idx))
}

func (c *converter) fail(idx file.Idx, format string, args ...interface{}) {
	panic(bailout{&SyntaxError{At: c.bookmark(idx), Message: fmt.Sprintf(format, args...)}})
}

func (c *converter) unsupported(idx file.Idx, what string) {
	c.fail(idx, "unsupported syntax: %s", what)
}

func at[T positioned](c *converter, n T, idx file.Idx) T {
	n.SetPos(c.bookmark(idx))
	return n
}

func (c *converter) program(p *gast.Program) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	prog = &ast.Program{File: c.filename, Warnings: true}
	prog.SetPos(ast.Bookmark{File: c.filename, Line: 1, Column: 1})
	prog.Body = c.stmts(p.Body)
	return prog, nil
}

func (c *converter) stmts(list []gast.Statement) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(list))
	for _, s := range list {
		out = append(out, c.stmt(s))
	}
	return out
}

func (c *converter) block(b *gast.BlockStatement) *ast.Block {
	return at(c, &ast.Block{List: c.stmts(b.List)}, b.LeftBrace)
}

func (c *converter) optStmt(s gast.Statement) ast.Stmt {
	if s == nil {
		return nil
	}
	return c.stmt(s)
}

func (c *converter) stmt(s gast.Statement) ast.Stmt {
	switch s := s.(type) {
	case *gast.BlockStatement:
		return c.block(s)
	case *gast.EmptyStatement:
		return at(c, &ast.Empty{}, s.Semicolon)
	case *gast.ExpressionStatement:
		return at(c, &ast.ExprStmt{X: c.expr(s.Expression)}, s.Idx0())
	case *gast.VariableStatement:
		return c.varDecl(ast.Var, s.List, s.Var)
	case *gast.LexicalDeclaration:
		kind := ast.Let
		if s.Token == token.CONST {
			kind = ast.Const
		}
		return c.varDecl(kind, s.List, s.Idx)
	case *gast.FunctionDeclaration:
		fn := c.function(s.Function)
		fn.IsDecl = true
		return at(c, &ast.FunctionDecl{Func: fn}, s.Function.Function)
	case *gast.IfStatement:
		return at(c, &ast.If{
			Test: c.expr(s.Test),
			Then: c.stmt(s.Consequent),
			Else: c.optStmt(s.Alternate),
		}, s.If)
	case *gast.ForStatement:
		n := at(c, &ast.For{
			Test:   c.optExpr(s.Test),
			Update: c.optExpr(s.Update),
		}, s.For)
		switch init := s.Initializer.(type) {
		case nil:
		case *gast.ForLoopInitializerExpression:
			n.Init = c.expr(init.Expression)
		case *gast.ForLoopInitializerVarDeclList:
			n.Init = c.varDecl(ast.Var, init.List, init.Var)
		case *gast.ForLoopInitializerLexicalDecl:
			kind := ast.Let
			if init.LexicalDeclaration.Token == token.CONST {
				kind = ast.Const
			}
			n.Init = c.varDecl(kind, init.LexicalDeclaration.List, init.LexicalDeclaration.Idx)
		}
		n.Body = c.stmt(s.Body)
		return n
	case *gast.ForInStatement:
		return c.forIn(false, s.For, s.Into, s.Source, s.Body)
	case *gast.ForOfStatement:
		return c.forIn(true, s.For, s.Into, s.Source, s.Body)
	case *gast.WhileStatement:
		return at(c, &ast.While{Test: c.expr(s.Test), Body: c.stmt(s.Body)}, s.While)
	case *gast.DoWhileStatement:
		return at(c, &ast.DoWhile{Body: c.stmt(s.Body), Test: c.expr(s.Test)}, s.Do)
	case *gast.SwitchStatement:
		n := at(c, &ast.Switch{Disc: c.expr(s.Discriminant)}, s.Switch)
		for _, cs := range s.Body {
			n.Cases = append(n.Cases, at(c, &ast.Case{
				Test: c.optExpr(cs.Test),
				Body: c.stmts(cs.Consequent),
			}, cs.Case))
		}
		return n
	case *gast.TryStatement:
		n := at(c, &ast.Try{Block: c.block(s.Body)}, s.Try)
		if s.Catch != nil {
			n.Catch = c.catch(s.Catch)
		}
		if s.Finally != nil {
			n.Finally = c.block(s.Finally)
		}
		return n
	case *gast.ReturnStatement:
		return at(c, &ast.Return{Value: c.optExpr(s.Argument)}, s.Return)
	case *gast.ThrowStatement:
		return at(c, &ast.Throw{Value: c.expr(s.Argument)}, s.Throw)
	case *gast.BranchStatement:
		label := ""
		if s.Label != nil {
			label = s.Label.Name.String()
		}
		if s.Token == token.CONTINUE {
			return at(c, &ast.Continue{Label: label}, s.Idx)
		}
		return at(c, &ast.Break{Label: label}, s.Idx)
	case *gast.LabelledStatement:
		return at(c, &ast.Labelled{Label: s.Label.Name.String(), Body: c.stmt(s.Statement)}, s.Label.Idx)
	case *gast.WithStatement:
		return at(c, &ast.With{Object: c.expr(s.Object), Body: c.stmt(s.Body)}, s.With)
	case *gast.DebuggerStatement:
		return at(c, &ast.Debugger{}, s.Debugger)
	case *gast.ClassDeclaration:
		c.unsupported(s.Idx0(), "class")
	case *gast.BadStatement:
		c.fail(s.From, "bad statement")
	}
	c.unsupported(s.Idx0(), fmt.Sprintf("%T", s))
	return nil
}

func (c *converter) catch(s *gast.CatchStatement) *ast.Catch {
	n := at(c, &ast.Catch{Body: c.block(s.Body)}, s.Catch)
	switch p := s.Parameter.(type) {
	case nil:
	case *gast.Identifier:
		n.Param = p.Name.String()
		n.ParamAt = c.bookmark(p.Idx)
	default:
		c.unsupported(p.Idx0(), "destructuring")
	}
	return n
}

func (c *converter) forIn(of bool, idx file.Idx, into gast.ForInto, source gast.Expression, body gast.Statement) ast.Stmt {
	n := at(c, &ast.ForIn{Of: of}, idx)
	switch into := into.(type) {
	case *gast.ForIntoVar:
		n.Left = c.varDecl(ast.Var, []*gast.Binding{into.Binding}, into.Binding.Idx0())
	case *gast.ForDeclaration:
		id, ok := into.Target.(*gast.Identifier)
		if !ok {
			c.unsupported(into.Idx, "destructuring")
		}
		kind := ast.Let
		if into.IsConst {
			kind = ast.Const
		}
		decl := at(c, &ast.VarDecl{Kind: kind}, into.Idx)
		decl.List = []*ast.Declarator{at(c, &ast.Declarator{Name: id.Name.String()}, id.Idx)}
		n.Left = decl
	case *gast.ForIntoExpression:
		n.Left = c.expr(into.Expression)
	}
	n.Right = c.expr(source)
	n.Body = c.stmt(body)
	return n
}

func (c *converter) varDecl(kind ast.VarKind, list []*gast.Binding, idx file.Idx) *ast.VarDecl {
	n := at(c, &ast.VarDecl{Kind: kind}, idx)
	for _, b := range list {
		id, ok := b.Target.(*gast.Identifier)
		if !ok {
			c.unsupported(b.Target.Idx0(), "destructuring")
		}
		n.List = append(n.List, at(c, &ast.Declarator{
			Name: id.Name.String(),
			Init: c.optExpr(b.Initializer),
		}, id.Idx))
	}
	return n
}

func (c *converter) params(list *gast.ParameterList) []*ast.Param {
	if list == nil {
		return nil
	}
	var out []*ast.Param
	for _, b := range list.List {
		id, ok := b.Target.(*gast.Identifier)
		if !ok {
			c.unsupported(b.Target.Idx0(), "destructuring")
		}
		out = append(out, at(c, &ast.Param{Name: id.Name.String(), Default: c.optExpr(b.Initializer)}, id.Idx))
	}
	if list.Rest != nil {
		id, ok := list.Rest.(*gast.Identifier)
		if !ok {
			c.unsupported(list.Rest.Idx0(), "destructuring")
		}
		out = append(out, at(c, &ast.Param{Name: id.Name.String(), Rest: true}, id.Idx))
	}
	return out
}

func (c *converter) function(f *gast.FunctionLiteral) *ast.Function {
	switch {
	case f.Async:
		c.unsupported(f.Function, "async function")
	case f.Generator:
		c.unsupported(f.Function, "generator")
	}
	fn := at(c, &ast.Function{Params: c.params(f.ParameterList)}, f.Function)
	if f.Name != nil {
		fn.Name = f.Name.Name.String()
		fn.NameAt = c.bookmark(f.Name.Idx)
	}
	fn.Body = c.stmts(f.Body.List)
	c.funcs = append(c.funcs, funcRange{fn: fn, from: c.offset(f.Idx0()), to: c.offset(f.Idx1())})
	return fn
}

func (c *converter) arrow(f *gast.ArrowFunctionLiteral) *ast.Function {
	if f.Async {
		c.unsupported(f.Start, "async function")
	}
	fn := at(c, &ast.Function{Arrow: true, Params: c.params(f.ParameterList)}, f.Start)
	switch body := f.Body.(type) {
	case *gast.BlockStatement:
		fn.Body = c.stmts(body.List)
	case *gast.ExpressionBody:
		fn.ExprBody = c.expr(body.Expression)
	}
	c.funcs = append(c.funcs, funcRange{fn: fn, from: c.offset(f.Idx0()), to: c.offset(f.Idx1())})
	return fn
}

func (c *converter) optExpr(e gast.Expression) ast.Expr {
	if e == nil {
		return nil
	}
	return c.expr(e)
}

func (c *converter) exprs(list []gast.Expression) []ast.Expr {
	out := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, c.optExpr(e))
	}
	return out
}

func (c *converter) expr(e gast.Expression) ast.Expr {
	switch e := e.(type) {
	case *gast.Identifier:
		return at(c, &ast.Ident{Name: e.Name.String()}, e.Idx)
	case *gast.ThisExpression:
		return at(c, &ast.This{}, e.Idx)
	case *gast.NullLiteral:
		return at(c, &ast.Null{}, e.Idx)
	case *gast.BooleanLiteral:
		return at(c, &ast.Bool{Value: e.Value}, e.Idx)
	case *gast.NumberLiteral:
		return c.number(e)
	case *gast.StringLiteral:
		value, verbatim := decodeString(e.Value)
		return at(c, &ast.String{Value: value, Raw: e.Literal, Verbatim: verbatim}, e.Idx)
	case *gast.RegExpLiteral:
		return at(c, &ast.RegExp{Pattern: e.Pattern, Flags: e.Flags}, e.Idx)
	case *gast.TemplateLiteral:
		n := at(c, &ast.Template{Tag: c.optExpr(e.Tag)}, e.Idx0())
		for _, el := range e.Elements {
			n.Quasis = append(n.Quasis, el.Literal)
		}
		n.Exprs = c.exprs(e.Expressions)
		return n
	case *gast.ArrayLiteral:
		return at(c, &ast.Array{List: c.exprs(e.Value)}, e.LeftBracket)
	case *gast.ObjectLiteral:
		return c.object(e)
	case *gast.FunctionLiteral:
		return c.function(e)
	case *gast.ArrowFunctionLiteral:
		return c.arrow(e)
	case *gast.DotExpression:
		return at(c, &ast.Member{X: c.expr(e.Left), Name: e.Identifier.Name.String()}, e.Idx0())
	case *gast.BracketExpression:
		return at(c, &ast.Index{X: c.expr(e.Left), Index: c.expr(e.Member)}, e.Idx0())
	case *gast.CallExpression:
		return at(c, &ast.Call{Fn: c.expr(e.Callee), Args: c.exprs(e.ArgumentList)}, e.Idx0())
	case *gast.NewExpression:
		return at(c, &ast.New{Fn: c.expr(e.Callee), Args: c.exprs(e.ArgumentList)}, e.New)
	case *gast.UnaryExpression:
		return at(c, &ast.Unary{Op: e.Operator.String(), X: c.expr(e.Operand), Postfix: e.Postfix}, e.Idx0())
	case *gast.BinaryExpression:
		return at(c, &ast.Binary{Op: e.Operator.String(), X: c.expr(e.Left), Y: c.expr(e.Right)}, e.Idx0())
	case *gast.AssignExpression:
		op := "="
		if e.Operator != token.ASSIGN {
			op = e.Operator.String() + "="
		}
		target := c.expr(e.Left)
		switch target.(type) {
		case *ast.Ident, *ast.Member, *ast.Index:
		default:
			c.unsupported(e.Idx0(), "destructuring")
		}
		return at(c, &ast.Assign{Op: op, Target: target, Value: c.expr(e.Right)}, e.Idx0())
	case *gast.ConditionalExpression:
		return at(c, &ast.Conditional{Test: c.expr(e.Test), Then: c.expr(e.Consequent), Else: c.expr(e.Alternate)}, e.Idx0())
	case *gast.SequenceExpression:
		return at(c, &ast.Sequence{List: c.exprs(e.Sequence)}, e.Idx0())
	case *gast.SpreadElement:
		return at(c, &ast.Spread{X: c.expr(e.Expression)}, e.Idx0())

	case *gast.ClassLiteral:
		c.unsupported(e.Idx0(), "class")
	case *gast.YieldExpression:
		c.unsupported(e.Idx0(), "generator")
	case *gast.AwaitExpression:
		c.unsupported(e.Idx0(), "async function")
	case *gast.OptionalChain, *gast.Optional:
		c.unsupported(e.Idx0(), "optional chaining")
	case *gast.SuperExpression:
		c.unsupported(e.Idx0(), "super")
	case *gast.MetaProperty:
		c.unsupported(e.Idx0(), "new.target")
	case *gast.PrivateDotExpression:
		c.unsupported(e.Idx0(), "private name")
	case *gast.ObjectPattern, *gast.ArrayPattern:
		c.unsupported(e.Idx0(), "destructuring")
	case *gast.BadExpression:
		c.fail(e.From, "bad expression")
	}
	c.unsupported(e.Idx0(), fmt.Sprintf("%T", e))
	return nil
}

func (c *converter) number(e *gast.NumberLiteral) ast.Expr {
	n := at(c, &ast.Number{Raw: e.Literal}, e.Idx)
	switch v := e.Value.(type) {
	case int64:
		n.Value = float64(v)
	case float64:
		n.Value = v
	case *big.Int:
		c.unsupported(e.Idx, "bigint")
	default:
		c.unsupported(e.Idx, fmt.Sprintf("number literal %s", e.Literal))
	}
	return n
}

func (c *converter) object(e *gast.ObjectLiteral) ast.Expr {
	n := at(c, &ast.Object{}, e.LeftBrace)
	for _, p := range e.Value {
		switch p := p.(type) {
		case *gast.PropertyKeyed:
			prop := at(c, &ast.Property{}, p.Key.Idx0())
			c.propertyKey(prop, p)
			switch p.Kind {
			case gast.PropertyKindGet:
				prop.Kind = ast.PropGet
			case gast.PropertyKindSet:
				prop.Kind = ast.PropSet
			case gast.PropertyKindMethod:
				prop.Kind = ast.PropMethod
			default:
				prop.Kind = ast.PropValue
			}
			prop.Value = c.expr(p.Value)
			n.Props = append(n.Props, prop)
		case *gast.PropertyShort:
			if p.Initializer != nil {
				c.unsupported(p.Name.Idx, "destructuring")
			}
			name := p.Name.Name.String()
			n.Props = append(n.Props, at(c, &ast.Property{
				Kind:    ast.PropShorthand,
				Key:     name,
				KeyKind: ast.KeyIdent,
				Value:   at(c, &ast.Ident{Name: name}, p.Name.Idx),
			}, p.Name.Idx))
		case *gast.SpreadElement:
			n.Props = append(n.Props, at(c, &ast.Property{
				Kind:  ast.PropSpread,
				Value: c.expr(p.Expression),
			}, p.Idx0()))
		default:
			c.unsupported(p.Idx0(), fmt.Sprintf("%T", p))
		}
	}
	return n
}

func (c *converter) propertyKey(prop *ast.Property, p *gast.PropertyKeyed) {
	if p.Computed {
		prop.KeyKind = ast.KeyComputed
		prop.Computed = c.expr(p.Key)
		return
	}
	switch k := p.Key.(type) {
	case *gast.StringLiteral:
		prop.Key, _ = decodeString(k.Value)
		prop.KeyKind = ast.KeyIdent
		if strings.HasPrefix(k.Literal, `"`) || strings.HasPrefix(k.Literal, `'`) {
			prop.KeyKind = ast.KeyString
		}
	case *gast.NumberLiteral:
		prop.Key = k.Literal
		prop.KeyKind = ast.KeyNumber
	case *gast.PrivateIdentifier:
		c.unsupported(k.Idx, "private name")
	default:
		c.unsupported(p.Key.Idx0(), "property key")
	}
}

// decodeString converts a parsed literal to Go text. Lone surrogates do not
// survive UTF-8, in which case verbatim is true and the raw source must be
// emitted instead.
func decodeString(s unistring.String) (value string, verbatim bool) {
	u := s.AsUtf16()
	if u == nil {
		return s.String(), false
	}
	u = u[1:]
	for i := 0; i < len(u); i++ {
		switch {
		case utf16.IsSurrogate(rune(u[i])):
			if u[i] >= 0xDC00 || i+1 >= len(u) || u[i+1] < 0xDC00 || u[i+1] > 0xDFFF {
				return s.String(), true
			}
			i++
		}
	}
	return s.String(), false
}
