package analysis

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// simplify folds literal expressions and drops branches whose condition is
// a literal. It is a purely local bottom-up rewrite.
func simplify(ctx *Context) error {
	folded := 0
	r := ast.Rewriter{
		Expr: func(e ast.Expr) ast.Expr {
			out := simplifyExpr(e)
			if out != e {
				folded++
			}
			return out
		},
		Stmt: func(s ast.Stmt) ast.Stmt {
			return simplifyStmt(s)
		},
	}
	for i, u := range ctx.Units {
		ctx.Units[i] = ast.Rewrite(u, r).(*ast.Program)
	}
	if folded > 0 {
		ctx.Logger.VV("simplify: folded %d expressions", folded)
	}
	return nil
}

func simplifyExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Unary:
		if ast.IsLiteral(e.X) {
			if r := foldUnary(e.Op, e.X, e.Pos()); r != nil {
				return r
			}
		}
	case *ast.Binary:
		if !ast.IsLiteral(e.X) {
			return e
		}
		if isLogical(e.Op) {
			if r := foldLogical(e.Op, e.X, e.Y); r != nil && detachable(r) {
				return r
			}
			return e
		}
		if ast.IsLiteral(e.Y) {
			if r := foldBinary(e.Op, e.X, e.Y, e.Pos()); r != nil {
				return r
			}
		}
	case *ast.Conditional:
		if t, ok := truthy(e.Test); ok {
			r := e.Else
			if t {
				r = e.Then
			}
			if detachable(r) {
				return r
			}
		}
	case *ast.Index:
		// x["name"] is x.name
		if s, ok := plainString(e.Index); ok && ast.IsIdentifierName(s.Value) {
			return place(&ast.Member{X: e.X, Name: s.Value}, e.Pos())
		}
	}
	return e
}

// detachable reports whether e may replace the expression it was selected
// from. A member access would change the receiver of a call and eval would
// turn into a direct eval.
func detachable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Member, *ast.Index:
		return false
	case *ast.Ident:
		return e.Name != "eval"
	}
	return true
}

func simplifyStmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.If:
		s.Then = unwrapBlock(s.Then)
		if s.Else != nil {
			s.Else = unwrapBlock(s.Else)
			if _, empty := s.Else.(*ast.Empty); empty {
				s.Else = nil
			}
		}
		t, ok := truthy(s.Test)
		if !ok {
			return s
		}
		if t {
			if s.Else == nil || !hoists(s.Else) {
				return s.Then
			}
			return s
		}
		if hoists(s.Then) {
			return s
		}
		if s.Else == nil {
			return nil
		}
		return s.Else
	case *ast.While:
		s.Body = unwrapBlock(s.Body)
		if t, ok := truthy(s.Test); ok && !t && !hoists(s.Body) {
			return nil
		}
	case *ast.For:
		s.Body = unwrapBlock(s.Body)
	case *ast.ForIn:
		s.Body = unwrapBlock(s.Body)
	case *ast.DoWhile:
		s.Body = unwrapBlock(s.Body)
	case *ast.Labelled:
		s.Body = unwrapBlock(s.Body)
	case *ast.With:
		s.Body = unwrapBlock(s.Body)
	case *ast.ExprStmt:
		// a folded string at the top of a body would read as a directive
		if str, ok := s.X.(*ast.String); ok && str.Raw == "" {
			return nil
		}
	}
	return s
}

// unwrapBlock replaces a braced body holding a single statement by that
// statement. Blocks owning a scope and function declarations stay wrapped.
func unwrapBlock(s ast.Stmt) ast.Stmt {
	b, ok := s.(*ast.Block)
	if !ok || b.OwnsScope() {
		return s
	}
	switch len(b.List) {
	case 0:
		return place(&ast.Empty{}, b.Pos())
	case 1:
		switch b.List[0].(type) {
		case *ast.FunctionDecl, *ast.VarDecl:
			return s
		}
		return b.List[0]
	}
	return s
}

// hoists reports whether dropping s would remove a var or function
// declaration visible outside of it.
func hoists(s ast.Stmt) bool {
	found := false
	ast.Inspect(s, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FunctionDecl:
			found = true
		case *ast.VarDecl:
			if n.Kind == ast.Var {
				found = true
			}
		case *ast.Function:
			return false
		}
		return !found
	})
	return found
}
