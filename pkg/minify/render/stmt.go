package render

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// Every statement renderer returns whether the statement must be
// terminated before another token may follow it. The caller stores the
// answer in pending; the separator is only written once the next
// statement starts, and dropped before a closing brace.

func (r *RenderContext) stmtList(list []ast.Stmt) {
	for _, s := range list {
		if _, ok := s.(*ast.Empty); ok {
			continue
		}
		r.terminate()
		r.newline()
		r.pending = r.stmt(s)
	}
}

func (r *RenderContext) stmt(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ExprStmt:
		if startsAmbiguously(s.X) {
			r.tok("(")
			r.expr(s.X, precSequence)
			r.tok(")")
		} else {
			r.expr(s.X, precSequence)
		}
		return true
	case *ast.VarDecl:
		r.varDecl(s)
		return true
	case *ast.FunctionDecl:
		r.function(s.Func)
		return false
	case *ast.Block:
		return r.block(s)
	case *ast.If:
		return r.ifStmt(s)
	case *ast.For:
		return r.forStmt(s)
	case *ast.ForIn:
		return r.forIn(s)
	case *ast.While:
		r.tok("while")
		r.space()
		r.paren(s.Test)
		return r.body(s.Body)
	case *ast.DoWhile:
		r.tok("do")
		r.pending = r.body(s.Body)
		r.terminate()
		if _, ok := s.Body.(*ast.Block); ok {
			r.space()
		} else {
			r.newline()
		}
		r.tok("while")
		r.space()
		r.paren(s.Test)
		return true
	case *ast.Switch:
		return r.switchStmt(s)
	case *ast.Try:
		return r.tryStmt(s)
	case *ast.Return:
		r.tok("return")
		if s.Value != nil {
			r.space()
			r.expr(s.Value, precSequence)
		}
		return true
	case *ast.Throw:
		r.tok("throw")
		r.space()
		r.expr(s.Value, precSequence)
		return true
	case *ast.Break:
		r.tok("break")
		if s.Label != "" {
			r.tok(s.Label)
		}
		return true
	case *ast.Continue:
		r.tok("continue")
		if s.Label != "" {
			r.tok(s.Label)
		}
		return true
	case *ast.Labelled:
		r.tok(s.Label)
		r.tok(":")
		return r.body(s.Body)
	case *ast.With:
		r.tok("with")
		r.space()
		r.paren(s.Object)
		return r.body(s.Body)
	case *ast.Debugger:
		r.tok("debugger")
		return true
	case *ast.Empty:
		r.tok(";")
		return false
	}
	r.fail(s, "cannot render %T", s)
	return false
}

// body renders the single statement of an if, loop, label or with.
func (r *RenderContext) body(s ast.Stmt) bool {
	switch s := s.(type) {
	case nil, *ast.Empty:
		r.tok(";")
		return false
	case *ast.Block:
		r.space()
		return r.block(s)
	}
	r.depth++
	r.newline()
	need := r.stmt(s)
	r.depth--
	return need
}

func (r *RenderContext) block(b *ast.Block) bool {
	pushed := r.enterNode(b, &b.Scoped)
	r.braced(b.List)
	r.leaveN(pushed)
	return false
}

// braced renders a statement list between braces.
func (r *RenderContext) braced(list []ast.Stmt) {
	r.tok("{")
	r.breakable()
	r.depth++
	r.stmtList(list)
	r.drop()
	r.depth--
	if hasStatements(list) {
		r.newline()
	}
	r.tok("}")
	r.breakable()
}

func hasStatements(list []ast.Stmt) bool {
	for _, s := range list {
		if _, ok := s.(*ast.Empty); !ok {
			return true
		}
	}
	return false
}

func (r *RenderContext) paren(e ast.Expr) {
	r.tok("(")
	r.expr(e, precSequence)
	r.tok(")")
}

func (r *RenderContext) varDecl(d *ast.VarDecl) {
	r.tok(d.Kind.String())
	for i, decl := range d.List {
		if i > 0 {
			r.comma()
		}
		r.tok(r.name(decl.Name))
		if decl.Init != nil {
			r.op("=")
			r.expr(decl.Init, precAssign)
		}
	}
}

func (r *RenderContext) ifStmt(s *ast.If) bool {
	r.tok("if")
	r.space()
	r.paren(s.Test)
	if s.Else == nil {
		return r.body(s.Then)
	}

	var need bool
	if danglingIf(s.Then) {
		r.space()
		r.braced([]ast.Stmt{s.Then})
	} else {
		need = r.body(s.Then)
	}
	r.pending = need
	r.terminate()
	if _, ok := s.Then.(*ast.Block); ok || danglingIf(s.Then) {
		r.space()
	} else {
		r.newline()
	}
	r.tok("else")
	if elseIf, ok := s.Else.(*ast.If); ok {
		r.space()
		return r.ifStmt(elseIf)
	}
	return r.body(s.Else)
}

// danglingIf reports whether s ends in an if without else that would
// capture a following else.
func danglingIf(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.If:
		if s.Else == nil {
			return true
		}
		return danglingIf(s.Else)
	case *ast.For:
		return danglingIf(s.Body)
	case *ast.ForIn:
		return danglingIf(s.Body)
	case *ast.While:
		return danglingIf(s.Body)
	case *ast.Labelled:
		return danglingIf(s.Body)
	case *ast.With:
		return danglingIf(s.Body)
	}
	return false
}

func (r *RenderContext) forStmt(s *ast.For) bool {
	pushed := r.enterNode(s, &s.Scoped)
	defer r.leaveN(pushed)

	r.tok("for")
	r.space()
	r.tok("(")
	r.noIn++
	switch init := s.Init.(type) {
	case *ast.VarDecl:
		r.varDecl(init)
	case ast.Expr:
		r.expr(init, precSequence)
	}
	r.noIn--
	r.tok(";")
	if s.Test != nil {
		r.space()
		r.expr(s.Test, precSequence)
	}
	r.tok(";")
	if s.Update != nil {
		r.space()
		r.expr(s.Update, precSequence)
	}
	r.tok(")")
	return r.body(s.Body)
}

func (r *RenderContext) forIn(s *ast.ForIn) bool {
	pushed := r.enterNode(s, &s.Scoped)
	defer r.leaveN(pushed)

	r.tok("for")
	r.space()
	r.tok("(")
	switch left := s.Left.(type) {
	case *ast.VarDecl:
		r.tok(left.Kind.String())
		for i, d := range left.List {
			if i > 0 {
				r.comma()
			}
			r.tok(r.name(d.Name))
		}
	case ast.Expr:
		r.noIn++
		r.expr(left, precLHS)
		r.noIn--
	}
	if s.Of {
		r.tok("of")
		r.expr(s.Right, precAssign)
	} else {
		r.tok("in")
		r.expr(s.Right, precSequence)
	}
	r.tok(")")
	return r.body(s.Body)
}

func (r *RenderContext) switchStmt(s *ast.Switch) bool {
	r.tok("switch")
	r.space()
	r.paren(s.Disc)
	r.space()

	pushed := r.enterNode(s, &s.Scoped)
	r.tok("{")
	r.breakable()
	r.depth++
	for _, c := range s.Cases {
		r.terminate()
		r.newline()
		if c.Test != nil {
			r.tok("case")
			r.space()
			r.expr(c.Test, precSequence)
		} else {
			r.tok("default")
		}
		r.tok(":")
		r.breakable()
		r.depth++
		r.stmtList(c.Body)
		r.depth--
	}
	r.drop()
	r.depth--
	if len(s.Cases) > 0 {
		r.newline()
	}
	r.tok("}")
	r.breakable()
	r.leaveN(pushed)
	return false
}

func (r *RenderContext) tryStmt(s *ast.Try) bool {
	r.tok("try")
	r.space()
	r.block(s.Block)
	if c := s.Catch; c != nil {
		r.space()
		r.tok("catch")
		pushed := r.enterNode(c, &c.Scoped)
		if c.Param != "" {
			r.space()
			r.tok("(")
			r.tok(r.name(c.Param))
			r.tok(")")
		}
		r.space()
		r.block(c.Body)
		r.leaveN(pushed)
	}
	if s.Finally != nil {
		r.space()
		r.tok("finally")
		r.space()
		r.block(s.Finally)
	}
	return false
}

// function renders a function declaration, expression or arrow function.
// The declaration name resolves in the enclosing scope, the name of a
// function expression in its own name scope.
func (r *RenderContext) function(fn *ast.Function) {
	pushed := 0
	if fn.Pseudo != ast.NoScope {
		if s := r.pseudo.Get(fn.Pseudo); s != nil {
			r.EnterPseudo(s)
			pushed++
		} else {
			r.fail(fn, "pseudo scope %d does not exist", fn.Pseudo)
		}
	}

	if !fn.Arrow {
		r.tok("function")
		if fn.IsDecl {
			r.tok(r.name(fn.Name))
		}
	}
	if fn.NameScope != ast.NoScope {
		pushed += r.enterID(fn, fn.NameScope)
	}
	if !fn.Arrow && !fn.IsDecl && fn.Name != "" {
		r.tok(r.name(fn.Name))
	}
	if fn.Scope != ast.NoScope {
		pushed += r.enterID(fn, fn.Scope)
	}
	defer r.leaveN(pushed)

	if fn.Arrow && len(fn.Params) == 1 && fn.Params[0].Default == nil && !fn.Params[0].Rest {
		r.tok(r.name(fn.Params[0].Name))
	} else {
		r.params(fn.Params)
	}

	if fn.Arrow {
		r.space()
		r.tight("=>")
		r.space()
		if fn.ExprBody != nil {
			if _, ok := leftmost(fn.ExprBody).(*ast.Object); ok {
				r.tok("(")
				r.expr(fn.ExprBody, precAssign)
				r.tok(")")
			} else {
				r.expr(fn.ExprBody, precAssign)
			}
			return
		}
	} else {
		r.space()
	}

	saved := r.pending
	r.pending = false
	noIn := r.noIn
	r.noIn = 0
	r.braced(fn.Body)
	r.noIn = noIn
	r.pending = saved
}

func (r *RenderContext) params(list []*ast.Param) {
	r.tok("(")
	for i, p := range list {
		if i > 0 {
			r.comma()
		}
		if p.Rest {
			r.tok("...")
		}
		r.tok(r.name(p.Name))
		if p.Default != nil {
			r.op("=")
			r.expr(p.Default, precAssign)
		}
	}
	r.tok(")")
}
