package analysis

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// scopeBuilder creates the scope of every scope-introducing node, top-down,
// before the cursor enters it.
type scopeBuilder struct {
	*cursor
}

func buildScopes(ctx *Context) error {
	return ctx.walk(func(c *cursor, _ int) ast.Visitor { return &scopeBuilder{c} })
}

func (b *scopeBuilder) OnEnterNode(n ast.Node) bool {
	tree := b.ctx.Scopes
	switch n := n.(type) {
	case *ast.Program:
		if n.Scope == ast.NoScope {
			n.Scope = tree.Root().ID
			n.Pseudo = b.ctx.Pseudo.Root().ID
		}
	case *ast.Function:
		if n.Scope == ast.NoScope {
			outer := b.current()
			if n.Name != "" && !n.IsDecl && !n.Arrow {
				ns := tree.New(outer, scope.ScopeName, n.Pos())
				n.NameScope = ns.ID
				outer = ns
			}
			n.Scope = tree.New(outer, scope.ScopeFunction, n.Pos()).ID
			n.Pseudo = b.ctx.Pseudo.New(b.pseudo(), scope.ScopePseudo, n.Pos()).ID
		}
	case *ast.Catch:
		if n.Scope == ast.NoScope {
			n.Scope = tree.New(b.current(), scope.ScopeCatch, n.Pos()).ID
		}
	case *ast.Block:
		b.lexical(n, &n.Scoped, hasLexical(n.List))
	case *ast.For:
		decl, ok := n.Init.(*ast.VarDecl)
		b.lexical(n, &n.Scoped, ok && decl.Kind != ast.Var)
	case *ast.ForIn:
		decl, ok := n.Left.(*ast.VarDecl)
		b.lexical(n, &n.Scoped, ok && decl.Kind != ast.Var)
	case *ast.Switch:
		lex := false
		for _, cs := range n.Cases {
			lex = lex || hasLexical(cs.Body)
		}
		b.lexical(n, &n.Scoped, lex)
	}
	b.enter(n)
	return true
}

func (b *scopeBuilder) OnLeaveNode(n ast.Node) {
	b.leave(n)
}

func (b *scopeBuilder) lexical(n ast.Node, sc *ast.Scoped, needed bool) {
	if needed && sc.Scope == ast.NoScope {
		sc.Scope = b.ctx.Scopes.New(b.current(), scope.ScopeBlock, n.Pos()).ID
	}
}

func hasLexical(list []ast.Stmt) bool {
	for _, s := range list {
		if d, ok := s.(*ast.VarDecl); ok && d.Kind != ast.Var {
			return true
		}
	}
	return false
}
