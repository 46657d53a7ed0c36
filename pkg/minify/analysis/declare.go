package analysis

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// declarer binds every declaration to its scope, mirrors it into the
// pseudo scope tree, feeds member assignments through the accessibility
// rules and taints scopes using eval or with.
type declarer struct {
	*cursor
}

func declare(ctx *Context) error {
	root := ctx.Root()
	for _, r := range ctx.Rules {
		root.AddRule(r)
	}
	return ctx.walk(func(c *cursor, _ int) ast.Visitor { return &declarer{c} })
}

func (d *declarer) define(s *scope.SymbolScope, name string, kind scope.SymbolKind, at ast.Bookmark) *scope.Symbol {
	sym, _ := s.Define(name, kind, at)
	pseudo := d.pseudo()
	if pseudo != nil {
		pseudo.Mirror(sym, at)
		d.ctx.mirrors[sym] = pseudo
	}
	return sym
}

func (d *declarer) rules(s *scope.SymbolScope, dirs []ast.Directive) {
	for _, dir := range dirs {
		access := scope.Private
		if dir.Public {
			access = scope.Public
		}
		r, err := scope.ParseAccessRule(dir.Spec, access)
		if err != nil {
			d.ctx.Warn(dir.At, "bad-directive", "%v", err)
			continue
		}
		r.At = dir.At
		s.AddRule(r)
	}
}

func (d *declarer) OnEnterNode(n ast.Node) bool {
	// Declarations that bind outside the node's own scope come first.
	if fd, ok := n.(*ast.FunctionDecl); ok {
		d.define(d.current().VarScope(), fd.Func.Name, scope.KindFunction, fd.Func.NameAt)
	}

	d.enter(n)
	cur := d.current()

	switch n := n.(type) {
	case *ast.Program:
		d.rules(cur, n.Directives)
	case *ast.Function:
		if n.NameScope != ast.NoScope {
			// Own name of a function expression lives one level above the body.
			d.define(d.ctx.Scopes.Get(n.NameScope), n.Name, scope.KindFunctionName, n.NameAt)
		}
		d.rules(cur, n.Directives)
		for _, p := range n.Params {
			d.define(cur, p.Name, scope.KindParam, p.Pos())
		}
	case *ast.Catch:
		if n.Param != "" {
			d.define(cur, n.Param, scope.KindCatch, n.ParamAt)
		}
	case *ast.VarDecl:
		target := cur
		if n.Kind == ast.Var {
			target = cur.VarScope()
		}
		for _, decl := range n.List {
			d.define(target, decl.Name, scope.KindOf(n.Kind), decl.Pos())
			if obj, ok := decl.Init.(*ast.Object); ok {
				d.objectMembers(decl.Name, obj)
			}
		}
	case *ast.Assign:
		d.assignment(n)
	case *ast.Call:
		if id, ok := n.Fn.(*ast.Ident); ok && id.Name == "eval" && d.lookup("eval") == nil {
			d.ctx.Logger.VV("declare: direct eval taints %s", cur)
			cur.Taint()
		}
	case *ast.With:
		d.ctx.Logger.VV("declare: with statement taints %s", cur)
		cur.Taint()
	}
	return true
}

func (d *declarer) OnLeaveNode(n ast.Node) {
	d.leave(n)
}

// assignment inspects target.member = value and target = {member: ...}.
// A dotted target whose base is not a bare identifier (or this) is not
// inspected; its children are still visited for declarations.
func (d *declarer) assignment(n *ast.Assign) {
	switch t := n.Target.(type) {
	case *ast.Member:
		base, ok := baseName(t.X)
		if !ok {
			return
		}
		d.current().ProcessAccessibilitySpecs(base, t.Name, t.Pos())
	case *ast.Ident:
		if obj, ok := n.Value.(*ast.Object); ok && n.Op == "=" {
			d.objectMembers(t.Name, obj)
		}
	}
}

func (d *declarer) objectMembers(target string, obj *ast.Object) {
	cur := d.current()
	for _, p := range obj.Props {
		if memberKey(p) {
			cur.ProcessAccessibilitySpecs(target, p.Key, p.Pos())
		}
	}
}

// baseName returns the name used to match member rules for the object
// expression of a member access: a bare identifier or this.
func baseName(x ast.Expr) (string, bool) {
	switch x := x.(type) {
	case *ast.Ident:
		return x.Name, true
	case *ast.This:
		return "this", true
	}
	return "", false
}

// memberKey reports whether a property key is a plain identifier name that
// member renaming may touch.
func memberKey(p *ast.Property) bool {
	switch p.Kind {
	case ast.PropSpread:
		return false
	}
	switch p.KeyKind {
	case ast.KeyIdent:
		return true
	case ast.KeyString:
		return ast.IsIdentifierName(p.Key)
	}
	return false
}
