package analysis

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// usageCounter counts references and declarations of every symbol and
// private member. Names that do not resolve become implicit symbols of the
// root scope; member names that are not private are collected in
// Context.PublicMembers.
type usageCounter struct {
	*cursor
}

func countUsage(ctx *Context) error {
	return ctx.walk(func(c *cursor, _ int) ast.Visitor { return &usageCounter{c} })
}

func (u *usageCounter) use(name string, at ast.Bookmark) {
	if name == "" {
		return
	}
	if sym := u.lookup(name); sym != nil {
		sym.Usage++
		return
	}
	sym, _ := u.ctx.Root().Define(name, scope.KindImplicit, at)
	sym.Usage++
}

func (u *usageCounter) member(name string) {
	if sym := u.current().LookupMember(name); sym != nil {
		sym.Usage++
		return
	}
	u.ctx.PublicMembers[name] = true
}

func (u *usageCounter) OnEnterNode(n ast.Node) bool {
	if fd, ok := n.(*ast.FunctionDecl); ok {
		u.use(fd.Func.Name, fd.Func.NameAt)
	}
	u.enter(n)

	switch n := n.(type) {
	case *ast.Ident:
		u.use(n.Name, n.Pos())
	case *ast.Declarator:
		u.use(n.Name, n.Pos())
	case *ast.Param:
		u.use(n.Name, n.Pos())
	case *ast.Catch:
		u.use(n.Param, n.ParamAt)
	case *ast.Function:
		if n.NameScope != ast.NoScope {
			u.use(n.Name, n.NameAt)
		}
	case *ast.Member:
		u.member(n.Name)
	case *ast.Property:
		if memberKey(n) {
			u.member(n.Key)
		}
	}
	return true
}

func (u *usageCounter) OnLeaveNode(n ast.Node) {
	u.leave(n)
}
