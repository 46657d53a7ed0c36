package ast

// Rewriter replaces nodes bottom-up. Both hooks are optional. Expr receives
// every expression after its children were rewritten and returns its
// replacement. Stmt does the same for statements; returning nil removes the
// statement from a list, or leaves an Empty statement in single-statement
// positions.
type Rewriter struct {
	Expr func(Expr) Expr
	Stmt func(Stmt) Stmt
}

// Rewrite applies r to the subtree rooted at n and returns the new root.
func Rewrite(n Node, r Rewriter) Node {
	switch n := n.(type) {
	case Stmt:
		if s := r.stmt(n); s != nil {
			return s
		}
		return nil
	case Expr:
		return r.expr(n)
	default:
		r.children(n)
		return n
	}
}

func (r Rewriter) expr(e Expr) Expr {
	if e == nil {
		return nil
	}
	r.children(e)
	if r.Expr != nil {
		return r.Expr(e)
	}
	return e
}

func (r Rewriter) stmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	r.children(s)
	if r.Stmt != nil {
		return r.Stmt(s)
	}
	return s
}

// single rewrites a statement in a non-list position.
func (r Rewriter) single(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	out := r.stmt(s)
	if out == nil {
		e := &Empty{}
		e.pos = s.Pos()
		return e
	}
	return out
}

func (r Rewriter) list(in []Stmt) []Stmt {
	out := in[:0]
	for _, s := range in {
		if ns := r.stmt(s); ns != nil {
			out = append(out, ns)
		}
	}
	return out
}

func (r Rewriter) exprs(list []Expr) {
	for i, e := range list {
		list[i] = r.expr(e)
	}
}

func (r Rewriter) block(b *Block) {
	if b != nil {
		b.List = r.list(b.List)
	}
}

func (r Rewriter) children(n Node) {
	switch n := n.(type) {
	case *Program:
		n.Body = r.list(n.Body)
	case *Block:
		n.List = r.list(n.List)
	case *VarDecl:
		for _, d := range n.List {
			d.Init = r.expr(d.Init)
		}
	case *FunctionDecl:
		r.children(n.Func)
	case *If:
		n.Test = r.expr(n.Test)
		n.Then = r.single(n.Then)
		if n.Else != nil {
			n.Else = r.single(n.Else)
		}
	case *For:
		switch init := n.Init.(type) {
		case *VarDecl:
			if s := r.stmt(init); s != nil {
				n.Init = s
			} else {
				n.Init = nil
			}
		case Expr:
			n.Init = r.expr(init)
		}
		n.Test = r.expr(n.Test)
		n.Update = r.expr(n.Update)
		n.Body = r.single(n.Body)
	case *ForIn:
		if e, ok := n.Left.(Expr); ok {
			n.Left = r.expr(e)
		}
		n.Right = r.expr(n.Right)
		n.Body = r.single(n.Body)
	case *While:
		n.Test = r.expr(n.Test)
		n.Body = r.single(n.Body)
	case *DoWhile:
		n.Body = r.single(n.Body)
		n.Test = r.expr(n.Test)
	case *Switch:
		n.Disc = r.expr(n.Disc)
		for _, c := range n.Cases {
			c.Test = r.expr(c.Test)
			c.Body = r.list(c.Body)
		}
	case *Try:
		r.block(n.Block)
		if n.Catch != nil {
			r.block(n.Catch.Body)
		}
		r.block(n.Finally)
	case *Return:
		n.Value = r.expr(n.Value)
	case *Throw:
		n.Value = r.expr(n.Value)
	case *Labelled:
		n.Body = r.single(n.Body)
	case *With:
		n.Object = r.expr(n.Object)
		n.Body = r.single(n.Body)
	case *ExprStmt:
		n.X = r.expr(n.X)

	case *Function:
		for _, p := range n.Params {
			p.Default = r.expr(p.Default)
		}
		n.Body = r.list(n.Body)
		n.ExprBody = r.expr(n.ExprBody)
	case *Member:
		n.X = r.expr(n.X)
	case *Index:
		n.X = r.expr(n.X)
		n.Index = r.expr(n.Index)
	case *Call:
		n.Fn = r.expr(n.Fn)
		r.exprs(n.Args)
	case *New:
		n.Fn = r.expr(n.Fn)
		r.exprs(n.Args)
	case *Unary:
		n.X = r.expr(n.X)
	case *Binary:
		n.X = r.expr(n.X)
		n.Y = r.expr(n.Y)
	case *Assign:
		n.Target = r.expr(n.Target)
		n.Value = r.expr(n.Value)
	case *Conditional:
		n.Test = r.expr(n.Test)
		n.Then = r.expr(n.Then)
		n.Else = r.expr(n.Else)
	case *Sequence:
		r.exprs(n.List)
	case *Object:
		for _, p := range n.Props {
			p.Computed = r.expr(p.Computed)
			p.Value = r.expr(p.Value)
		}
	case *Array:
		r.exprs(n.List)
	case *Template:
		n.Tag = r.expr(n.Tag)
		r.exprs(n.Exprs)
	case *Spread:
		n.X = r.expr(n.X)
	}
}
