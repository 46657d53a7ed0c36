package ast

import "fmt"

// Visitor is implemented by every analysis pass. OnEnterNode returning
// false skips the node's children; OnLeaveNode is always called.
type Visitor interface {
	OnEnterNode(n Node) bool
	OnLeaveNode(n Node)
}

// Visit runs v over n and its subtree in source order.
func Visit(n Node, v Visitor) {
	if n == nil {
		return
	}
	if v.OnEnterNode(n) {
		VisitChildNodes(n, v)
	}
	v.OnLeaveNode(n)
}

func visitStmts(list []Stmt, v Visitor) {
	for _, s := range list {
		Visit(s, v)
	}
}

func visitExprs(list []Expr, v Visitor) {
	for _, e := range list {
		if e != nil {
			Visit(e, v)
		}
	}
}

func visitExpr(e Expr, v Visitor) {
	if e != nil {
		Visit(e, v)
	}
}

func visitStmt(s Stmt, v Visitor) {
	if s != nil {
		Visit(s, v)
	}
}

// VisitChildNodes visits each direct child of n in source order.
func VisitChildNodes(n Node, v Visitor) {
	switch n := n.(type) {
	case *Program:
		visitStmts(n.Body, v)
	case *Block:
		visitStmts(n.List, v)
	case *VarDecl:
		for _, d := range n.List {
			Visit(d, v)
		}
	case *Declarator:
		visitExpr(n.Init, v)
	case *FunctionDecl:
		Visit(n.Func, v)
	case *If:
		visitExpr(n.Test, v)
		visitStmt(n.Then, v)
		visitStmt(n.Else, v)
	case *For:
		if n.Init != nil {
			Visit(n.Init, v)
		}
		visitExpr(n.Test, v)
		visitExpr(n.Update, v)
		visitStmt(n.Body, v)
	case *ForIn:
		Visit(n.Left, v)
		visitExpr(n.Right, v)
		visitStmt(n.Body, v)
	case *While:
		visitExpr(n.Test, v)
		visitStmt(n.Body, v)
	case *DoWhile:
		visitStmt(n.Body, v)
		visitExpr(n.Test, v)
	case *Switch:
		visitExpr(n.Disc, v)
		for _, c := range n.Cases {
			Visit(c, v)
		}
	case *Case:
		visitExpr(n.Test, v)
		visitStmts(n.Body, v)
	case *Try:
		Visit(n.Block, v)
		if n.Catch != nil {
			Visit(n.Catch, v)
		}
		if n.Finally != nil {
			Visit(n.Finally, v)
		}
	case *Catch:
		Visit(n.Body, v)
	case *Return:
		visitExpr(n.Value, v)
	case *Throw:
		visitExpr(n.Value, v)
	case *Labelled:
		visitStmt(n.Body, v)
	case *With:
		visitExpr(n.Object, v)
		visitStmt(n.Body, v)
	case *ExprStmt:
		visitExpr(n.X, v)
	case *Break, *Continue, *Debugger, *Empty:

	case *Function:
		for _, p := range n.Params {
			Visit(p, v)
		}
		visitStmts(n.Body, v)
		visitExpr(n.ExprBody, v)
	case *Param:
		visitExpr(n.Default, v)

	case *Member:
		visitExpr(n.X, v)
	case *Index:
		visitExpr(n.X, v)
		visitExpr(n.Index, v)
	case *Call:
		visitExpr(n.Fn, v)
		visitExprs(n.Args, v)
	case *New:
		visitExpr(n.Fn, v)
		visitExprs(n.Args, v)
	case *Unary:
		visitExpr(n.X, v)
	case *Binary:
		visitExpr(n.X, v)
		visitExpr(n.Y, v)
	case *Assign:
		visitExpr(n.Target, v)
		visitExpr(n.Value, v)
	case *Conditional:
		visitExpr(n.Test, v)
		visitExpr(n.Then, v)
		visitExpr(n.Else, v)
	case *Sequence:
		visitExprs(n.List, v)
	case *Object:
		for _, p := range n.Props {
			Visit(p, v)
		}
	case *Property:
		visitExpr(n.Computed, v)
		visitExpr(n.Value, v)
	case *Array:
		visitExprs(n.List, v)
	case *Template:
		visitExpr(n.Tag, v)
		visitExprs(n.Exprs, v)
	case *Spread:
		visitExpr(n.X, v)
	case *Ident, *Number, *String, *Bool, *Null, *RegExp, *This:

	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
}

// Inspect calls f for every node of the subtree in depth-first order.
// Returning false from f skips the node's children.
func Inspect(n Node, f func(Node) bool) {
	Visit(n, inspector(f))
}

type inspector func(Node) bool

func (f inspector) OnEnterNode(n Node) bool { return f(n) }
func (inspector) OnLeaveNode(Node)          {}
