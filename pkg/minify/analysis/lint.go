package analysis

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// Lint codes.
const (
	LintDuplicate   = "duplicate-declaration"
	LintUnreachable = "unreachable-code"
	LintWith        = "with-statement"
	LintEval        = "direct-eval"
	LintRegExp      = "invalid-regexp"
	LintAssignTest  = "assignment-in-condition"
	LintMemberName  = "private-member-string"
)

// linter reports suspicious constructs. It never changes the tree.
type linter struct {
	*cursor
	members map[string]bool
}

func lint(ctx *Context) error {
	members := make(map[string]bool)
	if ctx.Options.Obfuscate {
		collectMembers(ctx.Scopes.Root(), members)
		collectMembers(ctx.Pseudo.Root(), members)
	}
	return ctx.walk(func(c *cursor, _ int) ast.Visitor { return &linter{c, members} })
}

// collectMembers gathers the names of the private members declared in s
// and below.
func collectMembers(s *scope.SymbolScope, into map[string]bool) {
	for _, sym := range s.Members.All() {
		into[sym.Name] = true
	}
	for _, c := range s.Children {
		collectMembers(c, into)
	}
}

func (l *linter) OnEnterNode(n ast.Node) bool {
	if fd, ok := n.(*ast.FunctionDecl); ok {
		l.duplicate(l.current().VarScope(), fd.Func.Name, fd.Func.NameAt)
	}
	l.enter(n)
	cur := l.current()

	switch n := n.(type) {
	case *ast.Program:
		l.unreachable(n.Body)
	case *ast.Block:
		l.unreachable(n.List)
	case *ast.Case:
		l.unreachable(n.Body)
	case *ast.Function:
		l.unreachable(n.Body)
		for _, p := range n.Params {
			l.duplicate(cur, p.Name, p.Pos())
		}
	case *ast.VarDecl:
		target := cur
		if n.Kind == ast.Var {
			target = cur.VarScope()
		}
		for _, d := range n.List {
			l.duplicate(target, d.Name, d.Pos())
		}
	case *ast.With:
		l.ctx.Warn(n.Pos(), LintWith, "with statement disables renaming in the enclosing scopes")
	case *ast.Call:
		if id, ok := n.Fn.(*ast.Ident); ok && id.Name == "eval" && l.lookup("eval") == nil {
			l.ctx.Warn(n.Pos(), LintEval, "direct eval disables renaming in the enclosing scopes")
		}
	case *ast.RegExp:
		l.regexp(n)
	case *ast.String:
		if l.members[n.Value] {
			l.ctx.Warn(n.Pos(), LintMemberName, "%q names a private member, which is renamed where accessed with a dot", n.Value)
		}
	case *ast.If:
		l.assignTest(n.Test)
	case *ast.While:
		l.assignTest(n.Test)
	case *ast.DoWhile:
		l.assignTest(n.Test)
	}
	return true
}

func (l *linter) OnLeaveNode(n ast.Node) {
	l.leave(n)
}

// duplicate warns on every declaration of name in s after the first one.
func (l *linter) duplicate(s *scope.SymbolScope, name string, at ast.Bookmark) {
	if s == nil {
		return
	}
	sym := s.Symbols.Find(name)
	if sym == nil || len(sym.Declarations) < 2 || sym.Declarations[0] == at {
		return
	}
	l.ctx.Warn(at, LintDuplicate, "%q is already declared at %s", name, sym.Declarations[0])
}

// unreachable warns once per list about the first statement following an
// unconditional jump. Hoisted function declarations are still reachable.
func (l *linter) unreachable(list []ast.Stmt) {
	jumped := false
	for _, s := range list {
		switch s.(type) {
		case *ast.FunctionDecl, *ast.Empty:
			continue
		}
		if jumped {
			l.ctx.Warn(s.Pos(), LintUnreachable, "unreachable code")
			return
		}
		switch s.(type) {
		case *ast.Return, *ast.Throw, *ast.Break, *ast.Continue:
			jumped = true
		}
	}
}

func (l *linter) regexp(n *ast.RegExp) {
	// regexp2 does not implement the unicode sets syntax.
	if strings.ContainsAny(n.Flags, "uv") {
		return
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	if strings.Contains(n.Flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(n.Flags, "m") {
		opts |= regexp2.Multiline
	}
	if _, err := regexp2.Compile(n.Pattern, opts); err != nil {
		l.ctx.Warn(n.Pos(), LintRegExp, "invalid regular expression /%s/: %v", n.Pattern, err)
	}
}

func (l *linter) assignTest(test ast.Expr) {
	if a, ok := test.(*ast.Assign); ok && a.Op == "=" {
		l.ctx.Warn(a.Pos(), LintAssignTest, "assignment used as a condition")
	}
}
