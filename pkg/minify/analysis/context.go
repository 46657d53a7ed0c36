// Package analysis runs the ordered passes that build and refine the scope
// model and simplify the tree before rendering.
package analysis

import (
	"fmt"

	"github.com/lcalzada-xor/minime/pkg/logger"
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
	"github.com/lcalzada-xor/minime/pkg/models"
)

// Options selects the optional passes.
type Options struct {
	Obfuscate    bool
	DetectConsts bool
}

// StructuralError reports a tree whose scope annotations are inconsistent.
// It aborts the compilation.
type StructuralError struct {
	Bookmark ast.Bookmark
	Message  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: internal error: %s", e.Bookmark, e.Message)
}

// Context holds the state shared by every pass of one compilation: all
// units, one root scope, and the parallel pseudo scope tree.
type Context struct {
	Units   []*ast.Program
	Scopes  *scope.Tree
	Pseudo  *scope.Tree
	Options Options
	Logger  *logger.Logger

	Diagnostics []models.Diagnostic
	// PublicMembers collects member names that are not private members,
	// claimed with the member allocator before rendering.
	PublicMembers map[string]bool
	// Rules are applied to the root scope before the first unit is bound.
	Rules []scope.AccessRule

	ConstantsFolded int

	warnings map[string]bool
	mirrors  map[*scope.Symbol]*scope.SymbolScope
	consts   *constState
}

// NewContext creates a context over units.
func NewContext(units []*ast.Program, opts Options, log *logger.Logger) *Context {
	ctx := &Context{
		Units:         units,
		Scopes:        scope.NewTree(scope.ScopeRoot),
		Pseudo:        scope.NewTree(scope.ScopePseudo),
		Options:       opts,
		Logger:        log,
		PublicMembers: make(map[string]bool),
		warnings:      make(map[string]bool),
		mirrors:       make(map[*scope.Symbol]*scope.SymbolScope),
	}
	for _, u := range units {
		ctx.warnings[u.File] = u.Warnings
	}
	return ctx
}

// Root returns the scope shared by all units.
func (ctx *Context) Root() *scope.SymbolScope { return ctx.Scopes.Root() }

// Warn records a lint finding unless warnings are disabled for the unit the
// bookmark belongs to.
func (ctx *Context) Warn(at ast.Bookmark, code, format string, args ...interface{}) {
	if enabled, known := ctx.warnings[at.File]; known && !enabled {
		return
	}
	d := models.Diagnostic{
		File:     at.File,
		Line:     at.Line,
		Column:   at.Column,
		Severity: models.SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
	ctx.Diagnostics = append(ctx.Diagnostics, d)
	ctx.Logger.VV("lint: %s", d)
}

// ----------------------------------------------------------------------------
// Scope cursor

// cursor tracks the current real and pseudo scope while a pass walks a
// unit. Entering a scope asserts it was created below the current one.
type cursor struct {
	ctx    *Context
	stack  []*scope.SymbolScope
	pstack []*scope.SymbolScope
	pushed map[ast.Node][2]int
	err    error
}

func newCursor(ctx *Context) *cursor {
	return &cursor{ctx: ctx, pushed: make(map[ast.Node][2]int)}
}

func (c *cursor) current() *scope.SymbolScope {
	if len(c.stack) == 0 {
		return nil
	}
	return c.stack[len(c.stack)-1]
}

func (c *cursor) pseudo() *scope.SymbolScope {
	if len(c.pstack) == 0 {
		return nil
	}
	return c.pstack[len(c.pstack)-1]
}

func (c *cursor) fail(n ast.Node, format string, args ...interface{}) {
	if c.err == nil {
		c.err = &StructuralError{Bookmark: n.Pos(), Message: fmt.Sprintf(format, args...)}
	}
}

func (c *cursor) push(tree *scope.Tree, stack *[]*scope.SymbolScope, id ast.ScopeID, n ast.Node) bool {
	s := tree.Get(id)
	if s == nil {
		c.fail(n, "scope %d does not exist", id)
		return false
	}
	var cur *scope.SymbolScope
	if len(*stack) > 0 {
		cur = (*stack)[len(*stack)-1]
	}
	if s.OuterScope != cur {
		c.fail(n, "%s is not nested in %v", s, cur)
	}
	*stack = append(*stack, s)
	return true
}

// enter pushes the scopes n owns.
func (c *cursor) enter(n ast.Node) {
	owner, ok := n.(ast.ScopeOwner)
	if !ok {
		return
	}
	var counts [2]int
	if fn, ok := n.(*ast.Function); ok && fn.NameScope != ast.NoScope {
		if c.push(c.ctx.Scopes, &c.stack, fn.NameScope, n) {
			counts[0]++
		}
	}
	sc := owner.Scopes()
	if sc.Scope != ast.NoScope && c.push(c.ctx.Scopes, &c.stack, sc.Scope, n) {
		counts[0]++
	}
	if sc.Pseudo != ast.NoScope && c.push(c.ctx.Pseudo, &c.pstack, sc.Pseudo, n) {
		counts[1]++
	}
	if counts != [2]int{} {
		c.pushed[n] = counts
	}
}

// leave pops what enter pushed for n.
func (c *cursor) leave(n ast.Node) {
	counts, ok := c.pushed[n]
	if !ok {
		return
	}
	delete(c.pushed, n)
	c.stack = c.stack[:len(c.stack)-counts[0]]
	c.pstack = c.pstack[:len(c.pstack)-counts[1]]
}

// lookup resolves name from the current scope outward.
func (c *cursor) lookup(name string) *scope.Symbol {
	if cur := c.current(); cur != nil {
		return cur.Lookup(name)
	}
	return nil
}

// walk runs v over every unit with a fresh cursor and returns the first
// structural error.
func (ctx *Context) walk(newVisitor func(c *cursor, unit int) ast.Visitor) error {
	for i, u := range ctx.Units {
		c := newCursor(ctx)
		ast.Visit(u, newVisitor(c, i))
		if c.err != nil {
			return c.err
		}
	}
	return nil
}
