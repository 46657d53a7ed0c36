// Package render serializes an analyzed tree to text. It assigns
// obfuscated names while walking the scopes in lexical order, decides where
// statement separators are needed and wraps long lines at safe points.
package render

import (
	"github.com/lcalzada-xor/minime/pkg/minify/analysis"
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// Options control the output format.
type Options struct {
	// MaxLineLength is the column after which lines are wrapped at the
	// nearest safe point. Zero disables wrapping.
	MaxLineLength int
	Formatted     bool
	Obfuscate     bool
	// Indent is the formatted mode indentation unit, two spaces when empty.
	Indent string
}

// frame is one entered scope.
type frame struct {
	s      *scope.SymbolScope
	pseudo bool

	cp, memberCP int
	claimed      []string // original names, from ClaimSymbols or Pinned
	assigned     []string // names drawn from the symbol allocator
	members      []string // names drawn from the member allocator
}

// RenderContext is the state of one render walk: the output buffer, the
// stack of entered scopes and the two allocators.
type RenderContext struct {
	opts    Options
	scopes  *scope.Tree
	pseudo  *scope.Tree
	symbols *scope.SymbolAllocator
	members *scope.SymbolAllocator

	out       []byte
	lineStart int
	safe      int // offset of the last safe break point, -1 for none
	depth     int
	noIn      int

	// pending is set when the previous statement must be terminated before
	// anything else follows it.
	pending bool

	frames []*frame
	err    error
}

// New creates a render context. Both allocators must already hold the
// reserved names.
func New(scopes, pseudo *scope.Tree, symbols, members *scope.SymbolAllocator, opts Options) *RenderContext {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	return &RenderContext{
		opts:    opts,
		scopes:  scopes,
		pseudo:  pseudo,
		symbols: symbols,
		members: members,
		safe:    -1,
	}
}

// Render renders units as one program sharing the root scope and returns
// the text.
func (r *RenderContext) Render(units ...*ast.Program) (string, error) {
	r.out = r.out[:0]
	r.lineStart, r.safe, r.pending = 0, -1, false
	if len(units) == 0 {
		return "", nil
	}

	root := units[0]
	pushed := r.enterNode(root, &root.Scoped)
	for _, u := range units {
		if u.Scope != root.Scope || u.Pseudo != root.Pseudo {
			r.fail(u, "unit %s does not share the root scope", u.File)
			break
		}
		r.stmtList(u.Body)
	}
	r.leaveN(pushed)
	if r.opts.Formatted && len(r.out) > 0 {
		r.terminate()
		r.raw("\n")
	}
	if r.err != nil {
		return "", r.err
	}
	return string(r.out), nil
}

// RenderUnits renders every unit to its own string. The units still share
// the root scope, so a global gets the same name in each of them.
func (r *RenderContext) RenderUnits(units ...*ast.Program) ([]string, error) {
	if len(units) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(units))
	root := units[0]
	pushed := r.enterNode(root, &root.Scoped)
	for _, u := range units {
		r.out = r.out[:0]
		r.lineStart, r.safe, r.pending = 0, -1, false
		if u.Scope != root.Scope || u.Pseudo != root.Pseudo {
			r.fail(u, "unit %s does not share the root scope", u.File)
			break
		}
		r.stmtList(u.Body)
		if r.opts.Formatted && len(r.out) > 0 {
			r.terminate()
			r.raw("\n")
		}
		parts = append(parts, string(r.out))
	}
	r.leaveN(pushed)
	if r.err != nil {
		return nil, r.err
	}
	return parts, nil
}

func (r *RenderContext) fail(n ast.Node, format string, args ...interface{}) {
	if r.err == nil {
		err := &analysis.StructuralError{Bookmark: n.Pos()}
		err.Message = sprintf(format, args...)
		r.err = err
	}
}

// ----------------------------------------------------------------------------
// Scopes and names

// EnterPseudo claims the names that must stay free while the subtree of
// the pseudo scope s is rendered.
func (r *RenderContext) EnterPseudo(s *scope.SymbolScope) {
	f := &frame{s: s, pseudo: true, cp: r.symbols.Checkpoint(), memberCP: r.members.Checkpoint()}
	for _, name := range s.Pinned() {
		r.symbols.Claim(name)
		f.claimed = append(f.claimed, name)
	}
	r.frames = append(r.frames, f)
}

// EnterScope pushes s and assigns names to its symbols in rank order. The
// original name of every symbol is claimed first so no generated name can
// equal a name still in use. A symbol keeps its original name when nothing
// else claims it and no shorter candidate is free.
func (r *RenderContext) EnterScope(s *scope.SymbolScope) {
	f := &frame{s: s, cp: r.symbols.Checkpoint(), memberCP: r.members.Checkpoint()}
	f.claimed = s.ClaimSymbols(r.symbols)

	if r.opts.Obfuscate {
		for _, sym := range s.Ranked() {
			if !sym.Renamable() {
				sym.Obfuscated = ""
				continue
			}
			if r.symbols.Claims(sym.Name) == 1 && len(sym.Name) <= len(r.symbols.Peek()) {
				sym.Obfuscated = sym.Name
				continue
			}
			sym.Obfuscated = r.symbols.NextSymbol()
			f.assigned = append(f.assigned, sym.Obfuscated)
		}
		for _, m := range s.RankedMembers() {
			if m.Access != scope.Private {
				continue
			}
			m.Obfuscated = r.members.NextSymbol()
			f.members = append(f.members, m.Obfuscated)
		}
	}
	r.frames = append(r.frames, f)
}

// LeaveScope pops the innermost scope and releases every name it claimed
// or was assigned, so sibling scopes can reuse them.
func (r *RenderContext) LeaveScope() {
	if len(r.frames) == 0 {
		return
	}
	f := r.frames[len(r.frames)-1]
	r.frames = r.frames[:len(r.frames)-1]
	for i := len(f.members) - 1; i >= 0; i-- {
		r.members.Release(f.members[i])
	}
	for i := len(f.assigned) - 1; i >= 0; i-- {
		r.symbols.Release(f.assigned[i])
	}
	for i := len(f.claimed) - 1; i >= 0; i-- {
		r.symbols.Release(f.claimed[i])
	}
	r.members.Rewind(f.memberCP)
	r.symbols.Rewind(f.cp)
}

// enterNode enters the scopes owned by n, pseudo scope first, and returns
// how many frames were pushed.
func (r *RenderContext) enterNode(n ast.Node, sc *ast.Scoped) int {
	pushed := 0
	if sc.Pseudo != ast.NoScope {
		s := r.pseudo.Get(sc.Pseudo)
		if s == nil {
			r.fail(n, "pseudo scope %d does not exist", sc.Pseudo)
		} else {
			r.EnterPseudo(s)
			pushed++
		}
	}
	if fn, ok := n.(*ast.Function); ok && fn.NameScope != ast.NoScope {
		pushed += r.enterID(n, fn.NameScope)
	}
	if sc.Scope != ast.NoScope {
		pushed += r.enterID(n, sc.Scope)
	}
	return pushed
}

func (r *RenderContext) enterID(n ast.Node, id ast.ScopeID) int {
	s := r.scopes.Get(id)
	if s == nil {
		r.fail(n, "scope %d does not exist", id)
		return 0
	}
	if cur := r.current(); cur != nil && s.OuterScope != cur {
		r.fail(n, "%s is not nested in %s", s, cur)
	}
	r.EnterScope(s)
	return 1
}

func (r *RenderContext) leaveN(n int) {
	for ; n > 0; n-- {
		r.LeaveScope()
	}
}

// current returns the innermost real scope.
func (r *RenderContext) current() *scope.SymbolScope {
	for i := len(r.frames) - 1; i >= 0; i-- {
		if !r.frames[i].pseudo {
			return r.frames[i].s
		}
	}
	return nil
}

// name resolves an identifier against the entered scopes.
func (r *RenderContext) name(name string) string {
	for i := len(r.frames) - 1; i >= 0; i-- {
		f := r.frames[i]
		if f.pseudo {
			continue
		}
		if sym := f.s.Symbols.Find(name); sym != nil {
			return sym.RenderedName()
		}
	}
	return name
}

// member resolves a property name against the private members in scope.
func (r *RenderContext) member(name string) string {
	for i := len(r.frames) - 1; i >= 0; i-- {
		f := r.frames[i]
		if f.pseudo {
			continue
		}
		if sym := f.s.Members.Find(name); sym != nil {
			return sym.RenderedName()
		}
	}
	return name
}
