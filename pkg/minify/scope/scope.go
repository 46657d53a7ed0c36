// Package scope holds the symbol tables built by the analysis passes and the
// allocator that hands out obfuscated names during rendering.
package scope

import (
	"fmt"
	"sort"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// ScopeType defines the type of the scope
type ScopeType int

const (
	ScopeRoot ScopeType = iota
	ScopeFunction
	ScopeBlock
	ScopeCatch
	// ScopeName holds only the own name of a named function expression.
	ScopeName
	// ScopePseudo scopes mirror function-level declarations for collision checks.
	ScopePseudo
)

var scopeTypeNames = [...]string{
	ScopeRoot:     "root",
	ScopeFunction: "function",
	ScopeBlock:    "block",
	ScopeCatch:    "catch",
	ScopeName:     "name",
	ScopePseudo:   "pseudo",
}

func (t ScopeType) String() string { return scopeTypeNames[t] }

// SymbolScope is one lexical binding region.
type SymbolScope struct {
	ID         ast.ScopeID
	Type       ScopeType
	OuterScope *SymbolScope
	Children   []*SymbolScope
	At         ast.Bookmark

	Symbols *SymbolTable
	Members *SymbolTable
	Rules   []AccessRule

	DefaultAccess Accessibility
	// Tainted is set by eval and with: nothing declared here may be renamed.
	Tainted bool

	ranked        []*Symbol
	rankedMembers []*Symbol
	pinned        []string
	pinnedDone    bool
}

// NewScope creates a new scope below outer. Root scopes default to public
// accessibility, every other scope to private.
func NewScope(outer *SymbolScope, t ScopeType) *SymbolScope {
	s := &SymbolScope{
		Type:          t,
		OuterScope:    outer,
		Symbols:       NewSymbolTable(),
		Members:       NewSymbolTable(),
		DefaultAccess: Private,
	}
	if t == ScopeRoot {
		s.DefaultAccess = Public
	}
	if outer != nil {
		outer.Children = append(outer.Children, s)
	}
	return s
}

// Define creates or extends the symbol called name in this scope.
func (s *SymbolScope) Define(name string, kind SymbolKind, at ast.Bookmark) (*Symbol, bool) {
	sym, existed := s.Symbols.DefineSymbol(name, kind, at)
	sym.Scope = s
	return sym, existed
}

// Lookup finds a symbol in the current or outer scopes.
func (s *SymbolScope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.OuterScope {
		if sym := sc.Symbols.Find(name); sym != nil {
			return sym
		}
	}
	return nil
}

// LookupMember finds a private member symbol in the current or outer scopes.
func (s *SymbolScope) LookupMember(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.OuterScope {
		if sym := sc.Members.Find(name); sym != nil {
			return sym
		}
	}
	return nil
}

// VarScope returns the nearest function-level scope, where var and
// function declarations bind.
func (s *SymbolScope) VarScope() *SymbolScope {
	sc := s
	for sc.Type != ScopeRoot && sc.Type != ScopeFunction && sc.Type != ScopePseudo && sc.OuterScope != nil {
		sc = sc.OuterScope
	}
	return sc
}

// Root returns the outermost scope.
func (s *SymbolScope) Root() *SymbolScope {
	sc := s
	for sc.OuterScope != nil {
		sc = sc.OuterScope
	}
	return sc
}

// IsAncestorOf reports whether s encloses (or is) other.
func (s *SymbolScope) IsAncestorOf(other *SymbolScope) bool {
	for sc := other; sc != nil; sc = sc.OuterScope {
		if sc == s {
			return true
		}
	}
	return false
}

// Taint marks the scope and all of its ancestors as unsafe to rename.
func (s *SymbolScope) Taint() {
	for sc := s; sc != nil; sc = sc.OuterScope {
		sc.Tainted = true
	}
}

// AddRule appends an accessibility rule. Later rules take precedence.
func (s *SymbolScope) AddRule(r AccessRule) {
	s.Rules = append(s.Rules, r)
}

// SymbolAccess resolves the accessibility of a plain symbol name declared in
// this scope: rules are searched innermost scope first, the latest matching
// rule of a scope wins, and the scope default applies when nothing matches.
func (s *SymbolScope) SymbolAccess(name string) Accessibility {
	if a := s.RuleAccess(name); a != Unspecified {
		return a
	}
	return s.DefaultAccess
}

// RuleAccess is SymbolAccess without the default: it returns Unspecified
// when no rule matches name.
func (s *SymbolScope) RuleAccess(name string) Accessibility {
	for sc := s; sc != nil; sc = sc.OuterScope {
		for i := len(sc.Rules) - 1; i >= 0; i-- {
			if sc.Rules[i].MatchesSymbol(name) {
				return sc.Rules[i].Access
			}
		}
	}
	return Unspecified
}

// MemberAccess resolves target.member against the member rules in scope and
// returns the scope owning the matching rule. Members without a matching
// rule are public.
func (s *SymbolScope) MemberAccess(target, member string) (Accessibility, *SymbolScope) {
	for sc := s; sc != nil; sc = sc.OuterScope {
		for i := len(sc.Rules) - 1; i >= 0; i-- {
			if sc.Rules[i].MatchesMember(target, member) {
				return sc.Rules[i].Access, sc
			}
		}
	}
	return Public, nil
}

// ProcessAccessibilitySpecs feeds a member key seen as target.member (or as
// a key of an object literal assigned to target) through the rules. A
// private member is defined in the members table of the scope owning the
// rule, which makes it a rename candidate for that scope's subtree.
func (s *SymbolScope) ProcessAccessibilitySpecs(target, member string, at ast.Bookmark) Accessibility {
	access, owner := s.MemberAccess(target, member)
	if access != Private || owner == nil {
		return access
	}
	sym, _ := owner.Members.DefineSymbol(member, KindMember, at)
	sym.Scope = owner
	sym.Access = Private
	return Private
}

// Prepare resolves unspecified accessibility and ranks symbols by usage,
// most used first, ties broken by declaration order. It recurses into
// child scopes.
func (s *SymbolScope) Prepare() {
	for _, sym := range s.Symbols.All() {
		if sym.Access == Unspecified {
			if sym.Kind == KindImplicit {
				sym.Access = Public
			} else {
				sym.Access = s.SymbolAccess(sym.Name)
			}
		}
	}
	s.ranked = rank(s.Symbols.All())
	s.rankedMembers = rank(s.Members.All())
	s.pinnedDone = false
	for _, c := range s.Children {
		c.Prepare()
	}
}

func rank(all []*Symbol) []*Symbol {
	ranked := make([]*Symbol, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Usage != ranked[j].Usage {
			return ranked[i].Usage > ranked[j].Usage
		}
		return ranked[i].order < ranked[j].order
	})
	for i, sym := range ranked {
		sym.Rank = i
	}
	return ranked
}

// Ranked returns the symbols in name assignment order. Valid after Prepare.
func (s *SymbolScope) Ranked() []*Symbol { return s.ranked }

// RankedMembers returns the private members in name assignment order.
func (s *SymbolScope) RankedMembers() []*Symbol { return s.rankedMembers }

// ClaimSymbols claims the original name of every symbol of the scope with
// the allocator so no generated name can equal a name still in use. It
// returns the names claimed; the caller releases them when leaving.
func (s *SymbolScope) ClaimSymbols(a *SymbolAllocator) []string {
	claimed := make([]string, 0, s.Symbols.Len())
	for _, sym := range s.Symbols.All() {
		a.Claim(sym.Name)
		claimed = append(claimed, sym.Name)
	}
	return claimed
}

// Pinned returns the original names of every non-renamable declaration in
// this pseudo scope and its descendants.
func (s *SymbolScope) Pinned() []string {
	if s.pinnedDone {
		return s.pinned
	}
	seen := make(map[string]bool)
	s.collectPinned(seen)
	s.pinned = s.pinned[:0]
	for name := range seen {
		s.pinned = append(s.pinned, name)
	}
	sort.Strings(s.pinned)
	s.pinnedDone = true
	return s.pinned
}

func (s *SymbolScope) collectPinned(seen map[string]bool) {
	for _, sym := range s.Symbols.All() {
		for _, b := range sym.Bound {
			if !b.Renamable() {
				seen[sym.Name] = true
				break
			}
		}
	}
	for _, c := range s.Children {
		c.collectPinned(seen)
	}
}

// Mirror records a real declaration in this pseudo scope.
func (s *SymbolScope) Mirror(real *Symbol, at ast.Bookmark) {
	sym, _ := s.Define(real.Name, real.Kind, at)
	for _, b := range sym.Bound {
		if b == real {
			return
		}
	}
	sym.Bound = append(sym.Bound, real)
}

// Unmirror drops a real declaration recorded with Mirror. The pseudo entry
// goes away with its last bound symbol.
func (s *SymbolScope) Unmirror(real *Symbol) {
	sym := s.Symbols.Find(real.Name)
	if sym == nil {
		return
	}
	for i, b := range sym.Bound {
		if b == real {
			sym.Bound = append(sym.Bound[:i], sym.Bound[i+1:]...)
			break
		}
	}
	if len(sym.Bound) == 0 {
		s.Symbols.Remove(real.Name)
	}
	s.pinnedDone = false
}

func (s *SymbolScope) String() string {
	return fmt.Sprintf("%s scope %d", s.Type, s.ID)
}

// ----------------------------------------------------------------------------
// Arena

// Tree is an arena of scopes addressed by ast.ScopeID. Nodes hold ids, the
// tree owns the scopes.
type Tree struct {
	scopes []*SymbolScope
}

// NewTree creates an arena holding a single root scope of type t.
func NewTree(t ScopeType) *Tree {
	tree := &Tree{scopes: []*SymbolScope{nil}}
	tree.add(NewScope(nil, t))
	return tree
}

func (t *Tree) add(s *SymbolScope) *SymbolScope {
	s.ID = ast.ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, s)
	return s
}

// New creates a scope below outer and registers it in the arena.
func (t *Tree) New(outer *SymbolScope, typ ScopeType, at ast.Bookmark) *SymbolScope {
	s := t.add(NewScope(outer, typ))
	s.At = at
	return s
}

// Get returns the scope with the given id, or nil.
func (t *Tree) Get(id ast.ScopeID) *SymbolScope {
	if id <= 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// Root returns the root scope.
func (t *Tree) Root() *SymbolScope { return t.scopes[1] }

// Len returns the number of scopes.
func (t *Tree) Len() int { return len(t.scopes) - 1 }

// All returns the scopes in creation order.
func (t *Tree) All() []*SymbolScope { return t.scopes[1:] }
