package scope

import "github.com/lcalzada-xor/minime/pkg/minify/ast"

// SymbolKind records how a symbol was declared.
type SymbolKind int

const (
	KindVar SymbolKind = iota
	KindLet
	KindConst
	KindFunction
	KindParam
	KindCatch
	KindFunctionName // own name of a named function expression
	KindImplicit     // unresolved reference recorded on the root
	KindMember
)

var kindNames = [...]string{
	KindVar:          "var",
	KindLet:          "let",
	KindConst:        "const",
	KindFunction:     "function",
	KindParam:        "param",
	KindCatch:        "catch",
	KindFunctionName: "funcname",
	KindImplicit:     "implicit",
	KindMember:       "member",
}

func (k SymbolKind) String() string { return kindNames[k] }

// KindOf maps a declaration keyword to its symbol kind.
func KindOf(k ast.VarKind) SymbolKind {
	switch k {
	case ast.Let:
		return KindLet
	case ast.Const:
		return KindConst
	}
	return KindVar
}

// Symbol is a named binding of one scope.
type Symbol struct {
	Name         string
	Kind         SymbolKind
	Declarations []ast.Bookmark
	Usage        int
	Access       Accessibility
	Rank         int
	Obfuscated   string
	Scope        *SymbolScope

	// Bound lists the real symbols a pseudo scope entry mirrors.
	Bound []*Symbol

	order int
}

// Implicit reports whether the symbol stands for an undeclared global.
func (s *Symbol) Implicit() bool { return s.Kind == KindImplicit }

// Renamable reports whether the allocator may assign the symbol a new name.
func (s *Symbol) Renamable() bool {
	if s.Access != Private || s.Kind == KindImplicit {
		return false
	}
	return s.Scope == nil || !s.Scope.Tainted
}

// RenderedName returns the assigned name, or the original text when the
// symbol was not renamed.
func (s *Symbol) RenderedName() string {
	if s.Obfuscated != "" {
		return s.Obfuscated
	}
	return s.Name
}

// SymbolTable maps names to symbols while remembering definition order.
type SymbolTable struct {
	byName map[string]*Symbol
	order  []*Symbol
	seq    int
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// DefineSymbol adds a declaration of name. When the name already exists the
// bookmark is appended to the existing symbol and existed is true.
func (t *SymbolTable) DefineSymbol(name string, kind SymbolKind, at ast.Bookmark) (sym *Symbol, existed bool) {
	if sym = t.byName[name]; sym != nil {
		sym.Declarations = append(sym.Declarations, at)
		return sym, true
	}
	sym = &Symbol{Name: name, Kind: kind, Rank: -1, order: t.seq}
	if at.IsValid() {
		sym.Declarations = []ast.Bookmark{at}
	}
	t.seq++
	t.byName[name] = sym
	t.order = append(t.order, sym)
	return sym, false
}

// Find returns the symbol called name, or nil.
func (t *SymbolTable) Find(name string) *Symbol {
	return t.byName[name]
}

// All returns the symbols in definition order.
func (t *SymbolTable) All() []*Symbol {
	return t.order
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	return len(t.order)
}

// Remove deletes the symbol called name.
func (t *SymbolTable) Remove(name string) {
	if t.byName[name] == nil {
		return
	}
	delete(t.byName, name)
	for i, s := range t.order {
		if s.Name == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
