package scope

import (
	"strings"
	"testing"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

func at(line int) ast.Bookmark {
	return ast.Bookmark{File: "t.js", Line: line, Column: 1}
}

func TestTree_Arena(t *testing.T) {
	tree := NewTree(ScopeRoot)
	root := tree.Root()
	fn := tree.New(root, ScopeFunction, at(1))
	blk := tree.New(fn, ScopeBlock, at(2))

	if root.ID != 1 || fn.ID != 2 || blk.ID != 3 {
		t.Fatalf("unexpected ids %d %d %d", root.ID, fn.ID, blk.ID)
	}
	if tree.Get(fn.ID) != fn {
		t.Error("Get did not return the registered scope")
	}
	if tree.Get(0) != nil || tree.Get(99) != nil {
		t.Error("expected nil for out of range ids")
	}
	if blk.OuterScope != fn || fn.OuterScope != root {
		t.Error("outer scope chain broken")
	}
	if blk.VarScope() != fn {
		t.Error("expected block var scope to be the function")
	}
	if !root.IsAncestorOf(blk) || blk.IsAncestorOf(root) {
		t.Error("ancestry check failed")
	}
	if tree.Len() != 3 {
		t.Errorf("expected 3 scopes, got %d", tree.Len())
	}
}

func TestScope_DefineAndLookup(t *testing.T) {
	tree := NewTree(ScopeRoot)
	root := tree.Root()
	fn := tree.New(root, ScopeFunction, at(1))

	root.Define("g", KindVar, at(1))
	local, existed := fn.Define("x", KindVar, at(2))
	if existed {
		t.Fatal("fresh symbol reported as existing")
	}
	again, existed := fn.Define("x", KindVar, at(3))
	if !existed || again != local {
		t.Fatal("redeclaration should extend the existing symbol")
	}
	if len(local.Declarations) != 2 {
		t.Errorf("expected 2 declarations, got %d", len(local.Declarations))
	}
	if fn.Lookup("g") == nil || fn.Lookup("x") != local {
		t.Error("lookup through the scope chain failed")
	}
	if root.Lookup("x") != nil {
		t.Error("inner symbol leaked to the outer scope")
	}
}

func TestScope_PrepareRanksByUsage(t *testing.T) {
	tree := NewTree(ScopeRoot)
	fn := tree.New(tree.Root(), ScopeFunction, at(1))
	a, _ := fn.Define("alpha", KindVar, at(1))
	b, _ := fn.Define("beta", KindVar, at(2))
	c, _ := fn.Define("gamma", KindVar, at(3))
	a.Usage, b.Usage, c.Usage = 1, 5, 1

	tree.Root().Prepare()

	ranked := fn.Ranked()
	if ranked[0] != b || ranked[1] != a || ranked[2] != c {
		t.Errorf("unexpected rank order: %s %s %s", ranked[0].Name, ranked[1].Name, ranked[2].Name)
	}
	if b.Rank != 0 || c.Rank != 2 {
		t.Errorf("unexpected ranks %d %d", b.Rank, c.Rank)
	}
	if a.Access != Private {
		t.Errorf("function symbols default to private, got %s", a.Access)
	}
}

func TestScope_RootDefaultsPublic(t *testing.T) {
	tree := NewTree(ScopeRoot)
	g, _ := tree.Root().Define("g", KindVar, at(1))
	imp, _ := tree.Root().Define("document", KindImplicit, ast.Bookmark{})
	tree.Root().Prepare()
	if g.Access != Public || g.Renamable() {
		t.Error("globals are public by default")
	}

	tree = NewTree(ScopeRoot)
	tree.Root().DefaultAccess = Private
	g, _ = tree.Root().Define("g", KindVar, at(1))
	imp, _ = tree.Root().Define("document", KindImplicit, ast.Bookmark{})
	tree.Root().Prepare()
	if !g.Renamable() {
		t.Error("expected global to be renamable with a private root default")
	}
	if imp.Renamable() {
		t.Error("implicit globals are never renamable")
	}
}

func TestScope_RulesInnermostAndLatestWin(t *testing.T) {
	tree := NewTree(ScopeRoot)
	root := tree.Root()
	fn := tree.New(root, ScopeFunction, at(1))

	mustRule := func(spec string, access Accessibility) AccessRule {
		r, err := ParseAccessRule(spec, access)
		if err != nil {
			t.Fatalf("ParseAccessRule(%q): %v", spec, err)
		}
		return r
	}
	root.AddRule(mustRule("api*", Public))
	fn.AddRule(mustRule("apiInternal", Private))
	fn.AddRule(mustRule("keep*", Private))
	fn.AddRule(mustRule("keepMe", Public))

	tests := []struct {
		name     string
		expected Accessibility
	}{
		{"apiCall", Public},
		{"apiInternal", Private},
		{"keepMe", Public},
		{"keepOther", Private},
		{"plain", Private},
	}
	for _, tt := range tests {
		if got := fn.SymbolAccess(tt.name); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, got)
		}
	}
}

func TestScope_MemberRules(t *testing.T) {
	tree := NewTree(ScopeRoot)
	root := tree.Root()
	priv, _ := ParseAccessRule("target.*", Private)
	pub, _ := ParseAccessRule("*.publicMember", Public)
	root.AddRule(priv)
	root.AddRule(pub)

	if got := root.ProcessAccessibilitySpecs("target", "secret", at(1)); got != Private {
		t.Errorf("expected secret to be private, got %s", got)
	}
	if got := root.ProcessAccessibilitySpecs("target", "publicMember", at(1)); got != Public {
		t.Errorf("expected publicMember to be public, got %s", got)
	}
	if got := root.ProcessAccessibilitySpecs("other", "secret", at(1)); got != Public {
		t.Errorf("members of other objects stay public, got %s", got)
	}
	if root.Members.Find("secret") == nil || root.Members.Find("publicMember") != nil {
		t.Error("only private members are recorded")
	}
}

func TestParseAccessRule(t *testing.T) {
	tests := []struct {
		spec    string
		target  string
		pattern string
		wantErr bool
	}{
		{"foo", "", "foo", false},
		{"this.m_*", "this", "m_*", false},
		{"*.x", "*", "x", false},
		{".x", "", "", true},
		{"a.", "", "", true},
		{"a-b", "", "", true},
	}
	for _, tt := range tests {
		r, err := ParseAccessRule(tt.spec, Private)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: unexpected error state %v", tt.spec, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if r.Target != tt.target || r.Pattern != tt.pattern {
			t.Errorf("%q: got target %q pattern %q", tt.spec, r.Target, r.Pattern)
		}
	}
}

func TestScope_TaintAndPinned(t *testing.T) {
	tree := NewTree(ScopeRoot)
	root := tree.Root()
	outer := tree.New(root, ScopeFunction, at(1))
	inner := tree.New(outer, ScopeFunction, at(2))
	sibling := tree.New(root, ScopeFunction, at(3))

	kept, _ := inner.Define("keep", KindVar, at(2))
	renamed, _ := sibling.Define("gone", KindVar, at(3))
	inner.Taint()

	if !outer.Tainted || !root.Tainted || sibling.Tainted {
		t.Fatal("taint must reach ancestors only")
	}

	pseudo := NewTree(ScopePseudo)
	pOuter := pseudo.New(pseudo.Root(), ScopePseudo, at(1))
	pInner := pseudo.New(pOuter, ScopePseudo, at(2))
	pSibling := pseudo.New(pseudo.Root(), ScopePseudo, at(3))
	pInner.Mirror(kept, at(2))
	pSibling.Mirror(renamed, at(3))

	root.Prepare()

	if got := pOuter.Pinned(); len(got) != 1 || got[0] != "keep" {
		t.Errorf("expected keep to be pinned in the outer function, got %v", got)
	}
	if got := pSibling.Pinned(); len(got) != 0 {
		t.Errorf("expected nothing pinned in the sibling, got %v", got)
	}
}

func TestScope_DumpAndSymbolInfo(t *testing.T) {
	tree := NewTree(ScopeRoot)
	fn := tree.New(tree.Root(), ScopeFunction, at(1))
	sym, _ := fn.Define("counter", KindVar, at(4))
	tree.Root().Prepare()
	sym.Obfuscated = "a"

	dump := tree.Root().Dump()
	if !strings.Contains(dump, "scope 2 function default=private {") {
		t.Errorf("unexpected dump:\n%s", dump)
	}
	if !strings.Contains(dump, "counter: var usage=0 rank=0 private -> a") {
		t.Errorf("unexpected dump:\n%s", dump)
	}
	if got := tree.SymbolInfo(); got != "counter -> a (t.js:4:1)\n" {
		t.Errorf("unexpected symbol info %q", got)
	}
}

func TestAllocator_ClaimSymbols(t *testing.T) {
	tree := NewTree(ScopeRoot)
	fn := tree.New(tree.Root(), ScopeFunction, at(1))
	fn.Define("a", KindVar, at(1))
	fn.Define("b", KindParam, at(1))

	alloc := NewSymbolAllocator()
	claimed := fn.ClaimSymbols(alloc)
	if len(claimed) != 2 {
		t.Fatalf("expected 2 claims, got %v", claimed)
	}
	if got := alloc.NextSymbol(); got != "c" {
		t.Errorf("expected the allocator to skip original names, got %q", got)
	}
}
