package scope

import (
	"fmt"
	"strings"
)

// Dump returns a deterministic description of s and its descendants:
// symbols with kind, usage, rank, accessibility and assigned name.
func (s *SymbolScope) Dump() string {
	var buf strings.Builder
	s.writeTo(&buf, 0)
	return buf.String()
}

func (s *SymbolScope) writeTo(buf *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)
	flags := ""
	if s.Tainted {
		flags = " tainted"
	}
	fmt.Fprintf(buf, "%sscope %d %s default=%s%s {\n", prefix, s.ID, s.Type, s.DefaultAccess, flags)
	for _, r := range s.Rules {
		fmt.Fprintf(buf, "%s  rule %s\n", prefix, r)
	}
	for _, sym := range s.Symbols.All() {
		writeSymbol(buf, prefix+"  ", "", sym)
	}
	for _, sym := range s.Members.All() {
		writeSymbol(buf, prefix+"  ", ".", sym)
	}
	for _, child := range s.Children {
		child.writeTo(buf, indent+1)
	}
	fmt.Fprintf(buf, "%s}\n", prefix)
}

func writeSymbol(buf *strings.Builder, prefix, sigil string, sym *Symbol) {
	fmt.Fprintf(buf, "%s%s%s: %s usage=%d rank=%d %s", prefix, sigil, sym.Name, sym.Kind, sym.Usage, sym.Rank, sym.Access)
	if sym.Obfuscated != "" && sym.Obfuscated != sym.Name {
		fmt.Fprintf(buf, " -> %s", sym.Obfuscated)
	}
	if len(sym.Bound) > 0 {
		fmt.Fprintf(buf, " bound=%d", len(sym.Bound))
	}
	buf.WriteByte('\n')
}

// SymbolInfo returns one line per renamed symbol and member of the tree in
// scope creation order, formatted as "original -> obfuscated (where)".
func (t *Tree) SymbolInfo() string {
	var buf strings.Builder
	for _, s := range t.All() {
		for _, sym := range s.Symbols.All() {
			if sym.Obfuscated == "" || sym.Obfuscated == sym.Name {
				continue
			}
			fmt.Fprintf(&buf, "%s -> %s (%s)\n", sym.Name, sym.Obfuscated, declaredAt(sym, s))
		}
		for _, sym := range s.Members.All() {
			if sym.Obfuscated == "" || sym.Obfuscated == sym.Name {
				continue
			}
			fmt.Fprintf(&buf, ".%s -> .%s (%s)\n", sym.Name, sym.Obfuscated, declaredAt(sym, s))
		}
	}
	return buf.String()
}

func declaredAt(sym *Symbol, s *SymbolScope) string {
	if len(sym.Declarations) > 0 {
		return sym.Declarations[0].String()
	}
	return s.String()
}
