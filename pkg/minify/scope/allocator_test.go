package scope

import "testing"

func TestCandidateName(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "a"},
		{25, "z"},
		{26, "A"},
		{52, "_"},
		{53, "aa"},
		{54, "ab"},
		{53 + 62, "a9"},
		{53 + 63, "ba"},
		{53 + 53*63, "aaa"},
	}
	for _, tt := range tests {
		if got := CandidateName(tt.index); got != tt.expected {
			t.Errorf("CandidateName(%d): expected %q, got %q", tt.index, tt.expected, got)
		}
	}
}

func TestCandidateName_Unique(t *testing.T) {
	seen := make(map[string]int)
	for i := 0; i < 5000; i++ {
		name := CandidateName(i)
		if prev, ok := seen[name]; ok {
			t.Fatalf("candidate %q produced by %d and %d", name, prev, i)
		}
		if name[0] >= '0' && name[0] <= '9' {
			t.Fatalf("candidate %q starts with a digit", name)
		}
		seen[name] = i
	}
}

func TestAllocator_SkipsClaimed(t *testing.T) {
	a := NewSymbolAllocator()
	a.ClaimSymbol("a")
	a.ClaimSymbol("a") // idempotent
	a.Claim("c")

	if got := a.NextSymbol(); got != "b" {
		t.Errorf("expected b, got %q", got)
	}
	if got := a.Peek(); got != "d" {
		t.Errorf("expected Peek to skip claimed c, got %q", got)
	}
	if got := a.NextSymbol(); got != "d" {
		t.Errorf("expected d, got %q", got)
	}
}

func TestAllocator_ReleaseAndRewind(t *testing.T) {
	a := NewSymbolAllocator()
	cp := a.Checkpoint()
	first := a.NextSymbol()
	second := a.NextSymbol()
	if first != "a" || second != "b" {
		t.Fatalf("expected a, b; got %q, %q", first, second)
	}

	a.Release(second)
	a.Release(first)
	a.Rewind(cp)

	if a.IsClaimed("a") || a.IsClaimed("b") {
		t.Error("expected released names to be free")
	}
	if got := a.NextSymbol(); got != "a" {
		t.Errorf("expected sibling scope to reuse a, got %q", got)
	}
}

func TestAllocator_RefCounted(t *testing.T) {
	a := NewSymbolAllocator()
	a.Claim("x")
	a.Claim("x")
	a.Release("x")
	if !a.IsClaimed("x") {
		t.Error("expected x to stay claimed while a reference is held")
	}
	if a.Claims("x") != 1 {
		t.Errorf("expected 1 claim, got %d", a.Claims("x"))
	}
	a.Release("x")
	a.Release("x") // extra release is ignored
	if a.IsClaimed("x") {
		t.Error("expected x to be free")
	}

	a.ClaimSymbol("y")
	a.Release("y")
	if !a.IsClaimed("y") {
		t.Error("reserved names must survive Release")
	}
}

func TestAllocator_Deterministic(t *testing.T) {
	run := func() []string {
		a := NewSymbolAllocator()
		for _, w := range []string{"do", "if", "in"} {
			a.ClaimSymbol(w)
		}
		a.Rewind(53 + 3*63) // start of the "d" two-letter block
		var out []string
		for i := 0; i < 20; i++ {
			out = append(out, a.NextSymbol())
		}
		return out
	}
	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("run differs at %d: %q vs %q", i, first[i], second[i])
		}
		if first[i] == "do" {
			t.Fatal("reserved word do was generated")
		}
	}
}
