package analysis

import (
	"testing"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

var constOpts = Options{Obfuscate: true, DetectConsts: true}

func TestConsts_SubstitutesAndRemoves(t *testing.T) {
	ctx := analyze(t, constOpts, `const PI = 3.14; function area(r){ return PI*r*r; }`)

	body := ctx.Units[0].Body
	if len(body) != 1 {
		t.Fatalf("expected the PI declaration to be removed, got %d statements", len(body))
	}
	fn := body[0].(*ast.FunctionDecl).Func
	ret := fn.Body[0].(*ast.Return)
	outer := ret.Value.(*ast.Binary)
	inner := outer.X.(*ast.Binary)
	num, ok := inner.X.(*ast.Number)
	if !ok || num.Value != 3.14 {
		t.Fatalf("expected PI replaced by 3.14, got %#v", inner.X)
	}
	if num.Pos().Line != 1 || num.Pos().Column != 43 {
		t.Errorf("substituted literal should carry the reference position, got %s", num.Pos())
	}
	if ctx.ConstantsFolded != 1 {
		t.Errorf("expected 1 folded constant, got %d", ctx.ConstantsFolded)
	}
	if ctx.Root().Symbols.Find("PI") != nil {
		t.Error("PI should be removed from the root scope")
	}
	if ctx.Pseudo.Root().Symbols.Find("PI") != nil {
		t.Error("PI should be removed from the pseudo scope")
	}
}

func TestConsts_EvaluatesInitializers(t *testing.T) {
	ctx := analyze(t, constOpts, `function f(){ var n = -(2 * 3), s = "a" + "b"; return [n, s]; }`)
	fn := ctx.Units[0].Body[0].(*ast.FunctionDecl).Func
	if len(fn.Body) != 1 {
		t.Fatalf("expected both declarations removed, got %d statements", len(fn.Body))
	}
	arr := fn.Body[0].(*ast.Return).Value.(*ast.Array)
	if n, ok := arr.List[0].(*ast.Number); !ok || n.Value != -6 {
		t.Errorf("expected -6, got %#v", arr.List[0])
	}
	if s, ok := arr.List[1].(*ast.String); !ok || s.Value != "ab" {
		t.Errorf("expected \"ab\", got %#v", arr.List[1])
	}
}

func TestConsts_Rejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"reassigned", `function f(){ var a = 1; a = 2; return a; }`},
		{"incremented", `function f(){ var a = 1; a++; return a; }`},
		{"used before declaration", `function f(){ g(a); var a = 1; return a; }`},
		{"string used twice", `function f(){ var s = "abc"; return s + s; }`},
		{"shadowed", `function f(){ var n = 1; function g(n){ return n; } return n + g(2); }`},
		{"captured by hoisted function", `function f(){ var a = 1; function g(){ return a; } return g(); }`},
		{"not a constant", `function f(){ var a = g(); return a; }`},
		{"declared twice", `function f(){ var a = 1; var a; return a; }`},
		{"global var", `var G = 1; use(G);`},
		{"public const", "// public: K\nconst K = 1; use(K);"},
		{"eval in scope", `function f(){ const a = 1; eval("a"); return a; }`},
		{"delete operand", `function f(){ var a = 1; return delete a; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := analyze(t, constOpts, tt.src)
			if ctx.ConstantsFolded != 0 {
				t.Errorf("expected no substitution, got %d", ctx.ConstantsFolded)
			}
		})
	}
}

func TestConsts_SingleStringUse(t *testing.T) {
	ctx := analyze(t, constOpts, `function f(){ var s = "abc"; return s; }`)
	fn := ctx.Units[0].Body[0].(*ast.FunctionDecl).Func
	if s, ok := fn.Body[0].(*ast.Return).Value.(*ast.String); !ok || s.Value != "abc" {
		t.Errorf("expected the string substituted, got %#v", fn.Body[0])
	}
}

func TestConsts_AcrossUnits(t *testing.T) {
	ctx := analyze(t, constOpts, `const LIMIT = 10;`, `function check(v){ return v < LIMIT; }`)
	if ctx.ConstantsFolded != 1 {
		t.Fatalf("expected 1 folded constant, got %d", ctx.ConstantsFolded)
	}
	if len(ctx.Units[0].Body) != 0 {
		t.Error("expected the declaring unit to be empty")
	}

	ctx = analyze(t, constOpts, `function check(v){ return v < LIMIT; } check(1);`, `const LIMIT = 10;`)
	if ctx.ConstantsFolded != 0 {
		t.Error("a reference in an earlier unit must not be substituted")
	}
}

func TestConsts_Disabled(t *testing.T) {
	for _, opts := range []Options{{Obfuscate: true}, {DetectConsts: true}} {
		ctx := analyze(t, opts, `const PI = 3.14; function area(r){ return PI*r*r; }`)
		if ctx.ConstantsFolded != 0 || len(ctx.Units[0].Body) != 2 {
			t.Errorf("%+v: expected constants untouched", opts)
		}
	}
}

func TestConsts_ForLoopInit(t *testing.T) {
	ctx := analyze(t, constOpts, `function f(){ for (const step = 2; ;) { return step; } }`)
	loop := ctx.Units[0].Body[0].(*ast.FunctionDecl).Func.Body[0].(*ast.For)
	if loop.Init != nil {
		t.Errorf("expected the loop initializer removed, got %#v", loop.Init)
	}
}

func TestConsts_ShorthandProperty(t *testing.T) {
	ctx := analyze(t, constOpts, `function f(){ const PI = 3; return {PI}; }`)
	fn := ctx.Units[0].Body[0].(*ast.FunctionDecl).Func
	if len(fn.Body) != 1 {
		t.Fatalf("expected the declaration removed, got %d statements", len(fn.Body))
	}
	prop := fn.Body[0].(*ast.Return).Value.(*ast.Object).Props[0]
	if n, ok := prop.Value.(*ast.Number); !ok || n.Value != 3 || prop.Key != "PI" {
		t.Errorf("expected PI: 3, got %s: %#v", prop.Key, prop.Value)
	}
}
