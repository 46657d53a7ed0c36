package minify

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/lcalzada-xor/minime/pkg/minify/parse"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

func compile(t *testing.T, opts Options, srcs ...string) *Output {
	t.Helper()
	c := NewCompiler(opts, nil)
	for i, src := range srcs {
		if err := c.AddScript("unit"+string(rune('a'+i))+".js", src, true); err != nil {
			t.Fatalf("AddScript failed: %v", err)
		}
	}
	out, err := c.Compile()
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return out
}

func rule(t *testing.T, spec string, access scope.Accessibility) scope.AccessRule {
	t.Helper()
	r, err := scope.ParseAccessRule(spec, access)
	if err != nil {
		t.Fatalf("ParseAccessRule(%q) failed: %v", spec, err)
	}
	return r
}

func TestCompile_RenamesGlobalsWhenAsked(t *testing.T) {
	opts := DefaultOptions()
	opts.DetectConsts = false
	opts.ObfuscateGlobals = true
	out := compile(t, opts, "var longName = 1; function f(){ return longName; }")

	expected := "var a=1;function f(){return a}"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
	if out.Stats.SymbolsRenamed != 1 {
		t.Errorf("expected 1 renamed symbol, got %d", out.Stats.SymbolsRenamed)
	}
}

func TestCompile_GlobalsPublicByDefault(t *testing.T) {
	out := compile(t, DefaultOptions(), "var longName = 1; function f(){ return longName; }")
	if !strings.Contains(out.Code, "longName") {
		t.Errorf("expected the global to keep its name, got %s", out.Code)
	}
}

func TestCompile_SiblingFunctionsShareNames(t *testing.T) {
	src := `
function one() { var counter = 1; return counter; }
function two() { var counter = 2; return counter; }
`
	opts := DefaultOptions()
	opts.DetectConsts = false
	out := compile(t, opts, src)
	expected := "function one(){var a=1;return a}function two(){var a=2;return a}"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
}

func TestCompile_Constants(t *testing.T) {
	out := compile(t, DefaultOptions(), "const PI = 3.14; function area(r){ return PI*r*r; }")
	expected := "function area(r){return 3.14*r*r}"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
	if out.Stats.ConstantsFolded != 1 {
		t.Errorf("expected 1 folded constant, got %d", out.Stats.ConstantsFolded)
	}
}

func TestCompile_ConstantInShorthand(t *testing.T) {
	out := compile(t, DefaultOptions(), "function f(){ const PI = 3; return {PI}.PI; }")
	expected := "function f(){return{PI:3}.PI}"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
}

func TestCompile_PublicMemberRule(t *testing.T) {
	opts := DefaultOptions()
	opts.Rules = []scope.AccessRule{
		rule(t, "target.*", scope.Private),
		rule(t, "target.publicMember", scope.Public),
	}
	src := "var target = {}; target.publicMember = 1; target.secret = 2; target.secret++;"
	out := compile(t, opts, src)

	expected := "var target={};target.publicMember=1;target.a=2;target.a++"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
	if out.Stats.MembersRenamed != 1 {
		t.Errorf("expected 1 renamed member, got %d", out.Stats.MembersRenamed)
	}
}

func TestCompile_DirectiveComments(t *testing.T) {
	src := `
function make() {
  // private:api.*
  var api = {};
  api.internalState = 1;
  return api.internalState;
}
`
	out := compile(t, DefaultOptions(), src)
	if strings.Contains(out.Code, "internalState") {
		t.Errorf("expected the private member renamed, got %s", out.Code)
	}
}

func TestCompile_NoObfuscate(t *testing.T) {
	opts := DefaultOptions()
	opts.NoObfuscate = true
	out := compile(t, opts, "function f(longParameter) { const K = 2; return longParameter * K; }")
	expected := "function f(longParameter){const K=2;return longParameter*K}"
	if out.Code != expected {
		t.Errorf("expected %s, got %s", expected, out.Code)
	}
}

func TestCompile_MultipleUnits(t *testing.T) {
	opts := DefaultOptions()
	opts.ObfuscateGlobals = true
	opts.DetectConsts = false
	out := compile(t, opts, "var shared = 1", "shared++")

	if out.Code != "var a=1;a++" {
		t.Errorf("expected units compiled against one root scope, got %s", out.Code)
	}
	if len(out.Stats.Units) != 2 || out.Stats.InputBytes != len("var shared = 1")+len("shared++") {
		t.Errorf("unexpected unit stats: %+v", out.Stats)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	src := `
function outer(alpha, beta) {
  var gamma = alpha + beta, delta = alpha * beta;
  function inner(epsilon) { return epsilon + gamma + delta; }
  return [inner(1), inner(2)];
}
`
	first := compile(t, DefaultOptions(), src).Code
	for i := 0; i < 5; i++ {
		if got := compile(t, DefaultOptions(), src).Code; got != first {
			t.Fatalf("run %d differs:\n%s\n%s", i, first, got)
		}
	}
}

func TestCompile_OutputReparses(t *testing.T) {
	src := `
var list = [3, 1, 2];
function sortDescending(values) {
  var copy = values.slice();
  copy.sort(function (left, right) { return right - left; });
  return copy;
}
if (list.length) { sortDescending(list); } else { list.push(0); }
`
	out := compile(t, DefaultOptions(), src)
	if err := parse.Check("out.js", out.Code); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, out.Code)
	}

	opts := DefaultOptions()
	opts.NoObfuscate = true
	again := compile(t, opts, out.Code)
	if again.Code != out.Code {
		t.Errorf("expected a minified program to render unchanged:\n%s\n%s", out.Code, again.Code)
	}
}

func TestCompile_Formatted(t *testing.T) {
	opts := DefaultOptions()
	opts.Formatted = true
	out := compile(t, opts, "function f(value){return value+1}")
	expected := "function f(a) {\n  return a + 1;\n}\n"
	if out.Code != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, out.Code)
	}
}

func TestCompile_Dumps(t *testing.T) {
	opts := DefaultOptions()
	opts.DumpScopes = true
	opts.SymbolInfo = true
	out := compile(t, opts, "function f(value){return value}")
	if !strings.Contains(out.Dump, "// scopes") || !strings.Contains(out.Dump, "value -> a") {
		t.Errorf("unexpected dump:\n%s", out.Dump)
	}
}

func TestCompile_Diagnostics(t *testing.T) {
	out := compile(t, DefaultOptions(), "function f(){ return 1; g(); }")
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Code != "unreachable-code" {
		t.Errorf("expected one unreachable-code finding, got %v", out.Diagnostics)
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	c := NewCompiler(DefaultOptions(), nil)
	err := c.AddScript("bad.js", "var = ;", true)
	var syntax *parse.SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected a syntax error, got %v", err)
	}
	if _, err := c.Compile(); err == nil {
		t.Error("expected compiling without units to fail")
	}
}

// Differential execution: the minified program must evaluate to the same
// value as the original.
func TestCompile_Behavior(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"closures", `
function counter(start) {
  var current = start;
  return function () { current += 1; return current; };
}
var next = counter(10); next(); next();
`},
		{"recursion", `
function fib(number) { return number < 2 ? number : fib(number - 1) + fib(number - 2); }
var results = [];
for (var index = 0; index < 10; index++) results.push(fib(index));
results.join(",");
`},
		{"constants", `
const FACTOR = 3, LABEL = "total: ";
function scale(amount) { var scaled = amount * FACTOR; return LABEL + scaled; }
scale(7);
`},
		{"named function expression", `
var factorial = function compute(value) { return value <= 1 ? 1 : value * compute(value - 1); };
factorial(6);
`},
		{"catch and blocks", `
function risky(flag) {
  let outcome = "none";
  try { if (flag) throw new Error("boom"); outcome = "ok"; }
  catch (problem) { let message = problem.message; outcome = message; }
  return outcome;
}
risky(true) + "/" + risky(false);
`},
		{"objects", `
var settings = { width: 2, "height": 3, area: function () { return this.width * this.height; } };
var key = "width";
settings[key] + settings.area();
`},
		{"shadowing", `
var value = "outer";
function read() { var value = "inner"; function nested() { return value; } return nested(); }
read() + value;
`},
		{"eval keeps names", `
function dynamic() { var hidden = 42; return eval("hidden"); }
dynamic();
`},
		{"semicolons", `
var a = 1
var b = 2
;(function () { a += b })()
a
`},
		{"folding", `
var bits = (1 << 4) | 3, text = "con" + "cat", flag = !0 && "yes";
[bits, text, flag].join("|");
`},
		{"shorthand constants", `
function make() { const PI = 3; var size = 2; var shape = {PI, size}; return shape.PI * shape.size; }
make();
`},
		{"shorthand var", `
function wrap() { var x = 3; var o = {x}; return o.x; }
wrap();
`},
		{"delete operand", `
function remove() { var kept = 1; return String(delete kept) + kept; }
remove();
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := run(t, tt.src)
			for _, globals := range []bool{false, true} {
				opts := DefaultOptions()
				opts.ObfuscateGlobals = globals
				opts.MaxLineLength = 20
				out := compile(t, opts, tt.src)
				if got := run(t, out.Code); got != expected {
					t.Errorf("globals=%v: expected %s, got %s\n%s", globals, expected, got, out.Code)
				}
			}
		})
	}
}

func run(t *testing.T, src string) string {
	t.Helper()
	v, err := goja.New().RunString(src)
	if err != nil {
		t.Fatalf("RunString failed: %v\n%s", err, src)
	}
	return v.String()
}

func TestCompile_SplitUnits(t *testing.T) {
	opts := DefaultOptions()
	opts.ObfuscateGlobals = true
	opts.DetectConsts = false
	opts.SplitUnits = true
	out := compile(t, opts, "var shared = 1;", "shared++;")

	if len(out.Units) != 2 || out.Units[0] != "var a=1" || out.Units[1] != "a++" {
		t.Errorf("expected each unit rendered alone with one global name, got %q", out.Units)
	}
	if out.Code != "var a=1\na++" {
		t.Errorf("unexpected joined code %q", out.Code)
	}
}
