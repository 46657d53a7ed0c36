package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test.js", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

func TestParse_Statements(t *testing.T) {
	prog := mustParse(t, `
var a = 1, b;
let c = 2;
const d = "x";
function f(p, q = 3, ...rest) { return p + q; }
for (var i = 0; i < 3; i++) {}
for (const k in obj) {}
for (x of list) {}
try { a() } catch (e) { b = e } finally { c = 0 }
switch (a) { case 1: break; default: c++ }
outer: while (true) { continue outer; }
do { a-- } while (a > 0);
`)
	kinds := []string{}
	for _, s := range prog.Body {
		switch s := s.(type) {
		case *ast.VarDecl:
			kinds = append(kinds, s.Kind.String())
		case *ast.FunctionDecl:
			kinds = append(kinds, "function")
		case *ast.For:
			kinds = append(kinds, "for")
		case *ast.ForIn:
			if s.Of {
				kinds = append(kinds, "for-of")
			} else {
				kinds = append(kinds, "for-in")
			}
		case *ast.Try:
			kinds = append(kinds, "try")
		case *ast.Switch:
			kinds = append(kinds, "switch")
		case *ast.Labelled:
			kinds = append(kinds, "label")
		case *ast.DoWhile:
			kinds = append(kinds, "do")
		default:
			kinds = append(kinds, "?")
		}
	}
	expected := "var let const function for for-in for-of try switch label do"
	if got := strings.Join(kinds, " "); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	fn := prog.Body[3].(*ast.FunctionDecl).Func
	if !fn.IsDecl || fn.Name != "f" || len(fn.Params) != 3 {
		t.Fatalf("unexpected function %+v", fn)
	}
	if fn.Params[1].Default == nil || !fn.Params[2].Rest {
		t.Error("default and rest parameters not converted")
	}

	forIn := prog.Body[5].(*ast.ForIn)
	decl, ok := forIn.Left.(*ast.VarDecl)
	if !ok || decl.Kind != ast.Const || decl.List[0].Name != "k" {
		t.Errorf("unexpected for-in left side %#v", forIn.Left)
	}

	try := prog.Body[7].(*ast.Try)
	if try.Catch == nil || try.Catch.Param != "e" || try.Finally == nil {
		t.Error("try/catch/finally not converted")
	}
}

func TestParse_Expressions(t *testing.T) {
	prog := mustParse(t, `x += a ? b.c : d[e](...f, new G(1));
o = { k: 1, "s-k": 2, 3: 4, [z]: 5, get g() { return 1 }, m() {}, sh, ...rest };
t = tag` + "`a${1}b`" + `;
r = /ab+c/gi;
n = -0x10;`)

	assign := prog.Body[0].(*ast.ExprStmt).X.(*ast.Assign)
	if assign.Op != "+=" {
		t.Errorf("expected +=, got %q", assign.Op)
	}
	if _, ok := assign.Value.(*ast.Conditional); !ok {
		t.Errorf("expected conditional, got %T", assign.Value)
	}

	obj := prog.Body[1].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.Object)
	expected := []struct {
		kind    ast.PropKind
		keyKind ast.KeyKind
		key     string
	}{
		{ast.PropValue, ast.KeyIdent, "k"},
		{ast.PropValue, ast.KeyString, "s-k"},
		{ast.PropValue, ast.KeyNumber, "3"},
		{ast.PropValue, ast.KeyComputed, ""},
		{ast.PropGet, ast.KeyIdent, "g"},
		{ast.PropMethod, ast.KeyIdent, "m"},
		{ast.PropShorthand, ast.KeyIdent, "sh"},
		{ast.PropSpread, ast.KeyIdent, ""},
	}
	if len(obj.Props) != len(expected) {
		t.Fatalf("expected %d properties, got %d", len(expected), len(obj.Props))
	}
	for i, want := range expected {
		p := obj.Props[i]
		if p.Kind != want.kind || p.KeyKind != want.keyKind || p.Key != want.key {
			t.Errorf("property %d: got kind=%d keyKind=%d key=%q", i, p.Kind, p.KeyKind, p.Key)
		}
	}

	tpl := prog.Body[2].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.Template)
	if tpl.Tag == nil || len(tpl.Quasis) != 2 || tpl.Quasis[0] != "a" || len(tpl.Exprs) != 1 {
		t.Errorf("unexpected template %+v", tpl)
	}

	re := prog.Body[3].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.RegExp)
	if re.Pattern != "ab+c" || re.Flags != "gi" {
		t.Errorf("unexpected regexp %+v", re)
	}

	neg := prog.Body[4].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.Unary)
	if num := neg.X.(*ast.Number); num.Value != 16 {
		t.Errorf("expected 16, got %v", num.Value)
	}
}

func TestParse_Bookmarks(t *testing.T) {
	prog := mustParse(t, "var a;\n  function f() {}\n")
	fd := prog.Body[1].(*ast.FunctionDecl)
	pos := fd.Pos()
	if pos.File != "test.js" || pos.Line != 2 || pos.Column != 3 {
		t.Errorf("unexpected bookmark %s", pos)
	}
}

func TestParse_Unsupported(t *testing.T) {
	tests := []struct {
		src  string
		what string
	}{
		{"class A {}", "class"},
		{"function* g() {}", "generator"},
		{"async function f() {}", "async function"},
		{"var {a} = o;", "destructuring"},
		{"a?.b", "optional chaining"},
		{"x = 10n", "bigint"},
	}
	for _, tt := range tests {
		t.Run(tt.what, func(t *testing.T) {
			_, err := Parse("u.js", tt.src)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
			if se.Message != "unsupported syntax: "+tt.what {
				t.Errorf("unexpected message %q", se.Message)
			}
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("bad.js", "var = ;")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if se.At.File != "bad.js" || se.At.Line != 1 {
		t.Errorf("unexpected position %s", se.At)
	}
	if err := Check("bad.js", "var = ;"); err == nil {
		t.Error("Check accepted invalid source")
	}
	if err := Check("ok.js", "var a = 1;"); err != nil {
		t.Errorf("Check rejected valid source: %v", err)
	}
}

func TestParse_Directives(t *testing.T) {
	src := `// private:target.*
var target = {};
function f() {
  // public:keepMe
  var keepMe = 1;
  var inner = function () {
    // private:this.m_*
  };
}
`
	prog := mustParse(t, src)
	if len(prog.Directives) != 1 || prog.Directives[0].Spec != "target.*" || prog.Directives[0].Public {
		t.Fatalf("unexpected program directives %+v", prog.Directives)
	}
	fn := prog.Body[1].(*ast.FunctionDecl).Func
	if len(fn.Directives) != 1 || fn.Directives[0].Spec != "keepMe" || !fn.Directives[0].Public {
		t.Fatalf("unexpected function directives %+v", fn.Directives)
	}
	if fn.Directives[0].At.Line != 4 {
		t.Errorf("expected directive on line 4, got %s", fn.Directives[0].At)
	}
	inner := fn.Body[1].(*ast.VarDecl).List[0].Init.(*ast.Function)
	if len(inner.Directives) != 1 || inner.Directives[0].Spec != "this.m_*" {
		t.Errorf("unexpected inner directives %+v", inner.Directives)
	}
}

func TestDecodeString_LoneSurrogate(t *testing.T) {
	prog := mustParse(t, `a = "\uD800"; b = "😀";`)
	lone := prog.Body[0].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.String)
	if !lone.Verbatim || lone.Raw != `"\uD800"` {
		t.Errorf("expected lone surrogate to be verbatim, got %+v", lone)
	}
	pair := prog.Body[1].(*ast.ExprStmt).X.(*ast.Assign).Value.(*ast.String)
	if pair.Verbatim || pair.Value != "\U0001F600" {
		t.Errorf("expected surrogate pair to decode, got %+v", pair)
	}
}
