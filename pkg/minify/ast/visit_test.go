package ast

import (
	"strings"
	"testing"
)

type recorder struct {
	events []string
	skip   map[string]bool
}

func nodeLabel(n Node) string {
	switch n := n.(type) {
	case *Ident:
		return "Ident(" + n.Name + ")"
	case *Function:
		return "Function(" + n.Name + ")"
	case *Declarator:
		return "Declarator(" + n.Name + ")"
	}
	return typeName(n)
}

func typeName(n Node) string {
	switch n.(type) {
	case *Program:
		return "Program"
	case *VarDecl:
		return "VarDecl"
	case *FunctionDecl:
		return "FunctionDecl"
	case *Return:
		return "Return"
	case *Binary:
		return "Binary"
	case *Number:
		return "Number"
	case *ExprStmt:
		return "ExprStmt"
	case *Call:
		return "Call"
	}
	return "?"
}

func (r *recorder) OnEnterNode(n Node) bool {
	l := nodeLabel(n)
	r.events = append(r.events, "enter "+l)
	return !r.skip[l]
}

func (r *recorder) OnLeaveNode(n Node) {
	r.events = append(r.events, "leave "+nodeLabel(n))
}

// var a = 1; function f(b) { return a + b; } f(2);
func sampleProgram() *Program {
	fn := &Function{
		Name:   "f",
		IsDecl: true,
		Params: []*Param{{Name: "b"}},
		Body: []Stmt{
			&Return{Value: &Binary{Op: "+", X: &Ident{Name: "a"}, Y: &Ident{Name: "b"}}},
		},
	}
	return &Program{
		Body: []Stmt{
			&VarDecl{Kind: Var, List: []*Declarator{{Name: "a", Init: &Number{Value: 1, Raw: "1"}}}},
			&FunctionDecl{Func: fn},
			&ExprStmt{X: &Call{Fn: &Ident{Name: "f"}, Args: []Expr{&Number{Value: 2, Raw: "2"}}}},
		},
	}
}

func TestVisit_Order(t *testing.T) {
	r := &recorder{}
	Visit(sampleProgram(), r)

	expected := []string{
		"enter Program",
		"enter VarDecl", "enter Declarator(a)", "enter Number", "leave Number", "leave Declarator(a)", "leave VarDecl",
		"enter FunctionDecl", "enter Function(f)", "enter ?", "leave ?",
		"enter Return", "enter Binary", "enter Ident(a)", "leave Ident(a)", "enter Ident(b)", "leave Ident(b)",
		"leave Binary", "leave Return", "leave Function(f)", "leave FunctionDecl",
		"enter ExprStmt", "enter Call", "enter Ident(f)", "leave Ident(f)", "enter Number", "leave Number",
		"leave Call", "leave ExprStmt",
		"leave Program",
	}
	if len(r.events) != len(expected) {
		t.Fatalf("expected %d events, got %d: %v", len(expected), len(r.events), r.events)
	}
	for i := range expected {
		if r.events[i] != expected[i] {
			t.Errorf("event %d: expected %q, got %q", i, expected[i], r.events[i])
		}
	}
}

func TestVisit_SkipChildrenStillLeaves(t *testing.T) {
	r := &recorder{skip: map[string]bool{"Function(f)": true}}
	Visit(sampleProgram(), r)

	joined := strings.Join(r.events, ",")
	if strings.Contains(joined, "Return") {
		t.Errorf("children of a skipped node were visited: %s", joined)
	}
	if !strings.Contains(joined, "enter Function(f),leave Function(f)") {
		t.Errorf("expected leave right after a skipped enter, got %s", joined)
	}
}

func TestVisit_NilChildren(t *testing.T) {
	prog := &Program{Body: []Stmt{
		&If{Test: &Bool{Value: true}, Then: &Empty{}},
		&Return{},
		&For{Body: &Empty{}},
		&Try{Block: &Block{}, Finally: &Block{}},
		&ExprStmt{X: &Array{List: []Expr{nil, &Null{}}}},
	}}
	count := 0
	Inspect(prog, func(Node) bool {
		count++
		return true
	})
	if count != 13 {
		t.Errorf("expected 13 nodes, got %d", count)
	}
}

func TestRewrite_FoldsBottomUp(t *testing.T) {
	prog := sampleProgram()
	var seen []string
	Rewrite(prog, Rewriter{
		Expr: func(e Expr) Expr {
			seen = append(seen, nodeLabel(e))
			if id, ok := e.(*Ident); ok && id.Name == "a" {
				return &Number{Value: 1, Raw: "1"}
			}
			return e
		},
	})

	ret := prog.Body[1].(*FunctionDecl).Func.Body[0].(*Return)
	bin := ret.Value.(*Binary)
	if _, ok := bin.X.(*Number); !ok {
		t.Errorf("expected a to be replaced by a number, got %T", bin.X)
	}
	// Children are rewritten before their parent.
	if idx := indexOf(seen, "Binary"); idx < indexOf(seen, "Ident(b)") {
		t.Errorf("parent rewritten before child: %v", seen)
	}
}

func TestRewrite_RemovesStatements(t *testing.T) {
	prog := sampleProgram()
	Rewrite(prog, Rewriter{
		Stmt: func(s Stmt) Stmt {
			if _, ok := s.(*VarDecl); ok {
				return nil
			}
			return s
		},
	})
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}

	loop := &While{Test: &Bool{Value: true}, Body: &ExprStmt{X: &Ident{Name: "x"}}}
	Rewrite(loop, Rewriter{Stmt: func(s Stmt) Stmt {
		if _, ok := s.(*ExprStmt); ok {
			return nil
		}
		return s
	}})
	if _, ok := loop.Body.(*Empty); !ok {
		t.Errorf("expected removed loop body to become Empty, got %T", loop.Body)
	}
}

func TestDump(t *testing.T) {
	prog := sampleProgram()
	prog.File = "sample.js"
	prog.Scope = 1
	prog.Pseudo = 1
	out := Dump(prog)

	for _, want := range []string{
		"Program sample.js [scope 1 pseudo 1]",
		"  VarDecl var",
		"    Declarator a",
		"        Number 1",
		"    Function f",
		"      Param b",
		"        Binary +",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestBookmark_String(t *testing.T) {
	tests := []struct {
		b        Bookmark
		expected string
	}{
		{Bookmark{File: "a.js", Line: 3, Column: 7}, "a.js:3:7"},
		{Bookmark{Line: 1, Column: 1}, "1:1"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
