package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fdump writes an indented textual representation of the tree to w.
func Fdump(w io.Writer, n Node) {
	p := &dumper{w: w}
	p.dump(n)
}

// Dump returns the Fdump output as a string.
func Dump(n Node) string {
	var sb strings.Builder
	Fdump(&sb, n)
	return sb.String()
}

type dumper struct {
	w      io.Writer
	indent int
}

func (p *dumper) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *dumper) field(label string, n Node) {
	if n == nil {
		return
	}
	p.printf("%s:", label)
	p.indent++
	p.dump(n)
	p.indent--
}

func (p *dumper) stmts(label string, list []Stmt) {
	if len(list) == 0 {
		return
	}
	p.printf("%s:", label)
	p.indent++
	for _, s := range list {
		p.dump(s)
	}
	p.indent--
}

func (p *dumper) exprs(label string, list []Expr) {
	if len(list) == 0 {
		return
	}
	p.printf("%s:", label)
	p.indent++
	for _, e := range list {
		if e == nil {
			p.printf("<hole>")
			continue
		}
		p.dump(e)
	}
	p.indent--
}

func scopeSuffix(s *Scoped) string {
	switch {
	case s.Scope == NoScope:
		return ""
	case s.Pseudo != NoScope:
		return fmt.Sprintf(" [scope %d pseudo %d]", s.Scope, s.Pseudo)
	}
	return fmt.Sprintf(" [scope %d]", s.Scope)
}

func (p *dumper) dump(n Node) {
	switch n := n.(type) {
	case nil:
		return
	case *Program:
		p.printf("Program %s%s", n.File, scopeSuffix(&n.Scoped))
		p.indent++
		for _, d := range n.Directives {
			p.printf("Directive %s public=%v %s", d.At, d.Public, d.Spec)
		}
		for _, s := range n.Body {
			p.dump(s)
		}
		p.indent--
	case *Block:
		p.printf("Block %s%s", n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		for _, s := range n.List {
			p.dump(s)
		}
		p.indent--
	case *VarDecl:
		p.printf("VarDecl %s %s", n.Kind, n.pos)
		p.indent++
		for _, d := range n.List {
			p.dump(d)
		}
		p.indent--
	case *Declarator:
		p.printf("Declarator %s %s", n.Name, n.pos)
		p.indent++
		p.field("Init", n.Init)
		p.indent--
	case *FunctionDecl:
		p.printf("FunctionDecl %s", n.pos)
		p.indent++
		p.dump(n.Func)
		p.indent--
	case *If:
		p.printf("If %s", n.pos)
		p.indent++
		p.field("Test", n.Test)
		p.field("Then", n.Then)
		p.field("Else", n.Else)
		p.indent--
	case *For:
		p.printf("For %s%s", n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		p.field("Init", n.Init)
		p.field("Test", n.Test)
		p.field("Update", n.Update)
		p.field("Body", n.Body)
		p.indent--
	case *ForIn:
		kw := "in"
		if n.Of {
			kw = "of"
		}
		p.printf("ForIn %s %s%s", kw, n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		p.field("Left", n.Left)
		p.field("Right", n.Right)
		p.field("Body", n.Body)
		p.indent--
	case *While:
		p.printf("While %s", n.pos)
		p.indent++
		p.field("Test", n.Test)
		p.field("Body", n.Body)
		p.indent--
	case *DoWhile:
		p.printf("DoWhile %s", n.pos)
		p.indent++
		p.field("Body", n.Body)
		p.field("Test", n.Test)
		p.indent--
	case *Switch:
		p.printf("Switch %s%s", n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		p.field("Disc", n.Disc)
		for _, c := range n.Cases {
			p.dump(c)
		}
		p.indent--
	case *Case:
		if n.Test == nil {
			p.printf("Default %s", n.pos)
		} else {
			p.printf("Case %s", n.pos)
		}
		p.indent++
		p.field("Test", n.Test)
		p.stmts("Body", n.Body)
		p.indent--
	case *Try:
		p.printf("Try %s", n.pos)
		p.indent++
		p.dump(n.Block)
		if n.Catch != nil {
			p.dump(n.Catch)
		}
		if n.Finally != nil {
			p.field("Finally", n.Finally)
		}
		p.indent--
	case *Catch:
		p.printf("Catch %s %s%s", n.Param, n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		p.dump(n.Body)
		p.indent--
	case *Return:
		p.printf("Return %s", n.pos)
		p.indent++
		p.field("Value", n.Value)
		p.indent--
	case *Throw:
		p.printf("Throw %s", n.pos)
		p.indent++
		p.field("Value", n.Value)
		p.indent--
	case *Break:
		p.printf("Break %s %s", n.Label, n.pos)
	case *Continue:
		p.printf("Continue %s %s", n.Label, n.pos)
	case *Labelled:
		p.printf("Labelled %s %s", n.Label, n.pos)
		p.indent++
		p.dump(n.Body)
		p.indent--
	case *With:
		p.printf("With %s", n.pos)
		p.indent++
		p.field("Object", n.Object)
		p.field("Body", n.Body)
		p.indent--
	case *Debugger:
		p.printf("Debugger %s", n.pos)
	case *Empty:
		p.printf("Empty %s", n.pos)
	case *ExprStmt:
		p.printf("ExprStmt %s", n.pos)
		p.indent++
		p.dump(n.X)
		p.indent--

	case *Function:
		kind := "Function"
		if n.Arrow {
			kind = "Arrow"
		}
		name := n.Name
		if name == "" {
			name = "<anonymous>"
		}
		p.printf("%s %s %s%s", kind, name, n.pos, scopeSuffix(&n.Scoped))
		p.indent++
		for _, d := range n.Directives {
			p.printf("Directive %s public=%v %s", d.At, d.Public, d.Spec)
		}
		for _, prm := range n.Params {
			p.dump(prm)
		}
		p.stmts("Body", n.Body)
		p.field("ExprBody", n.ExprBody)
		p.indent--
	case *Param:
		prefix := ""
		if n.Rest {
			prefix = "..."
		}
		p.printf("Param %s%s", prefix, n.Name)
		p.indent++
		p.field("Default", n.Default)
		p.indent--

	case *Ident:
		p.printf("Ident %s", n.Name)
	case *Member:
		p.printf("Member .%s", n.Name)
		p.indent++
		p.dump(n.X)
		p.indent--
	case *Index:
		p.printf("Index")
		p.indent++
		p.dump(n.X)
		p.dump(n.Index)
		p.indent--
	case *Call:
		p.printf("Call")
		p.indent++
		p.dump(n.Fn)
		p.exprs("Args", n.Args)
		p.indent--
	case *New:
		p.printf("New")
		p.indent++
		p.dump(n.Fn)
		p.exprs("Args", n.Args)
		p.indent--
	case *Unary:
		if n.Postfix {
			p.printf("Postfix %s", n.Op)
		} else {
			p.printf("Unary %s", n.Op)
		}
		p.indent++
		p.dump(n.X)
		p.indent--
	case *Binary:
		p.printf("Binary %s", n.Op)
		p.indent++
		p.dump(n.X)
		p.dump(n.Y)
		p.indent--
	case *Assign:
		p.printf("Assign %s", n.Op)
		p.indent++
		p.dump(n.Target)
		p.dump(n.Value)
		p.indent--
	case *Conditional:
		p.printf("Conditional")
		p.indent++
		p.dump(n.Test)
		p.dump(n.Then)
		p.dump(n.Else)
		p.indent--
	case *Sequence:
		p.printf("Sequence")
		p.indent++
		for _, e := range n.List {
			p.dump(e)
		}
		p.indent--
	case *Object:
		p.printf("Object")
		p.indent++
		for _, prop := range n.Props {
			p.dump(prop)
		}
		p.indent--
	case *Property:
		p.printf("Property %s %s", propKindNames[n.Kind], n.Key)
		p.indent++
		p.field("Computed", n.Computed)
		if n.Kind != PropShorthand {
			p.field("Value", n.Value)
		}
		p.indent--
	case *Array:
		p.printf("Array")
		p.indent++
		for _, e := range n.List {
			if e == nil {
				p.printf("<hole>")
				continue
			}
			p.dump(e)
		}
		p.indent--
	case *Number:
		p.printf("Number %s", strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *String:
		p.printf("String %q", n.Value)
	case *Bool:
		p.printf("Bool %v", n.Value)
	case *Null:
		p.printf("Null")
	case *RegExp:
		p.printf("RegExp /%s/%s", n.Pattern, n.Flags)
	case *Template:
		p.printf("Template %q", n.Quasis)
		p.indent++
		p.field("Tag", n.Tag)
		for _, e := range n.Exprs {
			p.dump(e)
		}
		p.indent--
	case *This:
		p.printf("This")
	case *Spread:
		p.printf("Spread")
		p.indent++
		p.dump(n.X)
		p.indent--
	default:
		p.printf("%T", n)
	}
}

var propKindNames = [...]string{
	PropValue:     "value",
	PropGet:       "get",
	PropSet:       "set",
	PropMethod:    "method",
	PropShorthand: "shorthand",
	PropSpread:    "spread",
}
