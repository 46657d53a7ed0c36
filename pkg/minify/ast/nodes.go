// Package ast defines the closed syntax tree consumed by the minifier core.
//
// Nodes are produced by package parse, annotated with scope ids by the
// analysis passes and serialized by package render. Scopes themselves live in
// an arena owned by package scope; nodes only hold their ids.
package ast

import "fmt"

// Bookmark is a source position attached to every node.
type Bookmark struct {
	File   string
	Line   int
	Column int
	Offset int
}

// String formats the bookmark as file:line:col.
func (b Bookmark) String() string {
	if b.File == "" {
		return fmt.Sprintf("%d:%d", b.Line, b.Column)
	}
	return fmt.Sprintf("%s:%d:%d", b.File, b.Line, b.Column)
}

// IsValid reports whether the bookmark points at a real source line.
func (b Bookmark) IsValid() bool { return b.Line > 0 }

// ----------------------------------------------------------------------------
// Interfaces

// Node is the interface implemented by all tree nodes.
type Node interface {
	Pos() Bookmark
	aNode()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	aExpr()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	aStmt()
}

type node struct {
	pos Bookmark
}

func (n *node) Pos() Bookmark { return n.pos }

// SetPos sets the node's bookmark.
func (n *node) SetPos(b Bookmark) { n.pos = b }

func (*node) aNode() {}

type expr struct{ node }

func (*expr) aExpr() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

// ----------------------------------------------------------------------------
// Scope annotations

// ScopeID indexes a scope in the scope arena. Zero means no scope.
type ScopeID int32

// NoScope is the zero ScopeID.
const NoScope ScopeID = 0

// Scoped holds the scope ids a node owns once the scope builder ran.
type Scoped struct {
	Scope  ScopeID
	Pseudo ScopeID
}

// Scopes returns the node's scope annotation.
func (s *Scoped) Scopes() *Scoped { return s }

// OwnsScope reports whether a scope was attached to the node.
func (s *Scoped) OwnsScope() bool { return s.Scope != NoScope }

// ScopeOwner is implemented by nodes that may introduce a lexical scope:
// Program, Function, Catch, Block, For, ForIn and Switch.
type ScopeOwner interface {
	Node
	Scopes() *Scoped
}

// Directive is an accessibility comment (// public:spec or // private:spec)
// attached to the innermost function containing it.
type Directive struct {
	At     Bookmark
	Public bool
	Spec   string
}

// ----------------------------------------------------------------------------
// Statements

// Program is one compilation unit. All units of a compilation share the
// same root scope.
type Program struct {
	stmt
	Scoped
	File       string
	Body       []Stmt
	Directives []Directive
	Warnings   bool // lint findings are reported for this unit
}

// Block is a braced statement list.
type Block struct {
	stmt
	Scoped
	List []Stmt
}

// VarKind distinguishes var, let and const declarations.
type VarKind int

const (
	Var VarKind = iota
	Let
	Const
)

func (k VarKind) String() string {
	switch k {
	case Let:
		return "let"
	case Const:
		return "const"
	}
	return "var"
}

// VarDecl is a variable declaration statement.
type VarDecl struct {
	stmt
	Kind VarKind
	List []*Declarator
}

// Declarator is a single name = init entry of a VarDecl.
type Declarator struct {
	node
	Name string
	Init Expr
}

// FunctionDecl is a hoisted function declaration statement.
type FunctionDecl struct {
	stmt
	Func *Function
}

// If statement; Else may be nil.
type If struct {
	stmt
	Test Expr
	Then Stmt
	Else Stmt
}

// For is a classic three-clause loop. Init is a *VarDecl, an Expr or nil.
type For struct {
	stmt
	Scoped
	Init   Node
	Test   Expr
	Update Expr
	Body   Stmt
}

// ForIn is a for-in or for-of loop. Left is a *VarDecl with a single
// declarator or an assignable Expr.
type ForIn struct {
	stmt
	Scoped
	Of    bool
	Left  Node
	Right Expr
	Body  Stmt
}

// While loop.
type While struct {
	stmt
	Test Expr
	Body Stmt
}

// DoWhile loop.
type DoWhile struct {
	stmt
	Body Stmt
	Test Expr
}

// Switch statement. Lexical declarations in any case share one scope.
type Switch struct {
	stmt
	Scoped
	Disc  Expr
	Cases []*Case
}

// Case clause of a switch; Test is nil for default.
type Case struct {
	node
	Test Expr
	Body []Stmt
}

// Try statement; Catch or Finally may be nil but not both.
type Try struct {
	stmt
	Block   *Block
	Catch   *Catch
	Finally *Block
}

// Catch clause. Param is empty for an optional catch binding.
type Catch struct {
	node
	Scoped
	Param   string
	ParamAt Bookmark
	Body    *Block
}

// Return statement; Value may be nil.
type Return struct {
	stmt
	Value Expr
}

// Throw statement.
type Throw struct {
	stmt
	Value Expr
}

// Break statement with an optional label.
type Break struct {
	stmt
	Label string
}

// Continue statement with an optional label.
type Continue struct {
	stmt
	Label string
}

// Labelled statement.
type Labelled struct {
	stmt
	Label string
	Body  Stmt
}

// With statement.
type With struct {
	stmt
	Object Expr
	Body   Stmt
}

// Debugger statement.
type Debugger struct{ stmt }

// Empty statement.
type Empty struct{ stmt }

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	stmt
	X Expr
}

// ----------------------------------------------------------------------------
// Functions

// Function is a function expression, declaration body or arrow function.
// Arrow functions with a concise body carry ExprBody instead of Body.
type Function struct {
	expr
	Scoped
	Name       string
	NameAt     Bookmark
	NameScope  ScopeID // named function expressions only
	Params     []*Param
	Body       []Stmt
	ExprBody   Expr
	Arrow      bool
	IsDecl     bool
	Directives []Directive
}

// Param is a formal parameter.
type Param struct {
	node
	Name    string
	Default Expr
	Rest    bool
}

// ----------------------------------------------------------------------------
// Expressions

// Ident is an identifier reference.
type Ident struct {
	expr
	Name string
}

// Member is a dotted member access x.Name.
type Member struct {
	expr
	X    Expr
	Name string
}

// Index is a bracketed member access x[Index].
type Index struct {
	expr
	X     Expr
	Index Expr
}

// Call expression.
type Call struct {
	expr
	Fn   Expr
	Args []Expr
}

// New expression.
type New struct {
	expr
	Fn   Expr
	Args []Expr
}

// Unary is a prefix or postfix operator application. Op holds the operator
// text ("!", "typeof", "++", ...).
type Unary struct {
	expr
	Op      string
	X       Expr
	Postfix bool
}

// Binary covers arithmetic, comparison and logical operators.
type Binary struct {
	expr
	Op string
	X  Expr
	Y  Expr
}

// Assign is a plain or compound assignment; Op is "=", "+=", ...
type Assign struct {
	expr
	Op     string
	Target Expr
	Value  Expr
}

// Conditional is test ? then : else.
type Conditional struct {
	expr
	Test Expr
	Then Expr
	Else Expr
}

// Sequence is a comma expression.
type Sequence struct {
	expr
	List []Expr
}

// PropKind classifies object literal entries.
type PropKind int

const (
	PropValue PropKind = iota
	PropGet
	PropSet
	PropMethod
	PropShorthand
	PropSpread
)

// KeyKind records how a property key was written.
type KeyKind int

const (
	KeyIdent KeyKind = iota
	KeyString
	KeyNumber
	KeyComputed
)

// Property is an object literal entry. Get, set and method values are
// *Function; shorthand values are the *Ident the key stands for; spread
// entries only carry Value.
type Property struct {
	node
	Kind     PropKind
	Key      string
	KeyKind  KeyKind
	Computed Expr
	Value    Expr
}

// Object literal.
type Object struct {
	expr
	Props []*Property
}

// Array literal; nil entries are holes.
type Array struct {
	expr
	List []Expr
}

// Number literal. Raw is the source text, empty for folded values.
type Number struct {
	expr
	Value float64
	Raw   string
}

// String literal. Verbatim is set when Value cannot round-trip through
// UTF-8 (lone surrogates) and Raw must be emitted as written.
type String struct {
	expr
	Value    string
	Raw      string
	Verbatim bool
}

// Bool literal.
type Bool struct {
	expr
	Value bool
}

// Null literal.
type Null struct{ expr }

// RegExp literal.
type RegExp struct {
	expr
	Pattern string
	Flags   string
}

// Template literal; Quasis are the raw chunks, len(Quasis) == len(Exprs)+1.
type Template struct {
	expr
	Tag    Expr
	Quasis []string
	Exprs  []Expr
}

// This expression.
type This struct{ expr }

// Spread is ...X inside call arguments and array literals.
type Spread struct {
	expr
	X Expr
}
