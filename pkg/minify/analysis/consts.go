package analysis

import (
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
)

// Constant substitution runs in three passes over all units: find symbols
// initialized once with a constant and never written, verify that every
// reference may see the value, then substitute the value and drop the
// declaration.

type candidate struct {
	sym   *scope.Symbol
	decl  *ast.Declarator
	value ast.Expr
	unit  int
	refs  []*ast.Ident
	// rejected holds the reason the candidate was dropped.
	rejected string
}

type constState struct {
	cands  map[*scope.Symbol]*candidate
	order  []*candidate
	writes map[*scope.Symbol]bool
	refs   map[*ast.Ident]*candidate
	decls  map[*ast.Declarator]bool
}

func (c *candidate) reject(reason string) {
	if c.rejected == "" {
		c.rejected = reason
	}
}

// before reports whether position (unit, offset) precedes the declaration.
func (c *candidate) before(unit, offset int) bool {
	if unit != c.unit {
		return unit < c.unit
	}
	return offset < c.decl.Pos().Offset
}

// ----------------------------------------------------------------------------
// Pass 1: candidates

type constFinder struct {
	*cursor
	st   *constState
	unit int
}

func findConstants(ctx *Context) error {
	ctx.consts = &constState{
		cands:  make(map[*scope.Symbol]*candidate),
		writes: make(map[*scope.Symbol]bool),
		refs:   make(map[*ast.Ident]*candidate),
		decls:  make(map[*ast.Declarator]bool),
	}
	err := ctx.walk(func(c *cursor, unit int) ast.Visitor {
		return &constFinder{cursor: c, st: ctx.consts, unit: unit}
	})
	if err != nil {
		return err
	}
	st := ctx.consts
	for _, cand := range st.order {
		if st.writes[cand.sym] {
			cand.reject("reassigned")
		}
	}
	return nil
}

func (f *constFinder) OnEnterNode(n ast.Node) bool {
	f.enter(n)
	switch n := n.(type) {
	case *ast.VarDecl:
		target := f.current()
		if n.Kind == ast.Var {
			target = target.VarScope()
		}
		for _, d := range n.List {
			f.consider(target, n.Kind, d)
		}
	case *ast.Assign:
		f.write(n.Target)
	case *ast.Unary:
		if n.Op == "++" || n.Op == "--" {
			f.write(n.X)
		}
	case *ast.ForIn:
		f.write(n.Left)
	}
	return true
}

func (f *constFinder) OnLeaveNode(n ast.Node) {
	f.leave(n)
}

func (f *constFinder) write(target ast.Node) {
	if id, ok := target.(*ast.Ident); ok {
		if sym := f.lookup(id.Name); sym != nil {
			f.st.writes[sym] = true
		}
	}
}

func (f *constFinder) consider(s *scope.SymbolScope, kind ast.VarKind, d *ast.Declarator) {
	if d.Init == nil {
		return
	}
	sym := s.Symbols.Find(d.Name)
	if sym == nil || len(sym.Declarations) != 1 || s.Tainted {
		return
	}
	switch kind {
	case ast.Const:
		if s.RuleAccess(d.Name) == scope.Public {
			return
		}
	default:
		if s.SymbolAccess(d.Name) != scope.Private {
			return
		}
	}
	value := evalConstant(d.Init)
	if value == nil {
		return
	}
	cand := &candidate{sym: sym, decl: d, value: value, unit: f.unit}
	f.st.cands[sym] = cand
	f.st.order = append(f.st.order, cand)
}

// ----------------------------------------------------------------------------
// Pass 2: verification

type constVerifier struct {
	*cursor
	st    *constState
	unit  int
	funcs []*ast.Function
}

func verifyConstants(ctx *Context) error {
	st := ctx.consts
	if st == nil || len(st.order) == 0 {
		return nil
	}

	// A nested declaration of the same name makes the candidate ambiguous
	// to anyone reading the output, even where lookup would resolve it.
	for _, s := range ctx.Scopes.All() {
		if s.OuterScope == nil {
			continue
		}
		for _, sym := range s.Symbols.All() {
			if outer := s.OuterScope.Lookup(sym.Name); outer != nil {
				if cand := st.cands[outer]; cand != nil {
					cand.reject("shadowed in " + s.String())
				}
			}
		}
	}

	err := ctx.walk(func(c *cursor, unit int) ast.Visitor {
		return &constVerifier{cursor: c, st: st, unit: unit}
	})
	if err != nil {
		return err
	}

	for _, cand := range st.order {
		if _, ok := cand.value.(*ast.String); ok && len(cand.refs) > 1 {
			cand.reject("string used more than once")
		}
		if cand.rejected != "" {
			ctx.Logger.VV("const: kept %s (%s)", cand.sym.Name, cand.rejected)
			continue
		}
		for _, id := range cand.refs {
			st.refs[id] = cand
		}
		st.decls[cand.decl] = true
	}
	return nil
}

func (v *constVerifier) OnEnterNode(n ast.Node) bool {
	v.enter(n)
	switch n := n.(type) {
	case *ast.Function:
		v.funcs = append(v.funcs, n)
	case *ast.Unary:
		// delete on a binding yields false, on a literal true.
		if id, ok := n.X.(*ast.Ident); ok && n.Op == "delete" {
			if cand := v.st.cands[v.lookup(id.Name)]; cand != nil {
				cand.reject("operand of delete")
			}
		}
	case *ast.Ident:
		sym := v.lookup(n.Name)
		cand := v.st.cands[sym]
		if cand == nil {
			return true
		}
		if cand.before(v.unit, n.Pos().Offset) {
			cand.reject("used before its declaration")
		}
		if cand.sym.Kind != scope.KindConst && v.inHoistedFunction(cand.sym.Scope) {
			cand.reject("captured by a hoisted function")
		}
		cand.refs = append(cand.refs, n)
	}
	return true
}

func (v *constVerifier) OnLeaveNode(n ast.Node) {
	if fn, ok := n.(*ast.Function); ok && len(v.funcs) > 0 && v.funcs[len(v.funcs)-1] == fn {
		v.funcs = v.funcs[:len(v.funcs)-1]
	}
	v.leave(n)
}

// inHoistedFunction reports whether the walk is inside a function
// declaration nested below s. Such a function may run before the
// initializer.
func (v *constVerifier) inHoistedFunction(s *scope.SymbolScope) bool {
	for _, fn := range v.funcs {
		if !fn.IsDecl {
			continue
		}
		fs := v.ctx.Scopes.Get(fn.Scope)
		if fs != nil && fs != s && s.IsAncestorOf(fs) {
			return true
		}
	}
	return false
}

// ----------------------------------------------------------------------------
// Pass 3: substitution

func substituteConstants(ctx *Context) error {
	st := ctx.consts
	if st == nil || len(st.decls) == 0 {
		return nil
	}
	r := ast.Rewriter{
		Expr: func(e ast.Expr) ast.Expr {
			id, ok := e.(*ast.Ident)
			if !ok {
				return e
			}
			if cand := st.refs[id]; cand != nil {
				return ast.CloneLiteral(cand.value, id.Pos())
			}
			return e
		},
		Stmt: func(s ast.Stmt) ast.Stmt {
			vd, ok := s.(*ast.VarDecl)
			if !ok {
				return s
			}
			list := vd.List[:0]
			for _, d := range vd.List {
				if !st.decls[d] {
					list = append(list, d)
				}
			}
			vd.List = list
			if len(list) == 0 {
				return nil
			}
			return vd
		},
	}
	for i, u := range ctx.Units {
		ctx.Units[i] = ast.Rewrite(u, r).(*ast.Program)
	}

	for _, cand := range st.order {
		if !st.decls[cand.decl] {
			continue
		}
		cand.sym.Scope.Symbols.Remove(cand.sym.Name)
		if pseudo := ctx.mirrors[cand.sym]; pseudo != nil {
			pseudo.Unmirror(cand.sym)
		}
		ctx.ConstantsFolded++
		ctx.Logger.VV("const: substituted %s", cand.sym.Name)
	}
	return nil
}
