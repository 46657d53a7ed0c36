package analysis

import "github.com/lcalzada-xor/minime/pkg/minify/ast"

// combineVarDecls merges directly adjacent declarations of the same kind
// into one statement. Declarations separated by any other statement are
// left alone so initializer order relative to other code is unchanged.
func combineVarDecls(ctx *Context) error {
	merged := 0
	for _, u := range ctx.Units {
		ast.Inspect(u, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.Program:
				n.Body = mergeAdjacent(n.Body, &merged)
			case *ast.Block:
				n.List = mergeAdjacent(n.List, &merged)
			case *ast.Case:
				n.Body = mergeAdjacent(n.Body, &merged)
			case *ast.Function:
				n.Body = mergeAdjacent(n.Body, &merged)
			}
			return true
		})
	}
	if merged > 0 {
		ctx.Logger.VV("combine: merged %d declarations", merged)
	}
	return nil
}

func mergeAdjacent(list []ast.Stmt, merged *int) []ast.Stmt {
	if len(list) < 2 {
		return list
	}
	out := list[:1]
	for _, s := range list[1:] {
		cur, ok := s.(*ast.VarDecl)
		prev, prevOK := out[len(out)-1].(*ast.VarDecl)
		if ok && prevOK && prev.Kind == cur.Kind {
			prev.List = append(prev.List, cur.List...)
			*merged++
			continue
		}
		out = append(out, s)
	}
	return out
}
