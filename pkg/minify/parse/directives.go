package parse

import (
	"regexp"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// directiveRe matches a line holding only a // public:spec or
// // private:spec comment.
var directiveRe = regexp.MustCompile(`(?m)^[ \t]*//[ \t]*(public|private):[ \t]*(\S+)[ \t\r]*$`)

// Directives returns the accessibility directive comments of src with their
// byte offsets.
func Directives(src string) ([]ast.Directive, []int) {
	var dirs []ast.Directive
	var offsets []int
	for _, m := range directiveRe.FindAllStringSubmatchIndex(src, -1) {
		dirs = append(dirs, ast.Directive{
			Public: src[m[2]:m[3]] == "public",
			Spec:   src[m[4]:m[5]],
		})
		offsets = append(offsets, m[2])
	}
	return dirs, offsets
}

// attachDirectives hands each directive to the innermost function whose
// source span contains it, or to the program.
func attachDirectives(prog *ast.Program, funcs []funcRange, src string, bookmarkAt func(int) ast.Bookmark) {
	dirs, offsets := Directives(src)
	for i, d := range dirs {
		off := offsets[i]
		d.At = bookmarkAt(off)

		var owner *funcRange
		for j := range funcs {
			f := &funcs[j]
			if off < f.from || off >= f.to {
				continue
			}
			if owner == nil || f.to-f.from < owner.to-owner.from {
				owner = f
			}
		}
		if owner != nil {
			owner.fn.Directives = append(owner.fn.Directives, d)
		} else {
			prog.Directives = append(prog.Directives, d)
		}
	}
}
