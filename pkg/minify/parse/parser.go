// Package parse turns JavaScript source into the minifier's syntax tree. The
// goja parser does the tokenizing and grammar work; this package converts
// its tree and collects the accessibility directive comments it drops.
package parse

import (
	"errors"
	"fmt"

	"github.com/dop251/goja/parser"

	"github.com/lcalzada-xor/minime/pkg/minify/ast"
)

// SyntaxError reports source the minifier cannot accept.
type SyntaxError struct {
	At      ast.Bookmark
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.At, e.Message)
}

// Parse parses the given JavaScript code and returns the converted program.
// Directive comments are attached to the innermost function containing them.
func Parse(filename, code string) (*ast.Program, error) {
	program, err := parser.ParseFile(nil, filename, code, parser.IgnoreRegExpErrors, parser.WithDisableSourceMaps)
	if err != nil {
		return nil, syntaxError(filename, err)
	}

	c := &converter{file: program.File, filename: filename}
	prog, err := c.program(program)
	if err != nil {
		return nil, err
	}
	attachDirectives(prog, c.funcs, code, c.bookmarkAt)
	return prog, nil
}

// Check parses code and reports only whether it is syntactically valid.
func Check(filename, code string) error {
	_, err := parser.ParseFile(nil, filename, code, parser.IgnoreRegExpErrors, parser.WithDisableSourceMaps)
	if err != nil {
		return syntaxError(filename, err)
	}
	return nil
}

func syntaxError(filename string, err error) error {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &SyntaxError{
			At: ast.Bookmark{
				File:   filename,
				Line:   first.Position.Line,
				Column: first.Position.Column,
			},
			Message: first.Message,
		}
	}
	var single *parser.Error
	if errors.As(err, &single) {
		return &SyntaxError{
			At:      ast.Bookmark{File: filename, Line: single.Position.Line, Column: single.Position.Column},
			Message: single.Message,
		}
	}
	return &SyntaxError{At: ast.Bookmark{File: filename}, Message: err.Error()}
}
