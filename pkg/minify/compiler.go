// Package minify compiles one or more JavaScript sources into a single
// minified program. Units share one root scope and one pair of name
// allocators, so the result behaves like the inputs concatenated.
package minify

import (
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/logger"
	"github.com/lcalzada-xor/minime/pkg/minify/analysis"
	"github.com/lcalzada-xor/minime/pkg/minify/ast"
	"github.com/lcalzada-xor/minime/pkg/minify/parse"
	"github.com/lcalzada-xor/minime/pkg/minify/render"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
	"github.com/lcalzada-xor/minime/pkg/models"
)

// StructuralError reports inconsistent scope annotations. Compilation stops
// when one is found.
type StructuralError = analysis.StructuralError

// Options holds the compiler settings.
type Options struct {
	// MaxLineLength wraps the output at safe points; 0 disables wrapping.
	MaxLineLength int
	NoObfuscate   bool
	DetectConsts  bool
	Formatted     bool

	// Diagnostic dumps, collected in Output.Dump.
	SymbolInfo bool
	DumpAST    bool
	DumpScopes bool

	// SplitUnits renders every unit separately into Output.Units.
	SplitUnits bool

	// ObfuscateGlobals makes top level declarations private.
	ObfuscateGlobals bool
	// Rules apply to the root scope before any directive comment.
	Rules []scope.AccessRule
}

// DefaultOptions returns the default compiler options.
func DefaultOptions() Options {
	return Options{
		MaxLineLength: config.DefaultMaxLineLength,
		DetectConsts:  true,
	}
}

// Output is the result of one compilation.
type Output struct {
	Code string
	// Units holds the code of each unit when Options.SplitUnits is set.
	// Code is then the units joined by newlines.
	Units       []string
	Diagnostics []models.Diagnostic
	Stats       models.Stats
	// Dump holds the requested tree, scope and symbol dumps.
	Dump string
}

// Compiler accumulates source units and compiles them together.
type Compiler struct {
	opts  Options
	log   *logger.Logger
	units []*ast.Program
	sizes []int
}

// NewCompiler creates a compiler. log may be nil.
func NewCompiler(opts Options, log *logger.Logger) *Compiler {
	return &Compiler{opts: opts, log: log}
}

// AddScript parses src and adds it as the next unit. Lint findings for the
// unit are only reported when warnings is set.
func (c *Compiler) AddScript(name, src string, warnings bool) error {
	prog, err := parse.Parse(name, src)
	if err != nil {
		return err
	}
	prog.Warnings = warnings
	c.AddUnit(prog, len(src))
	return nil
}

// AddUnit adds an already parsed unit of size input bytes.
func (c *Compiler) AddUnit(prog *ast.Program, size int) {
	c.units = append(c.units, prog)
	c.sizes = append(c.sizes, size)
	c.log.VV("unit %s: %d bytes", prog.File, size)
}

// Units returns the number of units added.
func (c *Compiler) Units() int { return len(c.units) }

// Compile runs the analysis passes over all units and renders them.
func (c *Compiler) Compile() (*Output, error) {
	start := time.Now()
	if len(c.units) == 0 {
		return nil, fmt.Errorf("no input units")
	}

	ctx := analysis.NewContext(c.units, analysis.Options{
		Obfuscate:    !c.opts.NoObfuscate,
		DetectConsts: c.opts.DetectConsts,
	}, c.log)
	ctx.Rules = c.opts.Rules
	if c.opts.ObfuscateGlobals {
		ctx.Root().DefaultAccess = scope.Private
	}
	if err := analysis.Run(ctx, analysis.Pipeline()); err != nil {
		return nil, err
	}

	var dump strings.Builder
	if c.opts.DumpAST {
		for _, u := range ctx.Units {
			fmt.Fprintf(&dump, "// ast: %s\n", u.File)
			ast.Fdump(&dump, u)
		}
	}
	if c.opts.DumpScopes {
		dump.WriteString("// scopes\n")
		dump.WriteString(ctx.Root().Dump())
	}

	symbols, members := seedAllocators(ctx.PublicMembers)
	r := render.New(ctx.Scopes, ctx.Pseudo, symbols, members, render.Options{
		MaxLineLength: c.opts.MaxLineLength,
		Formatted:     c.opts.Formatted,
		Obfuscate:     !c.opts.NoObfuscate,
	})
	var (
		code  string
		parts []string
		err   error
	)
	if c.opts.SplitUnits {
		parts, err = r.RenderUnits(ctx.Units...)
		code = strings.Join(parts, "\n")
	} else {
		code, err = r.Render(ctx.Units...)
	}
	if err != nil {
		return nil, err
	}
	if c.opts.SymbolInfo {
		dump.WriteString("// symbols\n")
		dump.WriteString(ctx.Scopes.SymbolInfo())
	}

	out := &Output{
		Code:        code,
		Units:       parts,
		Diagnostics: ctx.Diagnostics,
		Dump:        dump.String(),
	}
	out.Stats = c.stats(ctx, code)
	out.Stats.Duration = time.Since(start)
	c.log.V("compiled %d unit(s): %d -> %d bytes", len(c.units), out.Stats.InputBytes, out.Stats.OutputBytes)
	return out, nil
}

// seedAllocators claims the reserved words with both allocators and every
// public member name with the member allocator.
func seedAllocators(publicMembers map[string]bool) (symbols, members *scope.SymbolAllocator) {
	symbols, members = scope.NewSymbolAllocator(), scope.NewSymbolAllocator()
	for _, w := range config.ReservedWords {
		symbols.ClaimSymbol(w)
		members.ClaimSymbol(w)
	}
	for m := range publicMembers {
		members.ClaimSymbol(m)
	}
	return symbols, members
}

func (c *Compiler) stats(ctx *analysis.Context, code string) models.Stats {
	st := models.Stats{
		OutputBytes:     len(code),
		ConstantsFolded: ctx.ConstantsFolded,
	}
	for i, u := range c.units {
		st.Units = append(st.Units, models.UnitResult{Name: u.File, InputBytes: c.sizes[i]})
		st.InputBytes += c.sizes[i]
	}
	for _, s := range ctx.Scopes.All() {
		for _, sym := range s.Symbols.All() {
			if sym.Obfuscated != "" && sym.Obfuscated != sym.Name {
				st.SymbolsRenamed++
			}
		}
		for _, m := range s.Members.All() {
			if m.Obfuscated != "" && m.Obfuscated != m.Name {
				st.MembersRenamed++
			}
		}
	}
	return st
}
