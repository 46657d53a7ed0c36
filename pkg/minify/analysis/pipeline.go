package analysis

import "fmt"

// Pass describes a single analysis pass.
type Pass struct {
	Name string
	Fn   func(ctx *Context) error
	// Enabled reports whether the pass runs for the given options. A nil
	// Enabled always runs.
	Enabled func(opts Options) bool
}

func whenObfuscating(opts Options) bool { return opts.Obfuscate }

func whenDetectingConsts(opts Options) bool { return opts.Obfuscate && opts.DetectConsts }

// Pipeline returns the passes in the order they must run.
func Pipeline() []Pass {
	return []Pass{
		{Name: "combine", Fn: combineVarDecls},
		{Name: "scopes", Fn: buildScopes},
		{Name: "declare", Fn: declare},
		{Name: "lint", Fn: lint},
		{Name: "const-find", Fn: findConstants, Enabled: whenDetectingConsts},
		{Name: "const-verify", Fn: verifyConstants, Enabled: whenDetectingConsts},
		{Name: "const-substitute", Fn: substituteConstants, Enabled: whenDetectingConsts},
		{Name: "simplify", Fn: simplify},
		{Name: "usage", Fn: countUsage, Enabled: whenObfuscating},
	}
}

// Run executes passes on ctx in order and stops at the first error. Every
// scope is prepared for rendering afterwards.
func Run(ctx *Context, passes []Pass) error {
	for _, p := range passes {
		if p.Enabled != nil && !p.Enabled(ctx.Options) {
			continue
		}
		ctx.Logger.VV("pass: %s", p.Name)
		if err := p.Fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	ctx.Scopes.Root().Prepare()
	ctx.Pseudo.Root().Prepare()
	return nil
}
