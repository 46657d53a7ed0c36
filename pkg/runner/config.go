package runner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/minify"
	"github.com/lcalzada-xor/minime/pkg/minify/scope"
	"github.com/lcalzada-xor/minime/pkg/models"
)

// Options holds all configuration options for the runner
type Options struct {
	// Inputs
	Inputs        []*models.Input
	ResponseFiles []string
	Encoding      string
	Concurrency   int
	Timeout       time.Duration
	Proxy         string
	RateLimit     float64
	Insecure      bool

	// Compilation
	MaxLineLength    int
	NoObfuscate      bool
	DetectConsts     bool
	Formatted        bool
	ObfuscateGlobals bool
	// Rules are "public:<spec>" or "private:<spec>", applied in order.
	Rules []string

	// Output
	OutputFile     string
	Stdout         bool
	NoCredit       bool
	CheckFileTimes bool
	Verify         bool
	OutputFormat   string
	Verbose        bool
	VeryVerbose    bool
	Silent         bool

	// Diagnostics
	SymbolInfo bool
	DumpAST    bool
	DumpScopes bool
}

// DefaultOptions returns a new Options struct with default values
func DefaultOptions() *Options {
	return &Options{
		Concurrency:   config.DefaultConcurrency,
		Timeout:       config.DefaultTimeout,
		MaxLineLength: config.DefaultMaxLineLength,
		DetectConsts:  true,
		OutputFormat:  "human",
	}
}

// Validate checks the options before a run.
func (o *Options) Validate() error {
	if len(o.Inputs) == 0 {
		return fmt.Errorf("no inputs given")
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if o.MaxLineLength < 0 {
		return fmt.Errorf("max line length cannot be negative")
	}
	if o.Stdout && o.OutputFile != "" {
		return fmt.Errorf("-o and -stdout are mutually exclusive")
	}
	if o.CheckFileTimes && o.Stdout {
		return fmt.Errorf("-check-filetimes needs an output file")
	}
	stdin := 0
	for _, in := range o.Inputs {
		if err := in.Validate(); err != nil {
			return fmt.Errorf("input %s: %w", in.Location, err)
		}
		if in.Kind == models.InputStdin {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("stdin can only be read once")
	}
	if _, err := o.AccessRules(); err != nil {
		return err
	}
	return nil
}

// AccessRules parses Rules.
func (o *Options) AccessRules() ([]scope.AccessRule, error) {
	rules := make([]scope.AccessRule, 0, len(o.Rules))
	for _, r := range o.Rules {
		kind, spec, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("invalid rule %q", r)
		}
		var access scope.Accessibility
		switch kind {
		case "public":
			access = scope.Public
		case "private":
			access = scope.Private
		default:
			return nil, fmt.Errorf("invalid rule %q: expected public or private", r)
		}
		rule, err := scope.ParseAccessRule(spec, access)
		if err != nil {
			return nil, fmt.Errorf("invalid rule %q: %w", r, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// CompilerOptions maps the runner options onto the compiler's.
func (o *Options) CompilerOptions() (minify.Options, error) {
	rules, err := o.AccessRules()
	if err != nil {
		return minify.Options{}, err
	}
	return minify.Options{
		MaxLineLength:    o.MaxLineLength,
		NoObfuscate:      o.NoObfuscate,
		DetectConsts:     o.DetectConsts,
		Formatted:        o.Formatted,
		SymbolInfo:       o.SymbolInfo,
		DumpAST:          o.DumpAST,
		DumpScopes:       o.DumpScopes,
		ObfuscateGlobals: o.ObfuscateGlobals,
		Rules:            rules,
	}, nil
}

// Capture serializes every option that changes the produced output. Two
// runs with equal captures over unchanged inputs write the same file.
func (o *Options) Capture() string {
	var sb strings.Builder
	line := func(key, value string) {
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	line("version", config.Version)
	for _, in := range o.Inputs {
		line("input", fmt.Sprintf("%s:%s:%t:%s", in.Kind, in.Location, in.Warnings, in.Encoding))
	}
	line("encoding", o.Encoding)
	line("max-line-length", strconv.Itoa(o.MaxLineLength))
	line("no-obfuscate", strconv.FormatBool(o.NoObfuscate))
	line("detect-consts", strconv.FormatBool(o.DetectConsts))
	line("formatted", strconv.FormatBool(o.Formatted))
	line("obfuscate-globals", strconv.FormatBool(o.ObfuscateGlobals))
	for _, r := range o.Rules {
		line("rule", r)
	}
	line("no-credit", strconv.FormatBool(o.NoCredit))
	return sb.String()
}
