// minime minifies JavaScript: it shortens private names, folds constants,
// drops what cannot run, and prints the result as compactly as it can.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/models"
	"github.com/lcalzada-xor/minime/pkg/output"
	"github.com/lcalzada-xor/minime/pkg/runner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		}
		os.Exit(1)
	}
}

const usage = `
USAGE:
  minime [flags] [-nw] input [[-nw] input ...]

INPUTS:
  file.js, *.js, dir/        Scripts, wildcards, directories (honoring .gitignore and .minimeignore)
  https://host/x.js          Remote script
  page.html                  Minify the inline scripts of a page in place
  -                          Read stdin
  @file                      Read more arguments from a response file
  -nw                        Disable warnings for the next input
  -e,  --encoding string     Encoding of the inputs that follow (default: BOM or UTF-8)

OUTPUT:
  -o,  --output string       Output file (default <input>.min.js, stdout for remote and stdin inputs)
       --stdout              Write to stdout
       --no-credit           Leave out the credit comment
       --check-filetimes     Skip the build when the output is up to date
       --verify              Check that the output parses before writing it
  -format string             Report format: human, plain, json (default "human")

MINIFICATION:
  -l,  --max-line-length int Wrap lines longer than this, 0 for no limit (default 120)
       --no-obfuscate        Keep every name
       --no-consts           Do not substitute constants
  -f,  --formatted           Indented, readable output
  -g,  --obfuscate-globals   Rename top level declarations too
       --public spec         Keep names matching spec (also -public:spec)
       --private spec        Rename names matching spec (also -private:spec)

DIAGNOSTICS:
       --dump-ast            Print the syntax trees
       --dump-scopes         Print the scope tree
       --diag-symbols        Print every symbol with its new name

NETWORK:
  -c,  --concurrency int     Inputs loaded at once (default 8)
  -t,  --timeout duration    Request timeout (default 10s)
  -x,  --proxy string        Proxy URL
       --rate-limit float    Requests per second, 0 for no limit
  -k,  --insecure            Skip TLS verification

GENERAL:
  -v,  --verbose             Verbose output
  -vv                        Very verbose output
  -s,  --silent              Silent mode (no banner, no report)
  -V,  --version             Print the version

EXAMPLES:
  minime app.js
  minime -g -o bundle.js lib/ main.js
  minime -private:api.* -public:api.init -stdout app.js
  cat app.js | minime -
`

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts := runner.DefaultOptions()
	fs := flag.NewFlagSet("minime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "minime %s | %s\n", config.Version, config.Author)
		fmt.Fprint(stderr, usage)
	}

	var (
		noWarn      bool
		encoding    string
		noConsts    bool
		showVersion bool
	)

	fs.BoolVar(&noWarn, "nw", false, "Disable warnings for the next input")
	fs.StringVar(&encoding, "e", "", "Encoding of the inputs that follow")
	fs.StringVar(&encoding, "encoding", "", "Encoding of the inputs that follow")

	fs.StringVar(&opts.OutputFile, "o", "", "Output file")
	fs.StringVar(&opts.OutputFile, "output", "", "Output file")
	fs.BoolVar(&opts.Stdout, "stdout", false, "Write to stdout")
	fs.BoolVar(&opts.NoCredit, "no-credit", false, "Leave out the credit comment")
	fs.BoolVar(&opts.CheckFileTimes, "check-filetimes", false, "Skip the build when the output is up to date")
	fs.BoolVar(&opts.Verify, "verify", false, "Check that the output parses")
	fs.StringVar(&opts.OutputFormat, "format", opts.OutputFormat, "Report format: human, plain, json")

	fs.IntVar(&opts.MaxLineLength, "l", opts.MaxLineLength, "Maximum line length")
	fs.IntVar(&opts.MaxLineLength, "max-line-length", opts.MaxLineLength, "Maximum line length")
	fs.BoolVar(&opts.NoObfuscate, "no-obfuscate", false, "Keep every name")
	fs.BoolVar(&noConsts, "no-consts", false, "Do not substitute constants")
	fs.BoolVar(&opts.Formatted, "f", false, "Formatted output")
	fs.BoolVar(&opts.Formatted, "formatted", false, "Formatted output")
	fs.BoolVar(&opts.ObfuscateGlobals, "g", false, "Rename top level declarations")
	fs.BoolVar(&opts.ObfuscateGlobals, "obfuscate-globals", false, "Rename top level declarations")
	fs.Func("public", "Keep names matching spec", func(spec string) error {
		opts.Rules = append(opts.Rules, "public:"+spec)
		return nil
	})
	fs.Func("private", "Rename names matching spec", func(spec string) error {
		opts.Rules = append(opts.Rules, "private:"+spec)
		return nil
	})

	fs.BoolVar(&opts.DumpAST, "dump-ast", false, "Print the syntax trees")
	fs.BoolVar(&opts.DumpScopes, "dump-scopes", false, "Print the scope tree")
	fs.BoolVar(&opts.SymbolInfo, "diag-symbols", false, "Print every symbol with its new name")

	fs.IntVar(&opts.Concurrency, "c", opts.Concurrency, "Concurrency level")
	fs.IntVar(&opts.Concurrency, "concurrency", opts.Concurrency, "Concurrency level")
	fs.DurationVar(&opts.Timeout, "t", opts.Timeout, "Request timeout")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Request timeout")
	fs.StringVar(&opts.Proxy, "x", "", "Proxy URL")
	fs.StringVar(&opts.Proxy, "proxy", "", "Proxy URL")
	fs.Float64Var(&opts.RateLimit, "rate-limit", 0, "Requests per second")
	fs.BoolVar(&opts.Insecure, "k", false, "Skip TLS verification")
	fs.BoolVar(&opts.Insecure, "insecure", false, "Skip TLS verification")

	fs.BoolVar(&opts.Verbose, "v", false, "Verbose output")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&opts.VeryVerbose, "vv", false, "Very verbose output")
	fs.BoolVar(&opts.Silent, "s", false, "Silent mode")
	fs.BoolVar(&opts.Silent, "silent", false, "Silent mode")
	fs.BoolVar(&showVersion, "V", false, "Print the version")
	fs.BoolVar(&showVersion, "version", false, "Print the version")

	args, responseFiles, err := expandArgs(args)
	if err != nil {
		return err
	}
	opts.ResponseFiles = responseFiles

	// Inputs and flags interleave: -nw and -encoding apply to the inputs
	// that follow them.
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		in, err := models.ParseInput(rest[0], !noWarn)
		if err != nil {
			return fmt.Errorf("input %s: %w", rest[0], err)
		}
		in.Encoding = encoding
		opts.Inputs = append(opts.Inputs, in)
		noWarn = false
		rest = rest[1:]
	}

	if showVersion {
		fmt.Fprintf(stdout, "minime %s\n", config.Version)
		return nil
	}
	if len(opts.Inputs) == 0 {
		fs.Usage()
		return fmt.Errorf("no inputs given")
	}
	opts.DetectConsts = !noConsts
	switch opts.OutputFormat {
	case "human", "plain", "json":
	default:
		return fmt.Errorf("unknown format %q", opts.OutputFormat)
	}

	start := time.Now()
	results, err := runner.NewRunner(opts, stdin, stdout, stderr).Run(ctx)
	for _, res := range results {
		if opts.Silent && opts.OutputFormat == "human" {
			break
		}
		if report := output.Format(res, opts.OutputFormat); report != "" {
			fmt.Fprintln(stderr, strings.TrimRight(report, "\n"))
		}
	}
	if err != nil {
		return err
	}
	if !opts.Silent {
		fmt.Fprintln(stderr, "")
		fmt.Fprintf(stderr, "[*] Minification complete: %d output(s) in %s\n", len(results), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// expandArgs replaces @file arguments with the arguments the file holds
// and splits the -public:spec and -private:spec forms. It also returns the
// response files read.
func expandArgs(args []string) ([]string, []string, error) {
	var out, files []string
	for _, arg := range args {
		if name, ok := strings.CutPrefix(arg, "@"); ok && name != "" {
			data, err := os.ReadFile(name)
			if err != nil {
				return nil, nil, fmt.Errorf("response file: %w", err)
			}
			files = append(files, name)
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				for _, field := range strings.Fields(line) {
					out = append(out, splitRule(field)...)
				}
			}
			continue
		}
		out = append(out, splitRule(arg)...)
	}
	return out, files, nil
}

func splitRule(arg string) []string {
	for _, flagName := range []string{"-public:", "-private:", "--public:", "--private:"} {
		if spec, ok := strings.CutPrefix(arg, flagName); ok {
			return []string{strings.TrimSuffix(flagName, ":"), spec}
		}
	}
	return []string{arg}
}
