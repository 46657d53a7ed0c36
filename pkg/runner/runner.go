package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/htmlscript"
	"github.com/lcalzada-xor/minime/pkg/logger"
	"github.com/lcalzada-xor/minime/pkg/minify"
	"github.com/lcalzada-xor/minime/pkg/models"
	"github.com/lcalzada-xor/minime/pkg/network"
)

// Runner handles the execution of a minification run
type Runner struct {
	options *Options
	log     *logger.Logger
	client  *network.Client
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewRunner creates a new Runner instance. Minified code and dumps go to
// stdout when no output file is used; progress goes to stderr.
func NewRunner(options *Options, stdin io.Reader, stdout, stderr io.Writer) *Runner {
	// Calculate verbose level
	verboseLevel := 0
	if options.Verbose {
		verboseLevel = 1
	}
	if options.VeryVerbose {
		verboseLevel = 2
	}

	var log *logger.Logger
	if !options.Silent {
		log = logger.NewLogger(verboseLevel)
		log.SetOutput(stderr)
	}

	return &Runner{
		options: options,
		log:     log,
		client:  network.NewClient(options.Timeout, options.Proxy, options.Concurrency, options.RateLimit, options.Insecure),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Run minifies the inputs. Scripts are compiled together into one output;
// every HTML page is compiled on its own and gets its own result.
func (r *Runner) Run(ctx context.Context) ([]models.Result, error) {
	if err := r.options.Validate(); err != nil {
		return nil, err
	}
	if !r.options.Silent {
		r.printBanner()
	}

	inputs, err := expandInputs(r.options.Inputs)
	if err != nil {
		return nil, err
	}

	var pages, scripts []*models.Input
	for _, in := range inputs {
		if in.Kind == models.InputHTML {
			pages = append(pages, in)
		} else {
			scripts = append(scripts, in)
		}
	}
	r.log.V("Inputs: %d script(s), %d page(s)", len(scripts), len(pages))

	switch {
	case len(pages) > 0 && len(scripts) > 0:
		return nil, fmt.Errorf("cannot mix HTML pages with scripts")
	case len(pages) > 1 && r.options.OutputFile != "":
		return nil, fmt.Errorf("-o needs a single HTML page")
	}

	if len(scripts) > 0 {
		res, err := r.runScripts(ctx, scripts)
		if err != nil {
			return nil, err
		}
		return []models.Result{*res}, nil
	}

	results := make([]models.Result, 0, len(pages))
	for _, page := range pages {
		res, err := r.runPage(ctx, page)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func (r *Runner) runScripts(ctx context.Context, inputs []*models.Input) (*models.Result, error) {
	start := time.Now()
	output := r.outputPath(inputs[0], ".js")
	if skipped, err := r.skip(output, inputs); err != nil || skipped != nil {
		return skipped, err
	}

	sources, err := r.load(ctx, inputs)
	if err != nil {
		return nil, err
	}

	opts, err := r.options.CompilerOptions()
	if err != nil {
		return nil, err
	}
	c := minify.NewCompiler(opts, r.log)
	for _, s := range sources {
		if err := c.AddScript(s.name, s.text, s.input.Warnings); err != nil {
			return nil, err
		}
	}
	out, err := c.Compile()
	if err != nil {
		return nil, err
	}

	code := out.Code
	if !r.options.NoCredit {
		code = config.CreditComment + code
	}
	if err := r.verify(output, code); err != nil {
		return nil, err
	}
	if err := r.finish(output, code, out.Dump); err != nil {
		return nil, err
	}

	stats := out.Stats
	stats.Output = output
	stats.OutputBytes = len(code)
	stats.Duration = time.Since(start)
	return &models.Result{Stats: stats, Diagnostics: out.Diagnostics}, nil
}

// runPage minifies the inline scripts of one page. The scripts share the
// page's global scope, so they are compiled together and spliced back one
// by one.
func (r *Runner) runPage(ctx context.Context, page *models.Input) (*models.Result, error) {
	start := time.Now()
	output := r.outputPath(page, filepath.Ext(page.Location))
	pageInputs := []*models.Input{page}
	if skipped, err := r.skip(output, pageInputs); err != nil || skipped != nil {
		return skipped, err
	}

	sources, err := r.load(ctx, pageInputs)
	if err != nil {
		return nil, err
	}
	src := sources[0]
	doc, err := htmlscript.Parse(src.text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.name, err)
	}
	r.log.V("%s: %d inline script(s)", src.name, len(doc.Scripts))

	stats := models.Stats{Output: output}
	var diags []models.Diagnostic
	result := src.text
	if len(doc.Scripts) > 0 {
		opts, err := r.options.CompilerOptions()
		if err != nil {
			return nil, err
		}
		opts.SplitUnits = true

		c := minify.NewCompiler(opts, r.log)
		lines := make(map[string]int, len(doc.Scripts))
		for i, s := range doc.Scripts {
			name := fmt.Sprintf("%s#%d", src.name, i+1)
			lines[name] = s.Line - 1
			if err := c.AddScript(name, s.Body, page.Warnings); err != nil {
				return nil, err
			}
		}
		out, err := c.Compile()
		if err != nil {
			return nil, err
		}
		for i, body := range out.Units {
			if err := r.verify(fmt.Sprintf("%s#%d", src.name, i+1), body); err != nil {
				return nil, err
			}
		}
		if result, err = doc.Rewrite(out.Units); err != nil {
			return nil, err
		}

		// Report positions in page coordinates.
		for _, d := range out.Diagnostics {
			if off, ok := lines[d.File]; ok {
				d.File = src.name
				d.Line += off
			}
			diags = append(diags, d)
		}
		stats = out.Stats
		stats.Output = output
		if err := r.finish(output, result, out.Dump); err != nil {
			return nil, err
		}
	} else if err := r.finish(output, result, ""); err != nil {
		return nil, err
	}

	stats.Units = []models.UnitResult{{Name: src.name, InputBytes: len(src.text), OutputBytes: len(result)}}
	stats.InputBytes = len(src.text)
	stats.OutputBytes = len(result)
	stats.Duration = time.Since(start)
	return &models.Result{Stats: stats, Diagnostics: diags}, nil
}

// outputPath picks the output file: the -o value, or the first input with
// its extension replaced. An empty path means stdout.
func (r *Runner) outputPath(first *models.Input, ext string) string {
	if r.options.Stdout {
		return ""
	}
	if r.options.OutputFile != "" {
		return r.options.OutputFile
	}
	if first.Kind != models.InputFile && first.Kind != models.InputHTML {
		return ""
	}
	base := strings.TrimSuffix(first.Location, filepath.Ext(first.Location))
	if first.Kind == models.InputFile {
		return base + config.DefaultOutputSuffix
	}
	return base + ".min" + ext
}

// skip returns a skipped result when -check-filetimes finds output current.
func (r *Runner) skip(output string, inputs []*models.Input) (*models.Result, error) {
	if !r.options.CheckFileTimes || output == "" {
		return nil, nil
	}
	ok, err := upToDate(output, r.options.Capture(), inputs, r.options.ResponseFiles)
	if err != nil || !ok {
		return nil, err
	}
	r.log.V("%s is up to date", output)
	return &models.Result{Stats: models.Stats{Output: output, Skipped: true}}, nil
}

// verify compiles code with goja so a broken output never gets written.
func (r *Runner) verify(name, code string) error {
	if !r.options.Verify {
		return nil
	}
	if name == "" {
		name = "stdout"
	}
	if _, err := goja.Compile(name, code, false); err != nil {
		return fmt.Errorf("verify %s: %w", name, err)
	}
	r.log.VV("verified %s", name)
	return nil
}

// finish writes the result and the dumps, then records the options capture
// next to the output.
func (r *Runner) finish(output, code, dump string) error {
	if output == "" {
		if !strings.HasSuffix(code, "\n") {
			code += "\n"
		}
		if _, err := io.WriteString(r.stdout, code); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
			return err
		}
		r.log.V("Wrote %s (%d bytes)", output, len(code))
	}

	if dump != "" {
		if _, err := io.WriteString(r.stdout, dump); err != nil {
			return err
		}
	}
	if r.options.CheckFileTimes && output != "" {
		return saveOptions(output, r.options.Capture())
	}
	return nil
}

func (r *Runner) printBanner() {
	fmt.Fprintln(r.stderr, "")
	fmt.Fprintf(r.stderr, "   \x1b[38;5;93mminime\x1b[0m \x1b[38;5;141m%s\x1b[0m | \x1b[38;5;141m%s\x1b[0m\n", config.Version, config.Author)
	fmt.Fprintln(r.stderr, "")
	if r.options.Verbose || r.options.VeryVerbose {
		fmt.Fprintf(r.stderr, "[*] Concurrency: %d workers\n", r.options.Concurrency)
		fmt.Fprintf(r.stderr, "[*] Max line length: %d\n", r.options.MaxLineLength)
		fmt.Fprintf(r.stderr, "[*] Obfuscation: %v (globals: %v)\n", !r.options.NoObfuscate, r.options.ObfuscateGlobals)
		if len(r.options.Rules) > 0 {
			fmt.Fprintf(r.stderr, "[*] Rules: %s\n", strings.Join(r.options.Rules, ", "))
		}
		fmt.Fprintln(r.stderr, "")
	}
}
