package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/models"
)

// source is a loaded input.
type source struct {
	input *models.Input
	name  string
	text  string
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
}

// expandInputs resolves wildcards and directories into file inputs. The
// order of the command line is kept; files found by one pattern are
// sorted.
func expandInputs(inputs []*models.Input) ([]*models.Input, error) {
	var out []*models.Input
	for _, in := range inputs {
		if in.Kind != models.InputFile && in.Kind != models.InputHTML {
			out = append(out, in)
			continue
		}

		var paths []string
		switch {
		case hasMeta(in.Location):
			matches, err := filepath.Glob(in.Location)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %s: %w", in.Location, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %s", in.Location)
			}
			sort.Strings(matches)
			paths = matches
		case isDir(in.Location):
			found, err := discoverDir(in.Location)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				return nil, fmt.Errorf("no scripts found in %s", in.Location)
			}
			paths = found
		default:
			out = append(out, in)
			continue
		}

		for _, p := range paths {
			child := *in
			child.Location = p
			out = append(out, &child)
		}
	}
	return out, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// discoverDir walks root for scripts, honoring the root's .gitignore and
// .minimeignore. Hidden entries and earlier outputs are skipped.
func discoverDir(root string) ([]string, error) {
	gi := loadIgnore(root)

	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(name) != ".js" || strings.HasSuffix(name, config.DefaultOutputSuffix) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(filepath.ToSlash(rel)) {
			return nil
		}
		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(results)
	return results, nil
}

// loadIgnore merges the ignore files found in root, nil when there are
// none.
func loadIgnore(root string) *ignore.GitIgnore {
	var lines []string
	for _, name := range []string{".gitignore", config.IgnoreFileName} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}
	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}

// load reads every input, at most Concurrency at a time. The result keeps
// the input order.
func (r *Runner) load(ctx context.Context, inputs []*models.Input) ([]source, error) {
	sources := make([]source, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.options.Concurrency)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			src, err := r.loadOne(ctx, in)
			if err != nil {
				return err
			}
			sources[i] = src
			r.log.VV("loaded %s: %d bytes", src.name, len(src.text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *Runner) loadOne(ctx context.Context, in *models.Input) (source, error) {
	src := source{input: in, name: in.Name()}
	charset := in.Encoding
	if charset == "" {
		charset = r.options.Encoding
	}

	var data []byte
	switch in.Kind {
	case models.InputURL:
		script, err := r.client.Fetch(ctx, in.Location)
		if err != nil {
			return src, err
		}
		if charset == "" {
			charset = contentCharset(script.ContentType)
		}
		data = script.Body
	case models.InputStdin:
		b, err := io.ReadAll(bufio.NewReader(r.stdin))
		if err != nil {
			return src, fmt.Errorf("read stdin: %w", err)
		}
		src.name = "stdin"
		data = b
	default:
		b, err := os.ReadFile(in.Location)
		if err != nil {
			return src, err
		}
		data = b
	}

	text, err := decode(data, charset)
	if err != nil {
		return src, fmt.Errorf("%s: %w", src.name, err)
	}
	src.text = text
	return src, nil
}

// decode converts data to UTF-8. A byte order mark wins over charset; with
// neither the input is taken as UTF-8.
func decode(data []byte, charset string) (string, error) {
	var fallback transform.Transformer = unicode.UTF8.NewDecoder()
	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return "", fmt.Errorf("unknown encoding %q", charset)
		}
		fallback = enc.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return string(out), nil
}

func contentCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
