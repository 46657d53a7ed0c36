// Package htmlscript finds the inline scripts of an HTML page and splices
// replacement bodies back in, leaving every other byte of the page as it
// was.
package htmlscript

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Script is one inline script body.
type Script struct {
	// Start and End delimit the body in the page source.
	Start, End int
	// Line is the page line the body starts on.
	Line int
	Body string
}

// Document is a parsed page.
type Document struct {
	src     string
	Scripts []Script
}

// scriptTypes are the type attribute values of classic scripts.
var scriptTypes = map[string]bool{
	"":                         true,
	"text/javascript":          true,
	"application/javascript":   true,
	"text/ecmascript":          true,
	"application/ecmascript":   true,
	"application/x-javascript": true,
}

// Parse tokenizes src and records every inline classic script. Scripts
// with a src attribute, modules and data blocks are skipped.
func Parse(src string) (*Document, error) {
	doc := &Document{src: src}
	z := html.NewTokenizer(strings.NewReader(src))

	offset := 0
	inScript := false
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse html: %w", err)
			}
			return doc, nil
		case html.StartTagToken:
			inScript = false
			name, hasAttr := z.TagName()
			if atom.Lookup(name) == atom.Script {
				inScript = inlineClassic(z, hasAttr)
			}
		case html.TextToken:
			if inScript {
				doc.Scripts = append(doc.Scripts, Script{
					Start: offset,
					End:   offset + raw,
					Line:  1 + strings.Count(src[:offset], "\n"),
					Body:  src[offset : offset+raw],
				})
			}
			inScript = false
		default:
			inScript = false
		}
		offset += raw
	}
}

func inlineClassic(z *html.Tokenizer, hasAttr bool) bool {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		switch string(bytes.ToLower(key)) {
		case "src":
			return false
		case "type":
			t := strings.ToLower(strings.TrimSpace(string(val)))
			if i := strings.IndexByte(t, ';'); i >= 0 {
				t = strings.TrimSpace(t[:i])
			}
			if !scriptTypes[t] {
				return false
			}
		}
	}
	return true
}

// Rewrite returns the page with the script bodies replaced by bodies, in
// document order.
func (d *Document) Rewrite(bodies []string) (string, error) {
	if len(bodies) != len(d.Scripts) {
		return "", fmt.Errorf("expected %d script bodies, got %d", len(d.Scripts), len(bodies))
	}
	var sb strings.Builder
	sb.Grow(len(d.src))
	last := 0
	for i, s := range d.Scripts {
		sb.WriteString(d.src[last:s.Start])
		sb.WriteString(escapeClose(bodies[i]))
		last = s.End
	}
	sb.WriteString(d.src[last:])
	return sb.String(), nil
}

// escapeClose keeps a body from ending its script element early.
func escapeClose(body string) string {
	lower := strings.ToLower(body)
	if !strings.Contains(lower, "</script") {
		return body
	}
	var sb strings.Builder
	for {
		i := strings.Index(lower, "</script")
		if i < 0 {
			sb.WriteString(body)
			return sb.String()
		}
		sb.WriteString(body[:i+1])
		sb.WriteString(`\/`)
		body, lower = body[i+2:], lower[i+2:]
	}
}
