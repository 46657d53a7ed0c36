package render

import (
	"fmt"
	"strings"
)

func sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// needsSpace reports whether tok may not directly follow the output
// without merging into a different token or starting a comment.
func (r *RenderContext) needsSpace(tok string) bool {
	n := len(r.out)
	if n == 0 || tok == "" {
		return false
	}
	last, next := r.out[n-1], tok[0]
	switch {
	case isIdentByte(last) && isIdentByte(next):
		return true
	case (last == '+' || last == '-') && next == last:
		return true
	case last == '/' && (next == '/' || next == '*'):
		return true
	case last == '<' && next == '!':
		// <!-- starts a comment
		return true
	case last == '-' && next == '>' && n >= 2 && r.out[n-2] == '-':
		// --> too
		return true
	}
	return false
}

// raw appends s without spacing or wrapping decisions.
func (r *RenderContext) raw(s string) {
	r.out = append(r.out, s...)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		r.lineStart = len(r.out) - len(s) + i + 1
		r.safe = -1
	}
}

// tok appends one token, separating it from the previous one when needed
// and wrapping the line first when it would grow past the limit.
func (r *RenderContext) tok(s string) {
	r.wrap(len(s) + 1)
	if r.needsSpace(s) {
		r.out = append(r.out, ' ')
	}
	r.raw(s)
}

// wrap breaks the current line at the last safe point when appending n
// more bytes would exceed the maximum line length.
func (r *RenderContext) wrap(n int) {
	max := r.opts.MaxLineLength
	if max <= 0 || len(r.out)-r.lineStart+n <= max {
		return
	}
	if r.safe <= r.lineStart || r.safe > len(r.out) {
		return
	}
	at := r.safe
	if r.out[at-1] == ' ' {
		// the separator space becomes the break
		r.out[at-1] = '\n'
		r.lineStart = at
	} else {
		r.out = append(r.out, 0)
		copy(r.out[at+1:], r.out[at:])
		r.out[at] = '\n'
		r.lineStart = at + 1
	}
	r.safe = -1
}

// breakable records the current end of output as a safe line break point.
func (r *RenderContext) breakable() {
	r.safe = len(r.out)
}

// op appends a binary or assignment operator, surrounded by spaces in
// formatted mode, and allows a line break after it.
func (r *RenderContext) op(s string) {
	r.space()
	r.tok(s)
	r.space()
	r.breakable()
}

// comma appends a list separator.
func (r *RenderContext) comma() {
	r.tok(",")
	r.space()
	r.breakable()
}

// space appends protective whitespace in formatted mode.
func (r *RenderContext) space() {
	if r.opts.Formatted && len(r.out) > 0 {
		switch r.out[len(r.out)-1] {
		case ' ', '\n':
			return
		}
		r.raw(" ")
	}
}

// newline starts a new indented line in formatted mode.
func (r *RenderContext) newline() {
	if !r.opts.Formatted || len(r.out) == 0 {
		return
	}
	// trim trailing blanks
	for len(r.out) > r.lineStart && r.out[len(r.out)-1] == ' ' {
		r.out = r.out[:len(r.out)-1]
	}
	r.raw("\n")
	r.raw(strings.Repeat(r.opts.Indent, r.depth))
}

// terminate emits the separator the previous statement asked for.
func (r *RenderContext) terminate() {
	if r.pending {
		r.pending = false
		r.tok(";")
		r.breakable()
	}
}

// drop discards a pending separator before a closing brace or the end of
// the output. Formatted output keeps it.
func (r *RenderContext) drop() {
	if r.opts.Formatted {
		r.terminate()
	}
	r.pending = false
}

// Len returns the number of bytes rendered so far.
func (r *RenderContext) Len() int { return len(r.out) }

// Column returns the length of the current line.
func (r *RenderContext) Column() int { return len(r.out) - r.lineStart }
