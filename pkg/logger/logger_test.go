package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
)

func newBuffered(level int) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(level)
	l.SetOutput(&buf)
	return l, &buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    int
		logFunc  func(*Logger)
		expected string
	}{
		{"info always shows", 0, func(l *Logger) { l.Info("wrote %s", "app.min.js") }, "[+] wrote app.min.js\n"},
		{"error always shows", 0, func(l *Logger) { l.Error("fetch failed") }, "[!] fetch failed\n"},
		{"warn always shows", 0, func(l *Logger) { l.Warn("a.js(3,1): %s", "unreachable code") }, "[-] a.js(3,1): unreachable code\n"},
		{"verbose at level 1", 1, func(l *Logger) { l.V("compiled %d unit(s)", 2) }, "[*] compiled 2 unit(s)\n"},
		{"verbose hidden at level 0", 0, func(l *Logger) { l.V("compiled") }, ""},
		{"very verbose at level 2", 2, func(l *Logger) { l.VV("const: substituted %s", "PI") }, "[VV] const: substituted PI\n"},
		{"very verbose hidden at level 1", 1, func(l *Logger) { l.VV("const: substituted PI") }, ""},
		{"detail at level 2", 2, func(l *Logger) { l.Detail("a -> b") }, "[VV] → a -> b\n"},
		{"section at level 2", 2, func(l *Logger) { l.Section("render") }, "\n[VV] === render ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBuffered(tt.level)
			tt.logFunc(l)
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestLogger_Concurrency(t *testing.T) {
	l, buf := newBuffered(2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l.V("unit %d", id)
			l.VV("pass %d", id)
			l.Section(fmt.Sprintf("scope %d", id))
		}(i)
	}
	wg.Wait()

	// Every line must come out whole.
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line != "" && !strings.HasPrefix(line, "[*] unit ") && !strings.HasPrefix(line, "[VV] ") {
			t.Errorf("interleaved line %q", line)
		}
	}
}

func TestLogger_DefaultsToStderr(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := os.Stderr
	os.Stderr = w
	NewLogger(0).Info("hello %s", "stderr")
	w.Close()
	os.Stderr = old

	out, _ := io.ReadAll(r)
	if string(out) != "[+] hello stderr\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	l.Info("ignored")
	l.Warn("ignored")
	l.Error("ignored")
	l.V("ignored")
	l.VV("ignored")
	l.Section("ignored")
	l.Detail("ignored")
	l.SetOutput(io.Discard)
	if l.IsVerbose() || l.IsVeryVerbose() {
		t.Error("nil logger reports verbosity")
	}
}
