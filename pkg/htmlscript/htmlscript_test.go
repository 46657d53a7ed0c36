package htmlscript

import (
	"testing"
)

const page = `<!doctype html>
<html>
<head>
<script src="lib.js"></script>
<script>
  var greeting = "hello";
</script>
<script type="application/ld+json">{"a": 1}</script>
</head>
<body>
<script type="text/javascript">alert(greeting);</script>
</body>
</html>
`

func TestParse(t *testing.T) {
	doc, err := Parse(page)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Scripts) != 2 {
		t.Fatalf("expected 2 inline scripts, got %d", len(doc.Scripts))
	}
	if doc.Scripts[0].Body != "\n  var greeting = \"hello\";\n" {
		t.Errorf("unexpected first body %q", doc.Scripts[0].Body)
	}
	if doc.Scripts[0].Line != 5 {
		t.Errorf("expected the first body on line 5, got %d", doc.Scripts[0].Line)
	}
	if doc.Scripts[1].Body != "alert(greeting);" || doc.Scripts[1].Line != 11 {
		t.Errorf("unexpected second script %+v", doc.Scripts[1])
	}
}

func TestRewrite(t *testing.T) {
	doc, err := Parse(page)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.Rewrite([]string{`var greeting="hello"`, `alert(greeting)`})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	expected := `<!doctype html>
<html>
<head>
<script src="lib.js"></script>
<script>var greeting="hello"</script>
<script type="application/ld+json">{"a": 1}</script>
</head>
<body>
<script type="text/javascript">alert(greeting)</script>
</body>
</html>
`
	if out != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, out)
	}

	if _, err := doc.Rewrite([]string{"x"}); err == nil {
		t.Error("expected a body count mismatch error")
	}
}

func TestEscapeClose(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{`x="a"`, `x="a"`},
		{`x="</script>"`, `x="<\/script>"`},
		{`x="</SCRIPT></script>"`, `x="<\/SCRIPT><\/script>"`},
	}
	for _, tt := range tests {
		if got := escapeClose(tt.in); got != tt.expected {
			t.Errorf("escapeClose(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}
}
