package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lcalzada-xor/minime/pkg/models"
)

func sampleResult() models.Result {
	return models.Result{
		Stats: models.Stats{
			Units:          []models.UnitResult{{Name: "app.js", InputBytes: 200}},
			Output:         "app.min.js",
			InputBytes:     200,
			OutputBytes:    50,
			SymbolsRenamed: 4,
			Duration:       3 * time.Millisecond,
		},
		Diagnostics: []models.Diagnostic{{
			File: "app.js", Line: 3, Column: 5,
			Severity: models.SeverityWarning,
			Code:     "with-statement",
			Message:  "use of with statement",
		}},
	}
}

func TestFormat_Plain(t *testing.T) {
	got := Format(sampleResult(), "plain")
	expected := "app.js(3,5): warning: use of with statement\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestFormat_JSON(t *testing.T) {
	got := Format(sampleResult(), "json")
	var decoded models.Result
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	if decoded.Stats.OutputBytes != 50 || len(decoded.Diagnostics) != 1 {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestFormat_Human(t *testing.T) {
	got := Format(sampleResult(), "human")
	for _, want := range []string{"app.min.js", "200 -> 50 bytes (25.0%)", "4 symbols", "[with-statement]"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestFormatStats_Skipped(t *testing.T) {
	got := FormatStats(models.Stats{Output: "app.min.js", Skipped: true}, false)
	if got != "[+] app.min.js is up to date\n" {
		t.Errorf("unexpected output %q", got)
	}
}
