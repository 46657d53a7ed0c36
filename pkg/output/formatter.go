package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lcalzada-xor/minime/pkg/models"
)

const (
	cPurple      = "\x1b[38;5;129m"
	cLightPurple = "\x1b[38;5;141m"
	cDarkPurple  = "\x1b[38;5;93m"
	cRed         = "\x1b[38;5;196m"
	cOrange      = "\x1b[38;5;214m"
	cReset       = "\x1b[0m"
)

// Format returns the formatted run result based on the selected format:
// "human" (colored report), "json", or "plain" (one diagnostic per line in
// the file(line,col): severity: message form editors understand).
func Format(res models.Result, format string) string {
	switch format {
	case "json":
		output, err := json.Marshal(res)
		if err != nil {
			return fmt.Sprintf("{\"error\":\"failed to marshal result: %v\"}", err)
		}
		return string(output)

	case "human":
		var sb strings.Builder
		sb.WriteString(FormatDiagnostics(res.Diagnostics, true))
		sb.WriteString(FormatStats(res.Stats, true))
		return sb.String()

	default:
		return FormatDiagnostics(res.Diagnostics, false)
	}
}

// FormatDiagnostics lists diagnostics one per line.
func FormatDiagnostics(diags []models.Diagnostic, color bool) string {
	var sb strings.Builder
	for _, d := range diags {
		if !color {
			sb.WriteString(d.String())
			sb.WriteString("\n")
			continue
		}
		sevColor := cOrange
		if d.Severity == models.SeverityError {
			sevColor = cRed
		}
		sb.WriteString(fmt.Sprintf("%s%s(%d,%d):%s %s%s%s %s[%s]%s\n",
			cDarkPurple, d.File, d.Line, d.Column, cReset,
			sevColor, d.Message, cReset,
			cLightPurple, d.Code, cReset))
	}
	return sb.String()
}

// FormatStats renders the size and rename statistics of a run.
func FormatStats(st models.Stats, color bool) string {
	purple, light, dark, reset := cPurple, cLightPurple, cDarkPurple, cReset
	if !color {
		purple, light, dark, reset = "", "", "", ""
	}

	var sb strings.Builder
	if st.Skipped {
		sb.WriteString(fmt.Sprintf("%s[+] %s is up to date%s\n", purple, st.Output, reset))
		return sb.String()
	}

	title := "stdout"
	if st.Output != "" {
		title = st.Output
	}
	sb.WriteString(fmt.Sprintf("\n%s[+] %s%s\n", purple, title, reset))
	for _, u := range st.Units {
		sb.WriteString(fmt.Sprintf("    %sInput:%s      %s%s (%d bytes)%s\n", dark, reset, light, u.Name, u.InputBytes, reset))
	}
	sb.WriteString(fmt.Sprintf("    %sSize:%s       %s%d -> %d bytes (%.1f%%)%s\n",
		dark, reset, light, st.InputBytes, st.OutputBytes, st.Ratio()*100, reset))
	sb.WriteString(fmt.Sprintf("    %sRenamed:%s    %s%d symbols, %d members%s\n",
		dark, reset, light, st.SymbolsRenamed, st.MembersRenamed, reset))
	if st.ConstantsFolded > 0 {
		sb.WriteString(fmt.Sprintf("    %sConstants:%s  %s%d folded%s\n", dark, reset, light, st.ConstantsFolded, reset))
	}
	sb.WriteString(fmt.Sprintf("    %sTime:%s       %s%s%s\n", dark, reset, light, st.Duration.Round(time.Microsecond), reset))
	return sb.String()
}
