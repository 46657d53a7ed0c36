package models

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a lint finding or error tied to a source position.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// String formats the diagnostic as file(line,col): severity: message.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%d,%d): %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// UnitResult describes one compiled source unit.
type UnitResult struct {
	Name        string `json:"name"`
	InputBytes  int    `json:"input_bytes"`
	OutputBytes int    `json:"output_bytes,omitempty"`
}

// Stats summarizes a compilation run.
type Stats struct {
	Units           []UnitResult  `json:"units"`
	Output          string        `json:"output,omitempty"`
	InputBytes      int           `json:"input_bytes"`
	OutputBytes     int           `json:"output_bytes"`
	SymbolsRenamed  int           `json:"symbols_renamed"`
	MembersRenamed  int           `json:"members_renamed"`
	ConstantsFolded int           `json:"constants_folded"`
	Skipped         bool          `json:"skipped,omitempty"`
	Duration        time.Duration `json:"duration_ns"`
}

// Ratio returns output size relative to input size, 0 when nothing was read.
func (s *Stats) Ratio() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.OutputBytes) / float64(s.InputBytes)
}

// Result is everything a run reports: statistics and diagnostics.
type Result struct {
	Stats       Stats        `json:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Warnings counts the diagnostics with warning severity.
func (r *Result) Warnings() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
