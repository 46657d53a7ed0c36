package models

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type InputKind string

const (
	InputFile  InputKind = "file"
	InputURL   InputKind = "url"
	InputHTML  InputKind = "html"
	InputStdin InputKind = "stdin"
)

// Input is one source unit requested on the command line.
type Input struct {
	Kind     InputKind `json:"kind"`
	Location string    `json:"location"`
	Warnings bool      `json:"warnings"`
	Encoding string    `json:"encoding,omitempty"`
}

// Validate checks if the input is usable.
func (in *Input) Validate() error {
	if in.Location == "" {
		return fmt.Errorf("location is required")
	}
	switch in.Kind {
	case InputFile, InputHTML, InputStdin:
	case InputURL:
		u, err := url.Parse(in.Location)
		if err != nil {
			return fmt.Errorf("invalid URL: %v", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	default:
		return fmt.Errorf("invalid input kind: %s", in.Kind)
	}
	return nil
}

// Name returns a short label used in diagnostics and output names.
func (in *Input) Name() string {
	if in.Kind == InputURL {
		if u, err := url.Parse(in.Location); err == nil && u.Path != "" && u.Path != "/" {
			return u.Host + u.Path
		}
	}
	return in.Location
}

// ParseInput classifies a command line argument:
//   - "-" reads stdin
//   - "http://..." or "https://..." fetches a remote script
//   - "*.html" / "*.htm" minifies the inline scripts of a page
//   - anything else is a script file
func ParseInput(arg string, warnings bool) (*Input, error) {
	arg = strings.TrimSpace(arg)
	in := &Input{Location: arg, Warnings: warnings}

	lower := strings.ToLower(arg)
	switch {
	case arg == "-":
		in.Kind = InputStdin
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		in.Kind = InputURL
	case filepath.Ext(lower) == ".html" || filepath.Ext(lower) == ".htm":
		in.Kind = InputHTML
	default:
		in.Kind = InputFile
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
