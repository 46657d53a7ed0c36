package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lcalzada-xor/minime/pkg/config"
	"github.com/lcalzada-xor/minime/pkg/models"
)

func optionsPath(output string) string {
	return output + config.OptionsFileSuffix
}

// upToDate reports whether output is newer than every input and response
// file and was built with the same options capture. Remote and stdin
// inputs are never up to date.
func upToDate(output, capture string, inputs []*models.Input, responseFiles []string) (bool, error) {
	out, err := os.Stat(output)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	saved, err := os.ReadFile(optionsPath(output))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if string(saved) != capture {
		return false, nil
	}

	paths := append([]string(nil), responseFiles...)
	for _, in := range inputs {
		if in.Kind != models.InputFile && in.Kind != models.InputHTML {
			return false, nil
		}
		paths = append(paths, in.Location)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return false, err
		}
		if !info.ModTime().Before(out.ModTime()) {
			return false, nil
		}
	}
	return true, nil
}

func saveOptions(output, capture string) error {
	if err := os.WriteFile(optionsPath(output), []byte(capture), 0o644); err != nil {
		return fmt.Errorf("write options file: %w", err)
	}
	return nil
}
