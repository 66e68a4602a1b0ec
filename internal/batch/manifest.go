package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/coltrans/internal"
)

// Entry is one dataset of a batch run
type Entry struct {
	Input  string
	Output string
	// Derived is true when Output was not given and derived from Input
	Derived bool
}

// ReadBatchFile reads dataset entries from a manifest file
// Supports formats:
// - Input only: "train.csv" (output becomes train_<lang>.csv)
// - With output: "train.csv = out/train_es.csv"
// Blank lines and lines starting with '#' are ignored.
func ReadBatchFile(filename, targetLang string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []Entry
	for n, line := range splitLines(string(content)) {
		line = trimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		input, output, hasOutput := strings.Cut(line, "=")
		input = strings.TrimSpace(input)
		output = strings.TrimSpace(output)

		if input == "" {
			return nil, fmt.Errorf("line %d: missing input file", n+1)
		}
		if hasOutput && output == "" {
			return nil, fmt.Errorf("line %d: empty output file after '='", n+1)
		}

		entry := Entry{Input: input, Output: output}
		if !hasOutput {
			entry.Output = internal.DeriveOutputPath(input, targetLang)
			entry.Derived = true
		}
		if entry.Output == entry.Input {
			return nil, fmt.Errorf("line %d: output would overwrite input %s", n+1, input)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// splitLines splits a string by newlines
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// trimSpace trims whitespace from string
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
