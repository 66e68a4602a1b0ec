package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"codeberg.org/snonux/coltrans/internal/table"
)

// ErrServiceDown is a canned translation failure
var ErrServiceDown = errors.New("translation service unavailable")

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}

// SingleColumnTable builds a table with one column holding values in order
func SingleColumnTable(column string, values ...table.Value) *table.Table {
	t := table.New(column)
	for _, v := range values {
		t.Append(table.Row{column: v})
	}
	return t
}

// NumberedTable builds n rows with an "id" column and a "text" column
// containing "text-<id>"
func NumberedTable(n int) *table.Table {
	t := table.New("id", "text")
	for i := 0; i < n; i++ {
		t.Append(table.Row{"id": i, "text": "text-" + strconv.Itoa(i)})
	}
	return t
}

// ExampleTable is the five row table used across the pipeline tests
func ExampleTable() *table.Table {
	return SingleColumnTable("text", "hello", nil, "world", "", "bye")
}

// ExampleTranslator translates ExampleTable to Spanish and fails on empty text
func ExampleTranslator() *MockTranslator {
	return &MockTranslator{
		Translations: map[string]string{
			"hello": "hola",
			"world": "mundo",
			"bye":   "adios",
		},
		Errors: map[string]error{
			"": ErrServiceDown,
		},
	}
}
