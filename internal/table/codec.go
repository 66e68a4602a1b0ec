package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions without a codec
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Format names understood by ReadFile and WriteFile
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatXLSX  = "xlsx"
)

// DetectFormat maps a file extension to a format name
func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".json", ".ndjson":
		return FormatJSONL, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadFile loads a table, choosing the codec by file extension
func ReadFile(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var t *Table
	switch format {
	case FormatCSV:
		t, err = ReadCSVFile(path)
	case FormatJSONL:
		t, err = ReadJSONLFile(path)
	case FormatXLSX:
		t, err = ReadXLSX(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	return t, nil
}

// WriteFile saves a table, choosing the codec by file extension
func WriteFile(path string, t *Table) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		err = WriteCSVFile(path, t)
	case FormatJSONL:
		err = WriteJSONLFile(path, t)
	case FormatXLSX:
		err = WriteXLSX(path, t)
	}
	if err != nil {
		return fmt.Errorf("failed to write table %s: %w", path, err)
	}
	return nil
}

// Number returns s as a json.Number when it is a numeric literal that is also
// valid JSON. Such values are non-text, so they are never translated, and
// they keep their exact spelling through every codec.
func Number(s string) (json.Number, bool) {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	if !json.Valid([]byte(s)) {
		return "", false
	}
	return json.Number(s), true
}
