package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadCSV decodes a CSV stream whose first record is the header.
// Empty cells are loaded as missing values. A column whose non-empty cells
// are all numeric is loaded as json.Number values; any other column is text.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", t.Len()+1, err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if record[i] == "" {
				row[col] = nil
			} else {
				row[col] = record[i]
			}
		}
		t.Append(row)
	}

	for _, col := range header {
		inferNumbers(t, col)
	}
	return t, nil
}

// inferNumbers converts a column to json.Number when every non-missing cell
// is a numeric literal. A single text cell keeps the whole column as text.
func inferNumbers(t *Table, col string) {
	numbers := make([]json.Number, len(t.Rows))
	seen := false
	for i, row := range t.Rows {
		s, ok := row[col].(string)
		if !ok {
			continue
		}
		n, ok := Number(s)
		if !ok {
			return
		}
		numbers[i] = n
		seen = true
	}
	if !seen {
		return
	}

	for i, row := range t.Rows {
		if _, ok := row[col].(string); ok {
			row[col] = numbers[i]
		}
	}
}

// WriteCSV encodes a table as CSV with a header record
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = Format(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSVFile loads a CSV file
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// WriteCSVFile saves a table as a CSV file
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
