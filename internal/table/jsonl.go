package table

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxJSONLine bounds a single record; long answers in training sets exceed
// bufio's 64KiB default.
const maxJSONLine = 16 * 1024 * 1024

// ReadJSONL decodes one JSON object per line. Column order follows the first
// appearance of each key. Numbers are kept as json.Number so they round trip
// unchanged and are never mistaken for text.
func ReadJSONL(r io.Reader) (*Table, error) {
	t := New()
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		keys, err := objectKeys(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				t.Columns = append(t.Columns, k)
			}
		}

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		row := make(Row, len(keys))
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		t.Append(row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return t, nil
}

// objectKeys returns the top level keys of a JSON object in document order
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// WriteJSONL encodes each row as one JSON object, keys in schema order.
// Missing values are written as null; keys a row never had are left out.
func WriteJSONL(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)

	for _, row := range t.Rows {
		bw.WriteByte('{')
		first := true
		for _, col := range t.Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			if !first {
				bw.WriteByte(',')
			}
			first = false

			key, err := json.Marshal(col)
			if err != nil {
				return err
			}
			bw.Write(key)
			bw.WriteByte(':')

			if IsMissing(v) {
				v = nil
			}
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("column %q: %w", col, err)
			}
			bw.Write(val)
		}
		bw.WriteString("}\n")
	}

	return bw.Flush()
}

// ReadJSONLFile loads a JSON Lines file
func ReadJSONLFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadJSONL(f)
}

// WriteJSONLFile saves a table as JSON Lines
func WriteJSONLFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteJSONL(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
