package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"nil", nil, true},
		{"NaN", math.NaN(), true},
		{"empty string", "", false},
		{"text", "hello", false},
		{"number", 3.5, false},
		{"bool", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMissing(tt.value); got != tt.want {
				t.Errorf("IsMissing(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRequireColumns(t *testing.T) {
	tbl := New("question", "answer")

	if err := tbl.RequireColumns([]string{"answer", "question"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	err := tbl.RequireColumns([]string{"question", "source"})
	if err == nil {
		t.Fatal("Expected error for unknown column")
	}
	if !strings.Contains(err.Error(), `"source"`) {
		t.Errorf("Error should name the missing column, got: %v", err)
	}
}

func TestRowClone(t *testing.T) {
	row := Row{"text": "hello", "id": 1}
	clone := row.Clone()
	clone["text"] = "changed"

	if row["text"] != "hello" {
		t.Error("Modifying clone changed the original row")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	input := "id,text\n1,hello\n2,\n3,\"with, comma\"\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if !reflect.DeepEqual(tbl.Columns, []string{"id", "text"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", tbl.Len())
	}
	if tbl.Rows[1]["text"] != nil {
		t.Errorf("Empty cell should load as missing, got %#v", tbl.Rows[1]["text"])
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != input {
		t.Errorf("Round trip mismatch\nExpected: %q\nActual: %q", input, buf.String())
	}
}

func TestReadCSV_NumericColumns(t *testing.T) {
	input := "id,score,text,mixed\n1,4.5,hello,3\n2,,world,n/a\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	tests := []struct {
		column string
		want   []Value
	}{
		{"id", []Value{json.Number("1"), json.Number("2")}},
		{"score", []Value{json.Number("4.5"), nil}},
		{"text", []Value{"hello", "world"}},
		{"mixed", []Value{"3", "n/a"}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			if got := tbl.Column(tt.column); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Column(%s) = %#v, want %#v", tt.column, got, tt.want)
			}
		})
	}

	if _, ok := Text(tbl.Rows[0]["score"]); ok {
		t.Error("Numeric cell must not count as text")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != input {
		t.Errorf("Round trip mismatch\nExpected: %q\nActual: %q", input, buf.String())
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7", true},
		{"-4.5", true},
		{"1e3", true},
		{"", false},
		{"4,5", false},
		{"+1", false},
		{"007", false},
		{"NaN", false},
		{"Inf", false},
		{" 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := Number(tt.in)
			if ok != tt.want {
				t.Errorf("Number(%q) ok = %v, want %v", tt.in, ok, tt.want)
			}
			if ok && string(n) != tt.in {
				t.Errorf("Number(%q) = %q, spelling changed", tt.in, n)
			}
		})
	}
}

func TestXLSX_CellTypes(t *testing.T) {
	src := New("text", "score", "count", "flag", "digits")
	src.Append(Row{"text": "hello", "score": 4.5, "count": int64(7), "flag": true, "digits": "4.5"})
	src.Append(Row{"text": nil, "score": json.Number("2"), "count": nil, "flag": false, "digits": "x"})

	path := filepath.Join(t.TempDir(), "typed.xlsx")
	if err := WriteXLSX(path, src); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}
	got, err := ReadXLSX(path)
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}

	want := []Row{
		{"text": "hello", "score": json.Number("4.5"), "count": json.Number("7"), "flag": true, "digits": "4.5"},
		{"text": nil, "score": json.Number("2"), "count": nil, "flag": false, "digits": "x"},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Errorf("ReadXLSX() rows = %#v, want %#v", got.Rows, want)
	}

	for _, col := range []string{"score", "count", "flag"} {
		if _, ok := Text(got.Rows[0][col]); ok {
			t.Errorf("Column %s should not load as text", col)
		}
	}
	if _, ok := Text(got.Rows[0]["digits"]); !ok {
		t.Error("A text cell holding digits should stay text")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tbl.Len() != 0 || len(tbl.Columns) != 0 {
		t.Errorf("Expected empty table, got %+v", tbl)
	}
}

func TestReadCSV_RaggedRecord(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1\n"))
	if err == nil {
		t.Error("Expected error for record with wrong field count")
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	input := `{"question":"What is 2+2?","answer":"4","id":7}
{"question":null,"answer":"none","id":8}
`

	tbl, err := ReadJSONL(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}

	if !reflect.DeepEqual(tbl.Columns, []string{"question", "answer", "id"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	if _, ok := tbl.Rows[0]["id"].(json.Number); !ok {
		t.Errorf("Numbers should decode as json.Number, got %T", tbl.Rows[0]["id"])
	}
	if tbl.Rows[1]["question"] != nil {
		t.Errorf("null should load as missing, got %#v", tbl.Rows[1]["question"])
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, tbl); err != nil {
		t.Fatalf("WriteJSONL failed: %v", err)
	}
	if buf.String() != input {
		t.Errorf("Round trip mismatch\nExpected: %q\nActual: %q", input, buf.String())
	}
}

func TestWriteJSONL_AbsentKeys(t *testing.T) {
	tbl := New("question", "answer")
	tbl.Append(Row{"question": "hello", "answer": nil})
	tbl.Append(Row{"answer": "bye"})
	tbl.Append(Row{})

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, tbl); err != nil {
		t.Fatalf("WriteJSONL failed: %v", err)
	}

	want := "{\"question\":\"hello\",\"answer\":null}\n{\"answer\":\"bye\"}\n{}\n"
	if buf.String() != want {
		t.Errorf("WriteJSONL() = %q, want %q", buf.String(), want)
	}

	back, err := ReadJSONL(&buf)
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if _, ok := back.Rows[1]["question"]; ok {
		t.Error("Absent key should stay absent after a round trip")
	}
}

func TestReadJSONL_NotObject(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("[1,2,3]\n"))
	if err == nil {
		t.Error("Expected error for non-object line")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"data.csv", FormatCSV, false},
		{"DATA.CSV", FormatCSV, false},
		{"data.jsonl", FormatJSONL, false},
		{"data.json", FormatJSONL, false},
		{"data.xlsx", FormatXLSX, false},
		{"data.parquet", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	src := New("instruction", "output")
	src.Append(Row{"instruction": "Add 2 and 3", "output": "5"})
	src.Append(Row{"instruction": nil, "output": "nothing"})

	for _, ext := range []string{".csv", ".jsonl", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "table"+ext)

			if err := WriteFile(path, src); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("Output file missing: %v", err)
			}

			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			if !reflect.DeepEqual(got, src) {
				t.Errorf("ReadFile() = %+v, want %+v", got, src)
			}
		})
	}
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile("/nonexistent/table.csv")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}
