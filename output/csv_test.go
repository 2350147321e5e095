package output

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vegasq/parquet2root/batch"
)

func TestCSVSink_Streaming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	sink, err := CreateCSV(path)
	if err != nil {
		t.Fatalf("CreateCSV() error = %v", err)
	}
	ds, err := sink.CreateDataset("events", makeBatch(0, 2))
	if err != nil {
		t.Fatalf("CreateDataset() error = %v", err)
	}
	if err := ds.Extend(makeBatch(2, 3)); err != nil {
		t.Fatalf("Extend() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, want 6 (header + 5 rows)", len(records))
	}

	header := records[0]
	if header[0] != "id" || header[1] != "energy" || header[2] != "label" {
		t.Errorf("header = %v, want schema order [id energy label]", header)
	}
	if records[4][0] != "3" || records[4][1] != "1.5" {
		t.Errorf("row 3 = %v, want id 3 energy 1.5", records[4])
	}
}

func TestCSVSink_SchemaMismatch(t *testing.T) {
	sink, err := CreateCSV(filepath.Join(t.TempDir(), "out.csv"))
	if err != nil {
		t.Fatalf("CreateCSV() error = %v", err)
	}
	defer sink.Close()

	ds, err := sink.CreateDataset("events", makeBatch(0, 1))
	if err != nil {
		t.Fatalf("CreateDataset() error = %v", err)
	}

	other := batch.New(batch.Schema{{Name: "id", Kind: batch.Int32}}, 1)
	if err := ds.Extend(other); !errors.Is(err, batch.ErrSchemaMismatch) {
		t.Errorf("Extend() error = %v, want ErrSchemaMismatch", err)
	}

	if _, err := sink.CreateDataset("again", makeBatch(0, 1)); err == nil {
		t.Error("CreateDataset() should refuse a second dataset in a CSV file")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"int32", int32(42), "42"},
		{"int64", int64(42), "42"},
		{"uint8", uint8(7), "7"},
		{"float32", float32(0.5), "0.5"},
		{"float64", 3.14, "3.14"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"formula", "=SUM(A1)", "'=SUM(A1)"},
		{"formula with quote", "+it's", "'+it''s"},
		{"negative-looking string", "-1", "'-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.input); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
