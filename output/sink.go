package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vegasq/parquet2root/batch"
)

// Sink is an output file that holds named datasets.
//
// A Sink owns the underlying file handle from creation until Close. Close
// must be called on every exit path, including after a failed write; the
// content of a sink closed after an error is undefined.
type Sink interface {
	// CreateDataset creates the named dataset with first as its initial
	// content. The schema of first becomes the schema of the dataset.
	CreateDataset(name string, first *batch.Batch) (Dataset, error)

	// Close flushes buffered data and releases the file. It is safe to call
	// Close more than once.
	Close() error
}

// Dataset is a named, schema-fixed, appendable row stream inside a Sink.
type Dataset interface {
	Name() string
	Schema() batch.Schema

	// Extend appends the rows of b. It fails with an error wrapping
	// batch.ErrSchemaMismatch when b does not match Schema().
	Extend(b *batch.Batch) error

	// Entries returns the number of rows written so far.
	Entries() int64
}

// Format names an output file format.
type Format string

const (
	FormatROOT  Format = "root"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name. The empty string means "infer from
// the output path".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatROOT, FormatCSV, FormatJSONL:
		return f, nil
	case "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unsupported format '%s' (supported formats: root, csv, jsonl)", s)
	}
}

// DetectFormat infers the output format from a file extension, defaulting
// to ROOT.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json", ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatROOT
	}
}

// NewSink creates (or truncates) path and returns the sink for format. An
// empty format is inferred from the path.
func NewSink(path string, format Format, opts ROOTOptions) (Sink, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	switch format {
	case FormatROOT:
		return CreateROOT(path, opts)
	case FormatCSV:
		return CreateCSV(path)
	case FormatJSONL:
		return CreateJSON(path)
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
}
