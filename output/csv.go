package output

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vegasq/parquet2root/batch"
)

// CSVSink writes a single dataset as CSV with a header row.
type CSVSink struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	w       *csv.Writer
	dataset *csvDataset
	closed  bool
}

// CreateCSV creates (or truncates) a CSV file at path.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	return &CSVSink{path: path, file: f, buf: buf, w: csv.NewWriter(buf)}, nil
}

// CreateDataset writes the header derived from first followed by its rows.
// A CSV file holds exactly one dataset.
func (s *CSVSink) CreateDataset(name string, first *batch.Batch) (Dataset, error) {
	if s.closed {
		return nil, errors.New("CSV sink is closed")
	}
	if s.dataset != nil {
		return nil, fmt.Errorf("CSV file %s already holds dataset %q", s.path, s.dataset.name)
	}

	if err := s.w.Write(first.Schema.Names()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	s.dataset = &csvDataset{sink: s, name: name, schema: append(batch.Schema(nil), first.Schema...)}
	if err := s.dataset.write(first); err != nil {
		return nil, err
	}
	return s.dataset, nil
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	var errs []error
	if err := s.w.Error(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush CSV writer: %w", err))
	}
	if err := s.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush CSV writer: %w", err))
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close CSV file %s: %w", s.path, err))
	}
	return errors.Join(errs...)
}

type csvDataset struct {
	sink    *CSVSink
	name    string
	schema  batch.Schema
	entries int64
}

func (d *csvDataset) Name() string         { return d.name }
func (d *csvDataset) Schema() batch.Schema { return d.schema }
func (d *csvDataset) Entries() int64       { return d.entries }

func (d *csvDataset) Extend(b *batch.Batch) error {
	if err := batch.Compare(d.name, d.schema, b.Schema); err != nil {
		return err
	}
	return d.write(b)
}

func (d *csvDataset) write(b *batch.Batch) error {
	record := make([]string, len(b.Columns))
	for i := 0; i < b.Len; i++ {
		for c := range b.Columns {
			record[c] = formatValue(b.Value(c, i))
		}
		if err := d.sink.w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
		d.entries++
	}
	return nil
}

// formatValue converts a value to string for CSV output
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		// Sanitize against CSV injection by prefixing dangerous characters
		// that could trigger formula execution in spreadsheet applications
		if len(val) > 0 {
			switch val[0] {
			case '=', '+', '-', '@', '\t', '\r', '\n', '|':
				return "'" + strings.ReplaceAll(val, "'", "''")
			}
		}
		return val
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%d", val)
	}
}
