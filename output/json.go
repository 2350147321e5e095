package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vegasq/parquet2root/batch"
)

// JSONSink writes a single dataset as JSON Lines, one object per row with
// keys in schema order.
type JSONSink struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	dataset *jsonDataset
	closed  bool
}

// CreateJSON creates (or truncates) a JSON Lines file at path.
func CreateJSON(path string) (*JSONSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file %s: %w", path, err)
	}
	return &JSONSink{path: path, file: f, buf: bufio.NewWriter(f)}, nil
}

func (s *JSONSink) CreateDataset(name string, first *batch.Batch) (Dataset, error) {
	if s.closed {
		return nil, errors.New("JSON sink is closed")
	}
	if s.dataset != nil {
		return nil, fmt.Errorf("JSON file %s already holds dataset %q", s.path, s.dataset.name)
	}

	keys := make([][]byte, len(first.Schema))
	for i, f := range first.Schema {
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode column name %s: %w", f.Name, err)
		}
		keys[i] = k
	}

	s.dataset = &jsonDataset{sink: s, name: name, schema: append(batch.Schema(nil), first.Schema...), keys: keys}
	if err := s.dataset.write(first); err != nil {
		return nil, err
	}
	return s.dataset, nil
}

// Close flushes and closes the file.
func (s *JSONSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush JSON writer: %w", err))
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close JSON file %s: %w", s.path, err))
	}
	return errors.Join(errs...)
}

type jsonDataset struct {
	sink    *JSONSink
	name    string
	schema  batch.Schema
	keys    [][]byte
	entries int64
}

func (d *jsonDataset) Name() string         { return d.name }
func (d *jsonDataset) Schema() batch.Schema { return d.schema }
func (d *jsonDataset) Entries() int64       { return d.entries }

func (d *jsonDataset) Extend(b *batch.Batch) error {
	if err := batch.Compare(d.name, d.schema, b.Schema); err != nil {
		return err
	}
	return d.write(b)
}

// write encodes rows by hand so that keys keep schema order; encoding a map
// would sort them.
func (d *jsonDataset) write(b *batch.Batch) error {
	var line bytes.Buffer
	for i := 0; i < b.Len; i++ {
		line.Reset()
		line.WriteByte('{')
		for c := range b.Columns {
			if c > 0 {
				line.WriteByte(',')
			}
			line.Write(d.keys[c])
			line.WriteByte(':')
			v, err := json.Marshal(b.Value(c, i))
			if err != nil {
				return fmt.Errorf("failed to encode column %s: %w", b.Schema[c].Name, err)
			}
			line.Write(v)
		}
		line.WriteString("}\n")
		if _, err := d.sink.buf.Write(line.Bytes()); err != nil {
			return fmt.Errorf("failed to write JSON row: %w", err)
		}
		d.entries++
	}
	return nil
}
