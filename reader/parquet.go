// Package reader provides functionality for reading Apache Parquet files.
//
// It uses the segmentio/parquet-go library to read parquet metadata cheaply
// and to iterate over rows in fixed-size column batches.
package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/segmentio/parquet-go"

	"github.com/vegasq/parquet2root/batch"
)

// ErrInputNotFound is returned when an input path does not exist or cannot
// be opened.
var ErrInputNotFound = errors.New("input not found")

// ErrUnsupportedColumn is returned for columns that cannot be flattened into
// a scalar batch column (nested groups, repeated fields, INT96).
var ErrUnsupportedColumn = errors.New("unsupported column")

// Reader reads a single parquet file.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup. Opening a Reader only decodes the file footer, so
// row counts and schemas are available without touching row data.
type Reader struct {
	path   string
	file   *os.File
	pqFile *parquet.File
}

// NewReader creates a new parquet reader for the specified file path.
//
// The file is opened and validated as a parquet file. Returns an error
// wrapping ErrInputNotFound if the file doesn't exist or can't be opened.
//
// Example:
//
//	reader, err := NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}

	return &Reader{
		path:   path,
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Path returns the path the reader was opened with.
func (r *Reader) Path() string {
	return r.path
}

// NumRows returns the total row count recorded in the file metadata.
func (r *Reader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Fields returns the flat batch schema of the file.
//
// Every top-level field must be a scalar leaf; nested or repeated columns
// produce an error wrapping ErrUnsupportedColumn.
func (r *Reader) Fields() (batch.Schema, error) {
	fields := r.pqFile.Schema().Fields()
	schema := make(batch.Schema, 0, len(fields))
	for _, field := range fields {
		kind, err := kindOf(field)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.path, err)
		}
		schema = append(schema, batch.Field{Name: field.Name(), Kind: kind})
	}
	return schema, nil
}

// Batches returns an iterator over consecutive batches of at most size rows,
// in on-disk order.
func (r *Reader) Batches(size int) (*BatchIterator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	schema, err := r.Fields()
	if err != nil {
		return nil, err
	}
	return &BatchIterator{
		path:   r.path,
		schema: schema,
		size:   size,
		rows:   parquet.NewReader(r.pqFile),
		buf:    make([]parquet.Row, size),
	}, nil
}

// Close closes the parquet reader and releases associated resources.
//
// Should be called when done reading to avoid resource leaks. It is safe
// to call Close multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// BatchIterator yields fixed-size row batches from one parquet file.
type BatchIterator struct {
	path   string
	schema batch.Schema
	size   int
	rows   *parquet.Reader
	buf    []parquet.Row
	done   bool
}

// Schema returns the schema of every batch produced by the iterator.
func (it *BatchIterator) Schema() batch.Schema {
	return it.schema
}

// Next reads the next batch. It returns io.EOF once the file is exhausted.
//
// Every batch except the last holds exactly the configured number of rows;
// reads are repeated across row group boundaries to fill it.
func (it *BatchIterator) Next() (*batch.Batch, error) {
	if it.done {
		return nil, io.EOF
	}

	b := batch.New(it.schema, it.size)
	filled := 0
	for filled < it.size {
		n, err := it.rows.ReadRows(it.buf[:it.size-filled])
		// Row values may alias reader buffers, so copy them out before the
		// next read.
		if cerr := it.copyRows(b, filled, it.buf[:n]); cerr != nil {
			return nil, cerr
		}
		filled += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				it.done = true
				break
			}
			return nil, fmt.Errorf("failed to read rows from %s: %w", it.path, err)
		}
		if n == 0 {
			it.done = true
			break
		}
	}

	if filled == 0 {
		return nil, io.EOF
	}
	b.Truncate(filled)
	return b, nil
}

func (it *BatchIterator) copyRows(b *batch.Batch, offset int, rows []parquet.Row) error {
	for i, row := range rows {
		for _, v := range row {
			c := v.Column()
			if c < 0 || c >= len(b.Columns) {
				return fmt.Errorf("failed to read rows from %s: value for unknown column %d", it.path, c)
			}
			setValue(b.Columns[c].Values, offset+i, v)
		}
	}
	return nil
}

// Close releases the underlying row reader.
func (it *BatchIterator) Close() error {
	return it.rows.Close()
}

// setValue stores v at row i of a typed column slice. Null values leave the
// zero value in place.
func setValue(values interface{}, i int, v parquet.Value) {
	if v.IsNull() {
		return
	}
	switch col := values.(type) {
	case []bool:
		col[i] = v.Boolean()
	case []int8:
		col[i] = int8(v.Int32())
	case []int16:
		col[i] = int16(v.Int32())
	case []int32:
		col[i] = v.Int32()
	case []int64:
		col[i] = v.Int64()
	case []uint8:
		col[i] = uint8(v.Int32())
	case []uint16:
		col[i] = uint16(v.Int32())
	case []uint32:
		col[i] = uint32(v.Int32())
	case []uint64:
		col[i] = uint64(v.Int64())
	case []float32:
		col[i] = v.Float()
	case []float64:
		col[i] = v.Double()
	case []string:
		col[i] = string(v.ByteArray())
	}
}

// CountBatches returns the number of batches of the given size needed to
// cover rows rows.
func CountBatches(rows int64, size int) int {
	if rows <= 0 || size <= 0 {
		return 0
	}
	return int((rows + int64(size) - 1) / int64(size))
}

// ExpandGlob expands a glob pattern into a lexicographically sorted list of
// file paths.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// A pattern without wildcards is returned as-is when the file exists, so
// that a missing plain path surfaces as an empty match list rather than an
// open error later on.
func ExpandGlob(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		if _, err := os.Stat(pattern); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to stat %s: %w", pattern, err)
		}
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
