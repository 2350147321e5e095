package output

import (
	"errors"
	"fmt"
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/vegasq/parquet2root/batch"
)

// ROOTOptions configures the TTrees written by a ROOTSink.
type ROOTOptions struct {
	// Compression is one of zlib, lz4, zstd, lzma or none. Empty means zlib.
	Compression string
	// CompressionLevel is passed to the compressor; 0 selects level 1.
	CompressionLevel int
	// BasketSize is the per-branch basket buffer size in bytes; 0 keeps the
	// groot default.
	BasketSize int
	// Title is the tree title; empty uses the dataset name.
	Title string
}

func (o ROOTOptions) writeOptions(name string) ([]rtree.WriteOption, error) {
	level := o.CompressionLevel
	if level == 0 {
		level = 1
	}

	var opts []rtree.WriteOption
	switch strings.ToLower(o.Compression) {
	case "", "zlib":
		opts = append(opts, rtree.WithZlib(level))
	case "lz4":
		opts = append(opts, rtree.WithLZ4(level))
	case "zstd":
		opts = append(opts, rtree.WithZstd(level))
	case "lzma":
		opts = append(opts, rtree.WithLZMA(level))
	case "none":
		opts = append(opts, rtree.WithoutCompression())
	default:
		return nil, fmt.Errorf("unsupported compression '%s' (supported: zlib, lz4, zstd, lzma, none)", o.Compression)
	}

	if o.BasketSize > 0 {
		opts = append(opts, rtree.WithBasketSize(o.BasketSize))
	}

	title := o.Title
	if title == "" {
		title = name
	}
	opts = append(opts, rtree.WithTitle(title))
	return opts, nil
}

// ROOTSink writes datasets as TTrees of a ROOT file.
type ROOTSink struct {
	path   string
	file   *groot.File
	opts   ROOTOptions
	trees  []*rootTree
	closed bool
}

// CreateROOT creates (or truncates) a ROOT file at path.
func CreateROOT(path string, opts ROOTOptions) (*ROOTSink, error) {
	// Validate options before touching the file system.
	if _, err := opts.writeOptions(""); err != nil {
		return nil, err
	}

	f, err := groot.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create ROOT file %s: %w", path, err)
	}
	return &ROOTSink{path: path, file: f, opts: opts}, nil
}

// CreateDataset creates a TTree with one branch per column of first and
// fills it with the rows of first.
func (s *ROOTSink) CreateDataset(name string, first *batch.Batch) (Dataset, error) {
	if s.closed {
		return nil, errors.New("ROOT sink is closed")
	}
	if name == "" {
		return nil, errors.New("dataset name must not be empty")
	}
	for _, t := range s.trees {
		if t.name == name {
			return nil, fmt.Errorf("dataset %q already exists in %s", name, s.path)
		}
	}
	if len(first.Schema) == 0 {
		return nil, fmt.Errorf("dataset %q has no columns", name)
	}

	vars := make([]rtree.WriteVar, len(first.Schema))
	for i, f := range first.Schema {
		ptr, err := branchValue(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		vars[i] = rtree.WriteVar{Name: f.Name, Value: ptr}
	}

	wopts, err := s.opts.writeOptions(name)
	if err != nil {
		return nil, err
	}
	w, err := rtree.NewWriter(s.file, name, vars, wopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree %q: %w", name, err)
	}

	t := &rootTree{
		name:   name,
		schema: append(batch.Schema(nil), first.Schema...),
		w:      w,
		vars:   vars,
	}
	s.trees = append(s.trees, t)

	if err := t.fill(first); err != nil {
		return nil, err
	}
	return t, nil
}

// Close closes every tree and then the file.
func (s *ROOTSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, t := range s.trees {
		if err := t.w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close tree %q: %w", t.name, err))
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close ROOT file %s: %w", s.path, err))
	}
	return errors.Join(errs...)
}

type rootTree struct {
	name    string
	schema  batch.Schema
	w       rtree.Writer
	vars    []rtree.WriteVar
	entries int64
}

func (t *rootTree) Name() string         { return t.name }
func (t *rootTree) Schema() batch.Schema { return t.schema }
func (t *rootTree) Entries() int64       { return t.entries }

func (t *rootTree) Extend(b *batch.Batch) error {
	if err := batch.Compare(t.name, t.schema, b.Schema); err != nil {
		return err
	}
	return t.fill(b)
}

// fill copies every row of b into the branch variables and writes one
// tree entry per row.
func (t *rootTree) fill(b *batch.Batch) error {
	setters := make([]func(int), len(b.Columns))
	for c, col := range b.Columns {
		set, err := setter(t.vars[c].Value, col.Values)
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Field.Name, err)
		}
		setters[c] = set
	}

	for i := 0; i < b.Len; i++ {
		for _, set := range setters {
			set(i)
		}
		if _, err := t.w.Write(); err != nil {
			return fmt.Errorf("failed to write entry %d of tree %q: %w", t.entries, t.name, err)
		}
		t.entries++
	}
	return nil
}

// branchValue allocates the branch variable for a column kind.
func branchValue(k batch.Kind) (interface{}, error) {
	switch k {
	case batch.Bool:
		return new(bool), nil
	case batch.Int8:
		return new(int8), nil
	case batch.Int16:
		return new(int16), nil
	case batch.Int32:
		return new(int32), nil
	case batch.Int64:
		return new(int64), nil
	case batch.Uint8:
		return new(uint8), nil
	case batch.Uint16:
		return new(uint16), nil
	case batch.Uint32:
		return new(uint32), nil
	case batch.Uint64:
		return new(uint64), nil
	case batch.Float32:
		return new(float32), nil
	case batch.Float64:
		return new(float64), nil
	case batch.String:
		return new(string), nil
	default:
		return nil, fmt.Errorf("no branch type for kind %s", k)
	}
}

// setter returns a function that loads row i of values into the branch
// variable ptr.
func setter(ptr, values interface{}) (func(int), error) {
	switch vs := values.(type) {
	case []bool:
		if p, ok := ptr.(*bool); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []int8:
		if p, ok := ptr.(*int8); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []int16:
		if p, ok := ptr.(*int16); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []int32:
		if p, ok := ptr.(*int32); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []int64:
		if p, ok := ptr.(*int64); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []uint8:
		if p, ok := ptr.(*uint8); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []uint16:
		if p, ok := ptr.(*uint16); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []uint32:
		if p, ok := ptr.(*uint32); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []uint64:
		if p, ok := ptr.(*uint64); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []float32:
		if p, ok := ptr.(*float32); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []float64:
		if p, ok := ptr.(*float64); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	case []string:
		if p, ok := ptr.(*string); ok {
			return func(i int) { *p = vs[i] }, nil
		}
	}
	return nil, fmt.Errorf("values of type %T do not match branch type %T", values, ptr)
}
