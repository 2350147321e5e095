// Package batch defines the in-memory column batches that flow from the
// parquet reader to the output sinks.
//
// A Batch is a contiguous slice of rows from one input file, materialized
// column by column. Every column holds a typed Go slice whose length equals
// the batch length, so writers can consume it without per-value boxing.
package batch

import (
	"fmt"
	"strings"
)

// Kind is the scalar element type of a column.
type Kind int

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
)

var kindNames = [...]string{
	Invalid: "invalid",
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MakeSlice allocates a typed slice of length n for values of this kind.
func (k Kind) MakeSlice(n int) interface{} {
	switch k {
	case Bool:
		return make([]bool, n)
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Uint8:
		return make([]uint8, n)
	case Uint16:
		return make([]uint16, n)
	case Uint32:
		return make([]uint32, n)
	case Uint64:
		return make([]uint64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	case String:
		return make([]string, n)
	default:
		return nil
	}
}

// Field is a named, typed column of a schema.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered set of fields shared by every row of a dataset.
type Schema []Field

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Equal reports whether both schemas have the same fields in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.Name + ":" + f.Kind.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Column is one column of a batch. Values is a typed slice ([]int32,
// []float64, []string, ...) matching Field.Kind.
type Column struct {
	Field  Field
	Values interface{}
}

// Batch is a bounded run of consecutive rows from a single input file.
type Batch struct {
	Schema  Schema
	Columns []Column
	Len     int
}

// New allocates an empty batch of n rows for the given schema.
func New(schema Schema, n int) *Batch {
	cols := make([]Column, len(schema))
	for i, f := range schema {
		cols[i] = Column{Field: f, Values: f.Kind.MakeSlice(n)}
	}
	return &Batch{Schema: schema, Columns: cols, Len: n}
}

// Column returns the values of the named column and whether it exists.
func (b *Batch) Column(name string) (interface{}, bool) {
	i := b.Schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return b.Columns[i].Values, true
}

// Value returns the boxed value at row i of column c.
func (b *Batch) Value(c, i int) interface{} {
	switch v := b.Columns[c].Values.(type) {
	case []bool:
		return v[i]
	case []int8:
		return v[i]
	case []int16:
		return v[i]
	case []int32:
		return v[i]
	case []int64:
		return v[i]
	case []uint8:
		return v[i]
	case []uint16:
		return v[i]
	case []uint32:
		return v[i]
	case []uint64:
		return v[i]
	case []float32:
		return v[i]
	case []float64:
		return v[i]
	case []string:
		return v[i]
	default:
		return nil
	}
}

// Truncate shortens the batch to its first n rows.
func (b *Batch) Truncate(n int) {
	if n >= b.Len {
		return
	}
	for i := range b.Columns {
		switch v := b.Columns[i].Values.(type) {
		case []bool:
			b.Columns[i].Values = v[:n]
		case []int8:
			b.Columns[i].Values = v[:n]
		case []int16:
			b.Columns[i].Values = v[:n]
		case []int32:
			b.Columns[i].Values = v[:n]
		case []int64:
			b.Columns[i].Values = v[:n]
		case []uint8:
			b.Columns[i].Values = v[:n]
		case []uint16:
			b.Columns[i].Values = v[:n]
		case []uint32:
			b.Columns[i].Values = v[:n]
		case []uint64:
			b.Columns[i].Values = v[:n]
		case []float32:
			b.Columns[i].Values = v[:n]
		case []float64:
			b.Columns[i].Values = v[:n]
		case []string:
			b.Columns[i].Values = v[:n]
		}
	}
	b.Len = n
}
