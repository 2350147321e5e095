package main

import (
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/parquet2root/batch"
	"github.com/vegasq/parquet2root/reader"
)

func TestWriteFile_ReadsBackWithEveryKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events-000.parquet")
	rng := rand.New(rand.NewSource(1))

	var next uint64
	require.NoError(t, writeFile(path, eventSchema(), 25, 10, rng, &next))
	assert.Equal(t, uint64(25), next)

	r, err := reader.NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(25), r.NumRows())

	fields, err := r.Fields()
	require.NoError(t, err)
	kinds := make(map[string]batch.Kind, len(fields))
	for _, f := range fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]batch.Kind{
		"run":       batch.Uint32,
		"event":     batch.Uint64,
		"n_jets":    batch.Int8,
		"charge":    batch.Int16,
		"lumi":      batch.Int32,
		"time":      batch.Int64,
		"flags":     batch.Uint8,
		"channel":   batch.Uint16,
		"pt":        batch.Float32,
		"energy":    batch.Float64,
		"triggered": batch.Bool,
		"detector":  batch.String,
	}, kinds)

	it, err := r.Batches(100)
	require.NoError(t, err)
	b, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, 25, b.Len)

	events, _ := b.Column("event")
	for i, id := range events.([]uint64) {
		assert.Equal(t, uint64(i), id)
	}
	charges, _ := b.Column("charge")
	for _, c := range charges.([]int16) {
		assert.Contains(t, []int16{-1, 0, 1}, c)
	}
	detectorsCol, _ := b.Column("detector")
	for _, d := range detectorsCol.([]string) {
		assert.Contains(t, detectors, d)
	}

	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteFile_ContinuesEventNumbers(t *testing.T) {
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(2))
	schema := eventSchema()

	var next uint64
	require.NoError(t, writeFile(filepath.Join(dir, "a.parquet"), schema, 3, 2, rng, &next))
	require.NoError(t, writeFile(filepath.Join(dir, "b.parquet"), schema, 4, 2, rng, &next))
	assert.Equal(t, uint64(7), next)
}
