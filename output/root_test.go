package output

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/vegasq/parquet2root/batch"
)

var testSchema = batch.Schema{
	{Name: "id", Kind: batch.Int64},
	{Name: "energy", Kind: batch.Float64},
	{Name: "label", Kind: batch.String},
}

func makeBatch(start, n int) *batch.Batch {
	b := batch.New(testSchema, n)
	ids := b.Columns[0].Values.([]int64)
	energies := b.Columns[1].Values.([]float64)
	labels := b.Columns[2].Values.([]string)
	for i := 0; i < n; i++ {
		ids[i] = int64(start + i)
		energies[i] = float64(start+i) * 0.5
		labels[i] = "evt"
	}
	return b
}

func readTreeIDs(t *testing.T, path, name string) ([]int64, []string) {
	t.Helper()

	f, err := groot.Open(path)
	require.NoError(t, err)
	defer f.Close()

	obj, err := f.Get(name)
	require.NoError(t, err)
	tree, ok := obj.(rtree.Tree)
	require.True(t, ok, "object %q is %T, not a tree", name, obj)

	var branches []string
	for _, b := range tree.Branches() {
		branches = append(branches, b.Name())
	}

	var id int64
	r, err := rtree.NewReader(tree, []rtree.ReadVar{{Name: "id", Value: &id}})
	require.NoError(t, err)
	defer r.Close()

	var ids []int64
	err = r.Read(func(ctx rtree.RCtx) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(ids)), tree.Entries())
	return ids, branches
}

func TestROOTSink_CreateAndExtend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.root")

	sink, err := CreateROOT(path, ROOTOptions{})
	require.NoError(t, err)

	ds, err := sink.CreateDataset("events", makeBatch(0, 100))
	require.NoError(t, err)
	assert.Equal(t, "events", ds.Name())
	assert.True(t, ds.Schema().Equal(testSchema))

	require.NoError(t, ds.Extend(makeBatch(100, 100)))
	require.NoError(t, ds.Extend(makeBatch(200, 50)))
	assert.Equal(t, int64(250), ds.Entries())

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close(), "second Close should be a no-op")

	ids, branches := readTreeIDs(t, path, "events")
	assert.Equal(t, []string{"id", "energy", "label"}, branches)
	require.Len(t, ids, 250)
	for i, id := range ids {
		assert.Equal(t, int64(i), id)
	}
}

func TestROOTSink_SchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.root")

	sink, err := CreateROOT(path, ROOTOptions{})
	require.NoError(t, err)
	defer func() { require.NoError(t, sink.Close()) }()

	ds, err := sink.CreateDataset("events", makeBatch(0, 10))
	require.NoError(t, err)

	short := batch.New(testSchema[:2], 5)
	err = ds.Extend(short)
	require.Error(t, err)
	assert.True(t, errors.Is(err, batch.ErrSchemaMismatch))

	var mismatch *batch.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"label"}, mismatch.Missing)
	assert.Equal(t, int64(10), ds.Entries())
}

func TestROOTSink_AllKinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kinds.root")
	schema := batch.Schema{
		{Name: "b", Kind: batch.Bool},
		{Name: "i8", Kind: batch.Int8},
		{Name: "i16", Kind: batch.Int16},
		{Name: "i32", Kind: batch.Int32},
		{Name: "i64", Kind: batch.Int64},
		{Name: "u8", Kind: batch.Uint8},
		{Name: "u16", Kind: batch.Uint16},
		{Name: "u32", Kind: batch.Uint32},
		{Name: "u64", Kind: batch.Uint64},
		{Name: "f32", Kind: batch.Float32},
		{Name: "f64", Kind: batch.Float64},
		{Name: "s", Kind: batch.String},
	}

	for _, compression := range []string{"zlib", "lz4", "zstd", "none"} {
		t.Run(compression, func(t *testing.T) {
			sink, err := CreateROOT(path, ROOTOptions{Compression: compression, Title: "all kinds"})
			require.NoError(t, err)

			b := batch.New(schema, 3)
			b.Columns[4].Values.([]int64)[2] = 42
			b.Columns[11].Values.([]string)[1] = "hello"

			ds, err := sink.CreateDataset("kinds", b)
			require.NoError(t, err)
			assert.Equal(t, int64(3), ds.Entries())
			require.NoError(t, sink.Close())

			f, err := groot.Open(path)
			require.NoError(t, err)
			defer f.Close()

			obj, err := f.Get("kinds")
			require.NoError(t, err)
			tree := obj.(rtree.Tree)
			assert.Equal(t, int64(3), tree.Entries())
			assert.Equal(t, "all kinds", tree.Title())
			assert.Len(t, tree.Branches(), len(schema))
		})
	}
}

func TestROOTSink_DuplicateDataset(t *testing.T) {
	sink, err := CreateROOT(filepath.Join(t.TempDir(), "out.root"), ROOTOptions{})
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	_, err = sink.CreateDataset("events", makeBatch(0, 1))
	require.NoError(t, err)

	_, err = sink.CreateDataset("events", makeBatch(0, 1))
	assert.Error(t, err)
}

func TestROOTSink_EmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.root")

	sink, err := CreateROOT(path, ROOTOptions{})
	require.NoError(t, err)

	ds, err := sink.CreateDataset("events", batch.New(testSchema, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), ds.Entries())
	require.NoError(t, sink.Close())

	ids, branches := readTreeIDs(t, path, "events")
	assert.Empty(t, ids)
	assert.Len(t, branches, 3)
}

func TestCreateROOT_BadCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.root")

	_, err := CreateROOT(path, ROOTOptions{Compression: "snappy"})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}
