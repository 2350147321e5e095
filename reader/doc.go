// Package reader provides functionality for reading Apache Parquet files.
//
// This package opens parquet files through their footer metadata and
// streams their rows as fixed-size column batches. Only the footer is read
// when a Reader is created, so row counts and schemas of large files are
// cheap to inspect.
//
// # Basic Usage
//
// Counting rows and iterating batches:
//
//	r, err := reader.NewReader("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	fmt.Println(r.NumRows())
//
//	it, err := r.Batches(100000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer it.Close()
//
//	for {
//	    b, err := it.Next()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ids, _ := b.Column("id")
//	    fmt.Println(ids.([]int64))
//	}
//
// # Multi-file Operations
//
// ExpandGlob turns a glob pattern into a sorted list of paths:
//
//	paths, err := reader.ExpandGlob("data/*.parquet")
//
// # Schema Introspection
//
// Fields returns the flat schema used for batches; ExtractSchemaInfo
// describes every leaf column, including the ones that cannot be converted:
//
//	infos, err := reader.ExtractSchemaInfo("data.parquet")
//	for _, info := range infos {
//	    fmt.Printf("%s: %s -> %s\n", info.Name, info.PhysicalType, info.Kind)
//	}
//
// The package uses github.com/segmentio/parquet-go for the underlying
// parquet file operations.
package reader
