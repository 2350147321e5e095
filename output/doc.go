// Package output provides the sinks that converted batches are written to.
//
// A Sink is an output file. Datasets are created inside it from a first
// batch, which fixes their schema, and are then extended batch by batch:
//
//	sink, err := output.CreateROOT("out.root", output.ROOTOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
//
//	ds, err := sink.CreateDataset("events", first)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range rest {
//	    if err := ds.Extend(b); err != nil {
//	        log.Fatal(err) // errors.Is(err, batch.ErrSchemaMismatch) on schema drift
//	    }
//	}
//
// # Supported Formats
//
//   - ROOT: one TTree per dataset, one branch per column (go-hep groot)
//   - CSV: header row followed by one record per row
//   - JSON Lines: one JSON object per row, keys in schema order
//
// NewSink picks the format from an explicit Format or from the output file
// extension (.root, .csv, .jsonl/.json/.ndjson).
//
// # Type Handling
//
// ROOT branches use the Go type of the column (bool, int8..int64,
// uint8..uint64, float32, float64, string). CSV renders numbers in their
// shortest form and prefixes strings that start with formula characters
// with a quote to defuse spreadsheet injection.
package output
