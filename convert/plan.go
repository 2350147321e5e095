package convert

import (
	"fmt"

	"github.com/vegasq/parquet2root/batch"
	"github.com/vegasq/parquet2root/reader"
)

// FilePlan is the metadata of one input file.
type FilePlan struct {
	Path    string
	Rows    int64
	Batches int
	Schema  batch.Schema
}

// Plan is the result of the metadata pass over all inputs.
type Plan struct {
	Files        []FilePlan
	BatchSize    int
	TotalRows    int64
	TotalBatches int
	// Schema is the schema of the first input.
	Schema batch.Schema
}

// MakePlan reads the footer of every input, in order, and counts the
// batches needed to cover it. No row data is read.
//
// With validate set, every input must have the schema of the first one;
// the first disagreement is returned as a SchemaMismatchError naming the
// offending file.
func MakePlan(inputs []string, batchSize int, validate bool) (*Plan, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidBatchSize, batchSize)
	}

	plan := &Plan{BatchSize: batchSize, Files: make([]FilePlan, 0, len(inputs))}
	for i, path := range inputs {
		fp, err := planFile(path, batchSize)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			plan.Schema = fp.Schema
		} else if validate {
			if err := batch.Compare("", plan.Schema, fp.Schema); err != nil {
				return nil, fmt.Errorf("%s does not match the schema of %s: %w", path, inputs[0], err)
			}
		}

		plan.Files = append(plan.Files, fp)
		plan.TotalRows += fp.Rows
		plan.TotalBatches += fp.Batches
	}
	return plan, nil
}

func planFile(path string, batchSize int) (FilePlan, error) {
	r, err := reader.NewReader(path)
	if err != nil {
		return FilePlan{}, err
	}
	defer func() { _ = r.Close() }()

	schema, err := r.Fields()
	if err != nil {
		return FilePlan{}, err
	}

	rows := r.NumRows()
	return FilePlan{
		Path:    path,
		Rows:    rows,
		Batches: reader.CountBatches(rows, batchSize),
		Schema:  schema,
	}, nil
}
