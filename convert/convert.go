// Package convert streams rows from parquet files into a single output
// dataset.
//
// Conversion is one sequential flow: a metadata pass sizes the run, then
// every input is read batch by batch in the order given and each batch is
// appended to the output before the next one is read. Memory use is
// bounded by the batch size.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vegasq/parquet2root/batch"
	"github.com/vegasq/parquet2root/output"
	"github.com/vegasq/parquet2root/progress"
	"github.com/vegasq/parquet2root/reader"
)

// SinkFactory opens the output file of a run.
type SinkFactory func(path string) (output.Sink, error)

// Options configures a Converter.
type Options struct {
	// BatchSize is the maximum number of rows per batch. Must be positive.
	BatchSize int
	// Format selects the output format; empty infers it from the output
	// path.
	Format output.Format
	// ROOT configures ROOT output.
	ROOT output.ROOTOptions
	// ValidateSchemas compares the schemas of all inputs during planning,
	// before the output is created. When false, mismatches surface only
	// when the dataset rejects a batch.
	ValidateSchemas bool
	// Display receives progress updates; nil disables them.
	Display progress.Display
	// Logger receives structured logs; nil disables them.
	Logger *zerolog.Logger
	// NewSink overrides how the output is opened.
	NewSink SinkFactory
}

// Result summarizes a finished conversion.
type Result struct {
	Output  string
	Dataset string
	Files   int
	Batches int
	Rows    int64
	Bytes   int64
	Elapsed time.Duration
}

// Converter converts parquet files into one output dataset.
type Converter struct {
	opts    Options
	log     zerolog.Logger
	display progress.Display
	newSink SinkFactory
}

// New creates a Converter.
func New(opts Options) *Converter {
	c := &Converter{opts: opts, log: zerolog.Nop(), display: progress.Nop{}}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if opts.Display != nil {
		c.display = opts.Display
	}
	c.newSink = opts.NewSink
	if c.newSink == nil {
		c.newSink = func(path string) (output.Sink, error) {
			return output.NewSink(path, opts.Format, opts.ROOT)
		}
	}
	return c
}

// Plan runs the metadata pass over inputs without writing anything.
func (c *Converter) Plan(inputs []string) (*Plan, error) {
	plan, err := MakePlan(inputs, c.opts.BatchSize, c.opts.ValidateSchemas)
	return plan, classify(err)
}

// Convert writes the rows of all inputs, in order, to the dataset named
// dataset in the file at outputPath, replacing any existing file.
//
// The output is closed on every return path. When an error is returned the
// output content is undefined.
func (c *Converter) Convert(ctx context.Context, inputs []string, outputPath, dataset string) (_ *Result, err error) {
	if dataset == "" {
		return nil, errors.New("dataset name must not be empty")
	}

	plan, err := c.Plan(inputs)
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Int("files", len(plan.Files)).
		Int64("rows", plan.TotalRows).
		Int("batches", plan.TotalBatches).
		Int("batch_size", plan.BatchSize).
		Msg("planned conversion")

	sink, err := c.newSink(outputPath)
	if err != nil {
		return nil, classify(err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			err = errors.Join(err, classify(cerr))
		}
	}()

	state := progress.New(c.describe(outputPath, dataset), plan.TotalBatches)
	c.display.Render(state)
	defer func() { c.display.Finish(state) }()

	w := &datasetWriter{sink: sink, name: dataset}
	for _, fp := range plan.Files {
		if err := c.convertFile(ctx, fp, w, &state); err != nil {
			return nil, err
		}
	}

	// Every input was empty: the dataset still has to exist.
	if w.state == uninitialized {
		if err := w.write(batch.New(plan.Schema, 0)); err != nil {
			return nil, classify(err)
		}
	}

	if err := sink.Close(); err != nil {
		return nil, classify(err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to stat output: %w", err))
	}

	res := &Result{
		Output:  outputPath,
		Dataset: dataset,
		Files:   len(plan.Files),
		Batches: state.Done,
		Rows:    state.Rows,
		Bytes:   info.Size(),
		Elapsed: state.Elapsed(),
	}
	c.log.Info().
		Str("output", outputPath).
		Int64("rows", res.Rows).
		Int64("bytes", res.Bytes).
		Dur("elapsed", res.Elapsed).
		Msg("conversion finished")
	return res, nil
}

func (c *Converter) convertFile(ctx context.Context, fp FilePlan, w *datasetWriter, state *progress.State) error {
	r, err := reader.NewReader(fp.Path)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = r.Close() }()

	it, err := r.Batches(c.opts.BatchSize)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = it.Close() }()

	log := c.log.With().Str("file", fp.Path).Logger()
	log.Debug().Int64("rows", fp.Rows).Int("batches", fp.Batches).Msg("converting file")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return classify(err)
		}

		if err := w.write(b); err != nil {
			return classify(fmt.Errorf("%s: %w", fp.Path, err))
		}

		*state = state.Advance(b.Len)
		c.display.Render(*state)
		log.Trace().Int("rows", b.Len).Int("done", state.Done).Msg("batch written")
	}

	log.Debug().Msg("file done")
	return nil
}

func (c *Converter) describe(outputPath, dataset string) string {
	format := c.opts.Format
	if format == "" {
		format = output.DetectFormat(outputPath)
	}
	return fmt.Sprintf("Parquet → %s (%s)", strings.ToUpper(string(format)), dataset)
}

type writerState int

const (
	uninitialized writerState = iota
	streaming
)

// datasetWriter creates the dataset from the first batch and extends it
// with every later one.
type datasetWriter struct {
	sink  output.Sink
	name  string
	state writerState
	ds    output.Dataset
}

func (w *datasetWriter) write(b *batch.Batch) error {
	switch w.state {
	case uninitialized:
		ds, err := w.sink.CreateDataset(w.name, b)
		if err != nil {
			return err
		}
		w.ds = ds
		w.state = streaming
		return nil
	default:
		return w.ds.Extend(b)
	}
}
