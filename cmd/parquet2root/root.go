package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vegasq/parquet2root/config"
	"github.com/vegasq/parquet2root/convert"
	"github.com/vegasq/parquet2root/output"
	"github.com/vegasq/parquet2root/progress"
	"github.com/vegasq/parquet2root/reader"
)

const usageLine = "Usage: parquet2root [flags] <input_glob> <output_path> <dataset_name> [batch_size]"

const bytesPerMB = 1024 * 1024

// printer formats counts with thousand separators.
var printer = message.NewPrinter(language.English)

// usageError is reported with the usage line and exit code 1.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func batchSizeError(arg string) *usageError {
	return &usageError{msg: fmt.Sprintf("batch_size must be a positive integer, got '%s'\n%s", arg, usageLine)}
}

type options struct {
	configPath       string
	format           string
	compression      string
	compressionLevel int
	basketSize       int
	title            string
	lazySchema       bool
	noProgress       bool
	logLevel         string
	plan             bool
	schema           bool
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		// pflag reads a negative batch_size such as -5 as a shorthand flag.
		for _, arg := range args {
			if _, convErr := strconv.Atoi(arg); convErr == nil && strings.HasPrefix(arg, "-") &&
				strings.HasSuffix(err.Error(), " in "+arg) {
				return batchSizeError(arg)
			}
		}
		return err
	})
	if err := cmd.Execute(); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(stderr, uerr.msg)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "parquet2root [flags] <input_glob> <output_path> <dataset_name> [batch_size]",
		Short: "Stream Parquet files into a single ROOT TTree",
		Long: "parquet2root reads every Parquet file matching <input_glob>, in lexicographic order,\n" +
			"and appends their rows batch by batch to the TTree <dataset_name> in <output_path>.\n" +
			"Memory use is bounded by batch_size rows (default 100000).",
		Example: "  parquet2root 'data/*.parquet' out.root events\n" +
			"  parquet2root 'data/run-*.parquet' out.root events 50000\n" +
			"  parquet2root --compression lz4 'data/*.parquet' out.root events\n" +
			"  parquet2root --plan 'data/*.parquet' out.root events\n" +
			"  parquet2root --schema 'data/*.parquet'",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.schema && len(args) >= 1 {
				return nil
			}
			if len(args) < 3 || len(args) > 4 {
				return &usageError{msg: usageLine}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, opts, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: root, csv, jsonl (default from output extension)")
	flags.StringVar(&opts.compression, "compression", "", "ROOT compression: zlib, lz4, zstd, lzma, none (default zlib)")
	flags.IntVar(&opts.compressionLevel, "compression-level", 0, "ROOT compression level 1-9 (default 1)")
	flags.IntVar(&opts.basketSize, "basket-size", 0, "ROOT basket size in bytes (0 = groot default)")
	flags.StringVar(&opts.title, "title", "", "TTree title (default dataset name)")
	flags.BoolVar(&opts.lazySchema, "lazy-schema", false, "Skip the up-front schema comparison of all inputs")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default warn)")
	flags.BoolVar(&opts.plan, "plan", false, "Print files, rows and batches without converting")
	flags.BoolVar(&opts.schema, "schema", false, "Print the column schema of the first matching file")

	return cmd
}

func execute(cmd *cobra.Command, opts *options, args []string, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(cmd, opts, args)
	if err != nil {
		return err
	}

	lvl, _ := cfg.Level()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()

	pattern := args[0]
	files, err := reader.ExpandGlob(pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return &usageError{msg: fmt.Sprintf("No files match pattern: %s", pattern)}
	}
	logger.Debug().Str("pattern", pattern).Int("files", len(files)).Msg("expanded input glob")

	if opts.schema {
		return printSchema(stdout, files[0])
	}

	outputPath, dataset := args[1], args[2]

	fmt.Fprintln(stdout, "Converting the following Parquet files:")
	for _, path := range files {
		fmt.Fprintf(stdout, "  %s\n", path)
	}

	format, _ := output.ParseFormat(cfg.Format)
	copts := convert.Options{
		BatchSize: cfg.BatchSize,
		Format:    format,
		ROOT: output.ROOTOptions{
			Compression:      cfg.Compression,
			CompressionLevel: cfg.CompressionLevel,
			BasketSize:       cfg.BasketSize,
			Title:            cfg.Title,
		},
		ValidateSchemas: cfg.ValidateSchemas,
		Logger:          &logger,
	}
	if cfg.Progress {
		copts.Display = progress.NewBar(stderr)
	}
	converter := convert.New(copts)

	if opts.plan {
		plan, err := converter.Plan(files)
		if err != nil {
			return err
		}
		printPlan(stdout, plan)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := converter.Convert(ctx, files, outputPath, dataset)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted, %s is incomplete", outputPath)
		}
		return err
	}

	if format == "" {
		format = output.DetectFormat(outputPath)
	}
	kind := "TTree"
	if format != output.FormatROOT {
		kind = "dataset"
	}
	fmt.Fprintf(stdout, "Wrote streaming %s '%s' to %s (%.2f MB)\n", kind, dataset, outputPath, float64(res.Bytes)/bytesPerMB)
	fmt.Fprintln(stdout, printer.Sprintf("%d rows in %d batches from %d files, elapsed %s",
		res.Rows, res.Batches, res.Files, progress.FormatDuration(res.Elapsed)))
	return nil
}

// resolveConfig layers config file values under explicitly set flags and
// the positional batch size.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("compression") {
		cfg.Compression = opts.compression
	}
	if flags.Changed("compression-level") {
		cfg.CompressionLevel = opts.compressionLevel
	}
	if flags.Changed("basket-size") {
		cfg.BasketSize = opts.basketSize
	}
	if flags.Changed("title") {
		cfg.Title = opts.title
	}
	if opts.lazySchema {
		cfg.ValidateSchemas = false
	}
	if opts.noProgress {
		cfg.Progress = false
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if len(args) == 4 {
		n, err := strconv.Atoi(args[3])
		if err != nil || n <= 0 {
			return cfg, batchSizeError(args[3])
		}
		cfg.BatchSize = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
