package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/vegasq/parquet2root/batch"
	"github.com/vegasq/parquet2root/reader"
)

var (
	// ErrInputNotFound is returned when an input path does not exist or
	// cannot be opened.
	ErrInputNotFound = reader.ErrInputNotFound

	// ErrSchemaMismatch is returned when a batch does not match the schema
	// of the output dataset, or when inputs disagree during planning.
	ErrSchemaMismatch = batch.ErrSchemaMismatch

	// ErrUnsupportedColumn is returned for inputs with nested or repeated
	// columns.
	ErrUnsupportedColumn = reader.ErrUnsupportedColumn

	// ErrIO wraps every other read or write failure.
	ErrIO = errors.New("i/o error")

	// ErrNoInputs is returned when Convert is called without inputs.
	ErrNoInputs = errors.New("no input files")

	// ErrInvalidBatchSize is returned for a batch size below one.
	ErrInvalidBatchSize = errors.New("batch size must be a positive integer")
)

// classify wraps err with ErrIO unless it already belongs to a more
// specific class.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInputNotFound),
		errors.Is(err, ErrSchemaMismatch),
		errors.Is(err, ErrUnsupportedColumn),
		errors.Is(err, ErrIO),
		errors.Is(err, ErrNoInputs),
		errors.Is(err, ErrInvalidBatchSize),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
