package batch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is matched by every SchemaMismatchError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// ColumnChange describes a column whose type differs between two schemas.
type ColumnChange struct {
	Name    string
	OldKind Kind
	NewKind Kind
}

// SchemaMismatchError reports how a batch schema differs from the
// established dataset schema.
type SchemaMismatchError struct {
	Dataset string
	Missing []string
	Extra   []string
	Changed []ColumnChange
	// Reordered is set when names and kinds agree but the order does not.
	Reordered bool
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected columns "+strings.Join(e.Extra, ", "))
	}
	for _, c := range e.Changed {
		parts = append(parts, fmt.Sprintf("column %s changed type from %s to %s", c.Name, c.OldKind, c.NewKind))
	}
	if e.Reordered {
		parts = append(parts, "columns are in a different order")
	}
	prefix := "schema mismatch"
	if e.Dataset != "" {
		prefix = fmt.Sprintf("schema mismatch for dataset %q", e.Dataset)
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

// Compare checks got against the established schema want. It returns nil
// when they are equal.
func Compare(dataset string, want, got Schema) error {
	if want.Equal(got) {
		return nil
	}

	e := &SchemaMismatchError{Dataset: dataset}
	for _, f := range want {
		j := got.Index(f.Name)
		if j < 0 {
			e.Missing = append(e.Missing, f.Name)
			continue
		}
		if got[j].Kind != f.Kind {
			e.Changed = append(e.Changed, ColumnChange{Name: f.Name, OldKind: f.Kind, NewKind: got[j].Kind})
		}
	}
	for _, f := range got {
		if want.Index(f.Name) < 0 {
			e.Extra = append(e.Extra, f.Name)
		}
	}
	if len(e.Missing) == 0 && len(e.Extra) == 0 && len(e.Changed) == 0 {
		e.Reordered = true
	}
	return e
}
