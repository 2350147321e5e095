// Package progress tracks and renders the progress of a batch conversion.
package progress

import (
	"time"
)

const percentMultiplier = 100

// State is the progress of one conversion run. It is owned by the single
// conversion flow and passed by value to displays, so it needs no locking.
type State struct {
	// Desc is a short label shown in front of the bar.
	Desc string
	// Total is the number of batches the run will process.
	Total int
	// Done is the number of batches processed so far.
	Done int
	// Rows is the number of rows processed so far.
	Rows int64
	// Start is when the run started.
	Start time.Time
	// Now is the time of the last update.
	Now time.Time
}

// New starts tracking a run of total batches.
func New(desc string, total int) State {
	now := time.Now()
	return State{Desc: desc, Total: total, Start: now, Now: now}
}

// Advance records one more processed batch of rows rows.
func (s State) Advance(rows int) State {
	s.Done++
	s.Rows += int64(rows)
	s.Now = time.Now()
	return s
}

// Percent returns the completion percentage (0-100). An empty run is
// complete.
func (s State) Percent() float64 {
	if s.Total <= 0 {
		return percentMultiplier
	}
	return float64(s.Done) / float64(s.Total) * percentMultiplier
}

// Elapsed returns the time since the run started.
func (s State) Elapsed() time.Duration {
	return s.Now.Sub(s.Start)
}

// Remaining estimates the time left from the mean time per batch so far.
// Returns 0 before the first batch.
func (s State) Remaining() time.Duration {
	if s.Done == 0 || s.Done >= s.Total {
		return 0
	}
	perBatch := s.Elapsed() / time.Duration(s.Done)
	return perBatch * time.Duration(s.Total-s.Done)
}

// Rate returns the processing rate in batches per second.
func (s State) Rate() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Done) / elapsed
}

// Display shows progress updates.
type Display interface {
	// Render is called once when the run starts and after every batch.
	Render(s State)
	// Finish is called once after the last batch, even on failure.
	Finish(s State)
}

// Nop is a Display that discards updates.
type Nop struct{}

func (Nop) Render(State) {}
func (Nop) Finish(State) {}
