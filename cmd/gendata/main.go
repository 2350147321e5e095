// Command gendata writes sample event files for trying out parquet2root:
//
//	go run ./cmd/gendata -dir /tmp/events -files 3 -rows 250000
//	parquet2root '/tmp/events/events-*.parquet' events.root events
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/segmentio/parquet-go"
)

// Event covers every column type the converter maps to a branch.
type Event struct {
	Run       uint32
	Event     uint64
	NJets     int8
	Charge    int16
	Lumi      int32
	Time      int64
	Flags     uint8
	Channel   uint16
	Pt        float32
	Energy    float64
	Triggered bool
	Detector  string
}

// column describes one parquet column of an Event. Go struct tags cannot
// express the 8 and 16 bit integer annotations, so the schema is built by
// hand and rows are written as parquet.Row values.
type column struct {
	name  string
	node  parquet.Node
	value func(e *Event) parquet.Value
}

var columns = []column{
	{"run", parquet.Uint(32), func(e *Event) parquet.Value { return parquet.Int32Value(int32(e.Run)) }},
	{"event", parquet.Uint(64), func(e *Event) parquet.Value { return parquet.Int64Value(int64(e.Event)) }},
	{"n_jets", parquet.Int(8), func(e *Event) parquet.Value { return parquet.Int32Value(int32(e.NJets)) }},
	{"charge", parquet.Int(16), func(e *Event) parquet.Value { return parquet.Int32Value(int32(e.Charge)) }},
	{"lumi", parquet.Int(32), func(e *Event) parquet.Value { return parquet.Int32Value(e.Lumi) }},
	{"time", parquet.Int(64), func(e *Event) parquet.Value { return parquet.Int64Value(e.Time) }},
	{"flags", parquet.Uint(8), func(e *Event) parquet.Value { return parquet.Int32Value(int32(e.Flags)) }},
	{"channel", parquet.Uint(16), func(e *Event) parquet.Value { return parquet.Int32Value(int32(e.Channel)) }},
	{"pt", parquet.Leaf(parquet.FloatType), func(e *Event) parquet.Value { return parquet.FloatValue(e.Pt) }},
	{"energy", parquet.Leaf(parquet.DoubleType), func(e *Event) parquet.Value { return parquet.DoubleValue(e.Energy) }},
	{"triggered", parquet.Leaf(parquet.BooleanType), func(e *Event) parquet.Value { return parquet.BooleanValue(e.Triggered) }},
	{"detector", parquet.String(), func(e *Event) parquet.Value { return parquet.ByteArrayValue([]byte(e.Detector)) }},
}

var detectors = []string{"barrel", "endcap", "forward"}

func main() {
	files := flag.Int("files", 2, "number of files")
	rows := flag.Int("rows", 1000, "rows per file")
	groupSize := flag.Int("row-group", 10000, "rows per row group")
	dir := flag.String("dir", ".", "output directory")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *groupSize <= 0 {
		log.Fatal().Int("row-group", *groupSize).Msg("row group size must be positive")
	}

	schema := eventSchema()
	rng := rand.New(rand.NewSource(*seed))

	var next uint64
	for i := 0; i < *files; i++ {
		path := filepath.Join(*dir, fmt.Sprintf("events-%03d.parquet", i))
		if err := writeFile(path, schema, *rows, *groupSize, rng, &next); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to write sample file")
		}
		log.Info().Str("path", path).Int("rows", *rows).Msg("generated")
	}
}

func eventSchema() *parquet.Schema {
	group := parquet.Group{}
	for _, c := range columns {
		group[c.name] = c.node
	}
	return parquet.NewSchema("event", group)
}

// toRow lays the values of e out in column index order.
func toRow(schema *parquet.Schema, e *Event) parquet.Row {
	row := make(parquet.Row, len(columns))
	for _, c := range columns {
		leaf, _ := schema.Lookup(c.name)
		row[leaf.ColumnIndex] = c.value(e).Level(0, 0, leaf.ColumnIndex)
	}
	return row
}

func writeFile(path string, schema *parquet.Schema, rows, groupSize int, rng *rand.Rand, next *uint64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	w := parquet.NewWriter(f, schema)
	buf := make([]parquet.Row, 0, groupSize)
	for written := 0; written < rows; written += len(buf) {
		buf = buf[:0]
		for len(buf) < groupSize && written+len(buf) < rows {
			e := randomEvent(rng, *next)
			buf = append(buf, toRow(schema, &e))
			*next++
		}
		if _, err := w.WriteRows(buf); err != nil {
			return fmt.Errorf("failed to write rows: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush row group: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return f.Close()
}

func randomEvent(rng *rand.Rand, n uint64) Event {
	return Event{
		Run:       uint32(1 + n/100000),
		Event:     n,
		NJets:     int8(rng.Intn(12)),
		Charge:    int16(rng.Intn(3) - 1),
		Lumi:      int32(n / 1000),
		Time:      1700000000000 + int64(n)*25,
		Flags:     uint8(rng.Intn(256)),
		Channel:   uint16(rng.Intn(4096)),
		Pt:        float32(rng.ExpFloat64() * 20),
		Energy:    rng.NormFloat64()*5 + 91.2,
		Triggered: rng.Intn(4) == 0,
		Detector:  detectors[rng.Intn(len(detectors))],
	}
}
