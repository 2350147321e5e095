package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Advance(t *testing.T) {
	s := New("convert", 4)
	assert.Equal(t, 0, s.Done)
	assert.Equal(t, 0.0, s.Percent())

	s = s.Advance(100)
	s = s.Advance(50)
	assert.Equal(t, 2, s.Done)
	assert.Equal(t, int64(150), s.Rows)
	assert.Equal(t, 50.0, s.Percent())
	assert.False(t, s.Now.Before(s.Start))
}

func TestState_EmptyRunIsComplete(t *testing.T) {
	s := New("", 0)
	assert.Equal(t, 100.0, s.Percent())
	assert.Equal(t, time.Duration(0), s.Remaining())
}

func TestState_RemainingAndRate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := State{Total: 10, Done: 2, Start: start, Now: start.Add(4 * time.Second)}

	assert.Equal(t, 4*time.Second, s.Elapsed())
	assert.Equal(t, 16*time.Second, s.Remaining())
	assert.InDelta(t, 0.5, s.Rate(), 1e-9)

	s.Done = 10
	assert.Equal(t, time.Duration(0), s.Remaining())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{61 * time.Second, "01:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d), "FormatDuration(%s)", tt.d)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "?it/s", formatRate(0))
	assert.Equal(t, "2.00s/it", formatRate(0.5))
	assert.Equal(t, "3.00it/s", formatRate(3))
}

func TestBar_NonTerminalWritesLines(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := State{Desc: "Parquet → ROOT (events)", Total: 4, Start: start, Now: start}
	bar.Render(s)
	s.Done, s.Now = 1, start.Add(2*time.Second)
	bar.Render(s)
	bar.Finish(s)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Parquet → ROOT (events):   0% 0/4 [00:00<00:00, ?it/s] [total: 00:00]", lines[0])
	assert.Equal(t, "Parquet → ROOT (events):  25% 1/4 [00:02<00:06, 2.00s/it] [total: 00:02]", lines[1])
	assert.NotContains(t, buf.String(), "\r")
}

func TestNop(t *testing.T) {
	var d Display = Nop{}
	d.Render(New("x", 1))
	d.Finish(New("x", 1))
}
