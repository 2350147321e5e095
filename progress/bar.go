package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	pbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	minBarWidth     = 10
	maxBarWidth     = 40
	defaultTermSize = 80
)

// Bar renders progress as a single terminal line:
//
//	desc: 42%|████▌     | 21/50 [00:10<00:14, 2.10it/s] [total: 00:10]
//
// On a terminal the line is redrawn in place after every update. Any other
// writer gets one plain line per update, without the bar graphic.
type Bar struct {
	w     io.Writer
	tty   bool
	cols  int
	model pbar.Model
	desc  lipgloss.Style
}

// NewBar creates a Bar writing to w. Terminal detection and width only
// apply when w is an *os.File.
func NewBar(w io.Writer) *Bar {
	b := &Bar{w: w, cols: defaultTermSize}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			b.cols = width
		}
	}
	b.model = pbar.New(pbar.WithDefaultGradient(), pbar.WithoutPercentage())
	b.desc = lipgloss.NewStyle().Bold(true)
	return b
}

// Render draws the current state.
func (b *Bar) Render(s State) {
	if b.tty {
		_, _ = fmt.Fprint(b.w, "\r"+b.line(s))
		return
	}
	_, _ = fmt.Fprintln(b.w, b.line(s))
}

// Finish terminates the in-place line so later output starts on a fresh
// line.
func (b *Bar) Finish(s State) {
	if b.tty {
		_, _ = fmt.Fprint(b.w, "\r"+b.line(s)+"\n")
	}
}

func (b *Bar) line(s State) string {
	desc := s.Desc
	if b.tty && desc != "" {
		desc = b.desc.Render(desc)
	}
	stats := fmt.Sprintf("%d/%d [%s<%s, %s] [total: %s]",
		s.Done, s.Total,
		FormatDuration(s.Elapsed()), FormatDuration(s.Remaining()),
		formatRate(s.Rate()), FormatDuration(s.Elapsed()))

	var sb strings.Builder
	if desc != "" {
		sb.WriteString(desc)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%3.0f%%", s.Percent())

	if b.tty {
		width := b.cols - lipgloss.Width(sb.String()) - len(stats) - 3
		if width > maxBarWidth {
			width = maxBarWidth
		}
		if width < minBarWidth {
			width = minBarWidth
		}
		b.model.Width = width
		sb.WriteString("|")
		sb.WriteString(b.model.ViewAs(s.Percent() / percentMultiplier))
		sb.WriteString("| ")
	} else {
		sb.WriteString(" ")
	}
	sb.WriteString(stats)
	return sb.String()
}

func formatRate(rate float64) string {
	switch {
	case rate <= 0:
		return "?it/s"
	case rate < 1:
		return fmt.Sprintf("%.2fs/it", 1/rate)
	default:
		return fmt.Sprintf("%.2fit/s", rate)
	}
}

// FormatDuration renders d as MM:SS, or H:MM:SS from one hour on.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Round(time.Second) / time.Second)
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
