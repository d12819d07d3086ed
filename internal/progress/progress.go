// Package progress draws terminal progress for long-running CLI steps such
// as decoding large fact documents.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar. A nil *Tracker is valid and does nothing,
// so callers can pass one around unconditionally.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// Option configures a Tracker.
type Option func(*settings)

type settings struct {
	out io.Writer
}

// WithWriter sends the bar to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

func apply(opts []Option) settings {
	s := settings{out: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewSpinner creates a spinner for work with an unknown total.
func NewSpinner(label string, opts ...Option) *Tracker {
	s := apply(opts)
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: s.out}
}

// NewTracker creates a bar counting up to total.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	s := apply(opts)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: s.out}
}

// Tick advances the bar by one. Safe for concurrent use.
func (t *Tracker) Tick() {
	if t == nil {
		return
	}
	_ = t.bar.Add(1)
}

// Finish clears the bar.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints err under the label.
func (t *Tracker) FinishError(err error) {
	if t == nil {
		return
	}
	t.Finish()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
