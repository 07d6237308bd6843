// Package progress reports record throughput while output is being written.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"
)

// Options configures a Timer.
type Options struct {
	// Output is where reports are printed.
	// Default: os.Stderr
	Output io.Writer

	// What names the counted unit in reports.
	// Default: "reads"
	What string

	// Interval is the number of records between reports.
	// Default: 1,000,000
	Interval int64

	// Now returns the current time; for tests.
	Now func() time.Time
}

// Timer counts records and bytes and prints a line every Interval records,
// plus a summary on Finalize. It starts no goroutines and is not safe for
// concurrent use; it is owned by a single writer.
type Timer struct {
	opts Options

	start      time.Time
	lastReport time.Time
	lastCount  int64
	nextReport int64
	count      int64
	bytes      int64
	rates      []float64
	finalized  bool
}

// New creates a Timer and starts its clock.
func New(opts Options) *Timer {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.What == "" {
		opts.What = "reads"
	}
	if opts.Interval <= 0 {
		opts.Interval = 1_000_000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	now := opts.Now()
	return &Timer{
		opts:       opts,
		start:      now,
		lastReport: now,
		nextReport: opts.Interval,
	}
}

// Increment adds records to the count, printing a report each time the count
// crosses a multiple of the interval.
func (t *Timer) Increment(records int64) {
	t.count += records
	for t.count >= t.nextReport {
		t.report(t.nextReport)
		t.nextReport += t.opts.Interval
	}
}

// AddBytes adds n to the number of bytes written.
func (t *Timer) AddBytes(n int64) {
	t.bytes += n
}

// Count returns the number of records counted so far.
func (t *Timer) Count() int64 {
	return t.count
}

// Bytes returns the number of bytes counted so far.
func (t *Timer) Bytes() int64 {
	return t.bytes
}

// Finalize prints the summary. Later calls do nothing.
func (t *Timer) Finalize() {
	if t.finalized {
		return
	}
	t.finalized = true

	elapsed := t.opts.Now().Sub(t.start)
	fmt.Fprintf(t.opts.Output, "[pairedio] Processed a total of %s %s in %s; %s %s per second on average (%s written)\n",
		humanize.Comma(t.count),
		t.opts.What,
		FormatDuration(elapsed),
		humanize.Comma(int64(perSecond(t.count, elapsed))),
		t.opts.What,
		humanize.Bytes(uint64(t.bytes)),
	)

	if len(t.rates) > 1 {
		mean, std := stat.MeanStdDev(t.rates, nil)
		fmt.Fprintf(t.opts.Output, "[pairedio] Interval throughput: %s +/- %s %s per second over %d reports\n",
			humanize.Comma(int64(mean)),
			humanize.Comma(int64(std)),
			t.opts.What,
			len(t.rates),
		)
	}
}

// report prints the progress line for the moment the count reached mark.
func (t *Timer) report(mark int64) {
	now := t.opts.Now()
	rate := perSecond(mark-t.lastCount, now.Sub(t.lastReport))
	t.rates = append(t.rates, rate)
	t.lastReport = now
	t.lastCount = mark

	fmt.Fprintf(t.opts.Output, "[pairedio] Processed %s %s in %s; %s %s per second on average\n",
		humanize.Comma(mark),
		t.opts.What,
		FormatDuration(now.Sub(t.start)),
		humanize.Comma(int64(perSecond(mark, now.Sub(t.start)))),
		t.opts.What,
	)
}

func perSecond(n int64, d time.Duration) float64 {
	seconds := d.Seconds()
	if seconds < 0.001 {
		seconds = 0.001
	}
	return float64(n) / seconds
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
